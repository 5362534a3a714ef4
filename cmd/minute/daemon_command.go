package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"minute/internal/daemon"
	"minute/internal/ipc"
	"minute/internal/logging"
	"minute/internal/recorder"
	"minute/internal/session"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the recording daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx, logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext, logLevel string) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath := filepath.Join(cfg.Paths.LogDir, "minute.log")
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "minute.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := session.Open(cfg)
	if err != nil {
		logger.Error("open session store", logging.Error(err))
		return err
	}
	defer store.Close()

	manager, err := recorder.NewManager(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	d, err := daemon.New(cfg, store, manager, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	ipcServer, err := ipc.NewServer(signalCtx, ctx.socketPath(), d, logger)
	if err != nil {
		d.Stop(context.Background())
		return fmt.Errorf("start IPC server: %w", err)
	}
	ipcServer.Serve()

	<-signalCtx.Done()
	logger.Info("minute daemon shutting down")

	ipcServer.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout()+5*time.Second)
	defer shutdownCancel()
	d.Stop(shutdownCtx)
	manager.Close()
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
