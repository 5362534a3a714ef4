package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"minute/internal/api"
	"minute/internal/daemon"
	"minute/internal/logging"
	"minute/internal/session"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Minute", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logging.NewComponentLogger(logger, "ipc"),
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve accepts RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

// SocketPath returns the path the server is listening on.
func (s *Server) SocketPath() string {
	return s.path
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Start(req StartRequest, resp *StartResponse) error {
	source, ok := session.ParseAudioSource(req.Source)
	if req.Source != "" && !ok {
		return fmt.Errorf("unknown audio source %q", req.Source)
	}
	sess, err := s.daemon.Manager().StartRecording(s.ctx, req.Title, source)
	if err != nil {
		return err
	}
	resp.Session = api.FromSession(sess)
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	sess, err := s.daemon.Manager().StopRecording(s.ctx)
	if err != nil {
		return err
	}
	resp.Session = api.FromSession(sess)
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	stats, err := s.daemon.SessionStats(s.ctx)
	if err != nil {
		return err
	}
	status := api.DaemonStatus{
		Running:      s.daemon.Running(),
		PID:          os.Getpid(),
		SessionStats: api.MergeStats(stats),
		LockPath:     s.daemon.LockPath(),
		DatabasePath: s.daemon.DatabasePath(),
	}
	current, err := s.daemon.Manager().GetCurrent(s.ctx)
	if err != nil {
		return err
	}
	if current != nil {
		dto := api.FromSession(current)
		status.Current = &dto
	}
	resp.Status = status
	return nil
}

func (s *service) Current(_ CurrentRequest, resp *CurrentResponse) error {
	current, err := s.daemon.Manager().GetCurrent(s.ctx)
	if err != nil {
		return err
	}
	if current != nil {
		dto := api.FromSession(current)
		resp.Session = &dto
	}
	return nil
}

func (s *service) List(req ListRequest, resp *ListResponse) error {
	statuses := make([]session.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		status, ok := session.ParseStatus(raw)
		if !ok {
			return fmt.Errorf("unknown status %q", raw)
		}
		statuses = append(statuses, status)
	}
	sessions, err := s.daemon.Manager().List(s.ctx, statuses...)
	if err != nil {
		return err
	}
	resp.Sessions = api.FromSessions(sessions)
	return nil
}

func (s *service) Describe(req DescribeRequest, resp *DescribeResponse) error {
	sess, err := s.daemon.Manager().Get(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Session = api.FromSession(sess)
	return nil
}

func (s *service) Retry(req RetryRequest, resp *RetryResponse) error {
	sess, err := s.daemon.Manager().RetryTranscription(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Session = api.FromSession(sess)
	return nil
}

func (s *service) SetTitle(req SetTitleRequest, resp *SetTitleResponse) error {
	sess, err := s.daemon.Manager().UpdateTitle(s.ctx, req.ID, req.Title)
	if err != nil {
		return err
	}
	resp.Session = api.FromSession(sess)
	return nil
}

func (s *service) Delete(req DeleteRequest, resp *DeleteResponse) error {
	if err := s.daemon.Manager().Delete(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Removed = true
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	if err != nil {
		return err
	}
	resp.Sent = sent
	resp.Message = message
	return nil
}
