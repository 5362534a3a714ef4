package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"minute/internal/config"
	"minute/internal/session"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable checks for the given config. A nil store
// skips the database check.
func RunAll(ctx context.Context, cfg *config.Config, store *session.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary("arecord", "arecord", "required for audio capture", false),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if store != nil {
		results = append(results, CheckDatabase(ctx, store))
	}
	if strings.TrimSpace(cfg.Transcriber.Endpoint) != "" {
		results = append(results, CheckTranscriber(ctx, cfg.Transcriber.Endpoint))
	} else {
		results = append(results, Result{
			Name:     "Transcriber",
			Optional: true,
			Detail:   "no endpoint configured (recordings will not be transcribed)",
		})
	}
	return results
}

// CheckBinary verifies that an external command resolves on PATH.
func CheckBinary(name, command, description string, optional bool) Result {
	result := Result{Name: name, Optional: optional}
	command = strings.TrimSpace(command)
	if command == "" {
		result.Detail = "command not configured"
		return result
	}
	path, err := exec.LookPath(command)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found (%s)", command, description)
		return result
	}
	result.Passed = true
	result.Detail = path
	return result
}

// CheckDirectoryAccess verifies that the directory exists and is readable
// and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabase verifies the session database answers queries.
func CheckDatabase(ctx context.Context, store *session.Store) Result {
	const name = "Session database"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stats, err := store.Stats(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("query failed: %v", err)}
	}
	total := 0
	for _, count := range stats {
		total += count
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d sessions", total)}
}

// CheckTranscriber verifies the transcription endpoint is reachable. Any
// HTTP response counts as reachable; transcription uses POST with a payload
// this check does not attempt.
func CheckTranscriber(ctx context.Context, endpoint string) Result {
	const name = "Transcriber"

	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || parsed.Host == "" {
		return Result{Name: name, Detail: fmt.Sprintf("invalid endpoint %q", endpoint)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("build request: %v", err)}
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d)", resp.StatusCode)}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "endpoint unresponsive (timed out)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "endpoint unreachable (timed out)"
	}
	return err.Error()
}

// AllPassed reports whether every non-optional check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed && !result.Optional {
			return false
		}
	}
	return true
}
