package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"minute/internal/preflight"
	"minute/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("Data directory", dir)
	if !result.Passed {
		t.Fatalf("expected writable temp dir to pass: %s", result.Detail)
	}

	missing := preflight.CheckDirectoryAccess("Data directory", filepath.Join(dir, "nope"))
	if missing.Passed {
		t.Fatal("expected missing directory to fail")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	notDir := preflight.CheckDirectoryAccess("Data directory", file)
	if notDir.Passed {
		t.Fatal("expected plain file to fail directory check")
	}
}

func TestCheckBinary(t *testing.T) {
	found := preflight.CheckBinary("shell", "sh", "used by tests", false)
	if !found.Passed {
		t.Fatalf("expected sh on PATH: %s", found.Detail)
	}
	missing := preflight.CheckBinary("ghost", "definitely-not-a-binary", "", false)
	if missing.Passed {
		t.Fatal("expected unknown binary to fail")
	}
	unset := preflight.CheckBinary("empty", "", "", true)
	if unset.Passed || !unset.Optional {
		t.Fatalf("expected unconfigured optional check to fail softly: %+v", unset)
	}
}

func TestCheckDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MustCreateSession(t, store, "One")

	result := preflight.CheckDatabase(context.Background(), store)
	if !result.Passed {
		t.Fatalf("expected healthy database: %s", result.Detail)
	}
	if result.Detail != "1 sessions" {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckTranscriber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	reachable := preflight.CheckTranscriber(context.Background(), server.URL)
	if !reachable.Passed {
		t.Fatalf("expected reachable endpoint: %s", reachable.Detail)
	}

	invalid := preflight.CheckTranscriber(context.Background(), "not a url")
	if invalid.Passed {
		t.Fatal("expected invalid endpoint to fail")
	}

	server.Close()
	down := preflight.CheckTranscriber(context.Background(), server.URL)
	if down.Passed {
		t.Fatal("expected closed endpoint to fail")
	}
}

func TestAllPassed(t *testing.T) {
	results := []preflight.Result{
		{Name: "a", Passed: true},
		{Name: "b", Optional: true},
	}
	if !preflight.AllPassed(results) {
		t.Fatal("optional failures must not fail the run")
	}
	results = append(results, preflight.Result{Name: "c"})
	if preflight.AllPassed(results) {
		t.Fatal("required failure must fail the run")
	}
}
