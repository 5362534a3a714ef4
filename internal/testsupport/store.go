package testsupport

import (
	"context"
	"testing"

	"minute/internal/config"
	"minute/internal/session"
)

// MustOpenStore opens a session.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close session store: %v", err)
		}
	})
	return store
}

// MustCreateSession inserts a recording session for tests.
func MustCreateSession(t testing.TB, store *session.Store, title string) *session.Session {
	t.Helper()

	sess, err := store.Create(context.Background(), title, session.SourceMicrophoneOnly)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}
