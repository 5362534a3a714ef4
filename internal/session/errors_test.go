package session_test

import (
	"errors"
	"testing"

	"minute/internal/session"
	"minute/internal/wav"
)

func TestWrapTagsSentinel(t *testing.T) {
	err := session.Wrap(session.ErrAlreadyActive, "recorder", "start", "recording", nil)
	if !errors.Is(err, session.ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive classification, got %v", err)
	}
}

func TestWrapChainsFinalizeTimeout(t *testing.T) {
	err := session.Wrap(session.ErrFinalizeTimeout, "recorder", "stop", "finalize deadline elapsed", wav.ErrFinalizeTimeout)
	if !errors.Is(err, session.ErrFinalizeTimeout) {
		t.Fatalf("expected ErrFinalizeTimeout classification, got %v", err)
	}
	if !errors.Is(err, wav.ErrFinalizeTimeout) {
		t.Fatalf("expected the encoder timeout to stay in the chain, got %v", err)
	}
}

func TestWrapDefaultsToStorage(t *testing.T) {
	err := session.Wrap(nil, "recorder", "stop", "persist", errors.New("disk full"))
	if !errors.Is(err, session.ErrStorage) {
		t.Fatalf("expected ErrStorage default, got %v", err)
	}
}
