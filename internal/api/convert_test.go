package api_test

import (
	"testing"
	"time"

	"minute/internal/api"
	"minute/internal/session"
)

func TestFromSession(t *testing.T) {
	duration := int64(125)
	created := time.Date(2025, time.March, 4, 10, 30, 0, 0, time.UTC)
	sess := &session.Session{
		ID:             "abc-123",
		Title:          "Weekly Sync",
		Status:         session.StatusCompleted,
		AudioSource:    session.SourceMicrophoneOnly,
		AudioPath:      "meetings/abc-123/audio.wav",
		TranscriptPath: "meetings/abc-123/transcript.txt",
		Duration:       &duration,
		CreatedAt:      created,
		UpdatedAt:      created.Add(3 * time.Minute),
	}

	dto := api.FromSession(sess)
	if dto.ID != "abc-123" || dto.Status != "completed" {
		t.Fatalf("unexpected conversion: %+v", dto)
	}
	if !dto.HasDuration() || dto.DurationSeconds != 125 {
		t.Fatalf("expected duration 125, got %d", dto.DurationSeconds)
	}
	if dto.CreatedAt != "2025-03-04T10:30:00Z" {
		t.Fatalf("unexpected created_at: %s", dto.CreatedAt)
	}
}

func TestFromSessionWithoutDuration(t *testing.T) {
	dto := api.FromSession(&session.Session{ID: "x", Status: session.StatusRecording})
	if dto.HasDuration() {
		t.Fatalf("expected missing duration, got %d", dto.DurationSeconds)
	}
}

func TestFromSessionNil(t *testing.T) {
	dto := api.FromSession(nil)
	if dto.ID != "" || dto.HasDuration() {
		t.Fatalf("expected zero DTO for nil session, got %+v", dto)
	}
}

func TestMergeStatsIncludesAllStatuses(t *testing.T) {
	merged := api.MergeStats(map[session.Status]int{
		session.StatusCompleted: 4,
		session.StatusFailed:    1,
	})
	if len(merged) != len(session.AllStatuses()) {
		t.Fatalf("expected %d entries, got %d", len(session.AllStatuses()), len(merged))
	}
	if merged["completed"] != 4 || merged["failed"] != 1 || merged["recording"] != 0 {
		t.Fatalf("unexpected merged stats: %+v", merged)
	}
}
