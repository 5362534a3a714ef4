package transcribe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"minute/internal/testsupport"
	"minute/internal/transcribe"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF-ish payload"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribePostsMultipartAndParsesJSON(t *testing.T) {
	var gotModel, gotLanguage, gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		if file, header, err := r.FormFile("file"); err == nil {
			gotFilename = header.Filename
			file.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello from the meeting"}`))
	}))
	defer server.Close()

	client, err := transcribe.New(server.URL, "whisper-large-v3-turbo", "en", 10*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := client.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Text != "hello from the meeting" {
		t.Fatalf("unexpected transcript: %q", result.Text)
	}
	if gotModel != "whisper-large-v3-turbo" || gotLanguage != "en" {
		t.Fatalf("form fields: model=%q language=%q", gotModel, gotLanguage)
	}
	if gotFilename != "audio.wav" {
		t.Fatalf("unexpected upload filename: %q", gotFilename)
	}
}

func TestTranscribeAcceptsPlainTextResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain transcript"))
	}))
	defer server.Close()

	client, err := transcribe.New(server.URL, "", "", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := client.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Text != "plain transcript" {
		t.Fatalf("unexpected transcript: %q", result.Text)
	}
}

func TestTranscribeSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := transcribe.New(server.URL, "", "", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.Transcribe(context.Background(), writeAudio(t)); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	client, err := transcribe.New("http://127.0.0.1:1/transcribe", "", "", time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.Transcribe(context.Background(), "/no/such/file.wav"); err == nil {
		t.Fatal("expected error for missing audio file")
	}
}

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := transcribe.New(" ", "", "", time.Second); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestNewFromConfig(t *testing.T) {
	client, err := transcribe.NewFromConfig(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil bridge when endpoint unset")
	}

	cfg := testsupport.NewConfig(t, testsupport.WithTranscriberEndpoint("http://127.0.0.1:9000/v1/transcribe"))
	client, err = transcribe.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if client == nil {
		t.Fatal("expected bridge when endpoint configured")
	}
}
