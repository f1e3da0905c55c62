package transcribe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"smrz/internal/transcribe"

	"github.com/openai/openai-go/v3/option"
)

func TestWhisperTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello there"}`))
	}))
	defer srv.Close()

	w := transcribe.NewWhisper("key", srv.Client(), option.WithBaseURL(srv.URL+"/"))

	text, err := w.Transcribe(context.Background(), writeAudio(t), "en")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if text != "hello there" {
		t.Fatalf("Transcribe() = %q, want %q", text, "hello there")
	}
}

func TestWhisperTranscribeDoesNotRetry(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	w := transcribe.NewWhisper("key", srv.Client(), option.WithBaseURL(srv.URL+"/"))

	if _, err := w.Transcribe(context.Background(), writeAudio(t), "en"); err == nil {
		t.Fatal("Transcribe() error = nil, want error")
	}

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Fatalf("transcription requests = %d, want 1", calls)
	}
}

func writeAudio(t *testing.T) string {
	t.Helper()

	audioPath := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(audioPath, []byte("ID3 fake audio"), 0o600); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	return audioPath
}
