package fetch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smrz/internal/fetch"
)

const articleHTML = `<!doctype html>
<html>
<head>
  <title>Example</title>
  <style>body { color: red; }</style>
  <script>alert("x")</script>
</head>
<body>

  <h1 onclick="steal()">Hello world</h1>


  <p>First <a href="https://example.com/more" onmouseover="x()">paragraph</a>.</p>
  <form action="/subscribe"><input name="email"></form>
  <noscript>enable js</noscript>
</body>
</html>`

func newFetcher() *fetch.Fetcher {
	return fetch.New(http.DefaultClient, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/article":
			if r.Header.Get("User-Agent") != fetch.UserAgent {
				http.Error(w, "bad agent", http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte(articleHTML))
		case "/data.json":
			_, _ = w.Write([]byte(`{"title":"t"}`))
		case "/file.mp3":
			_, _ = w.Write([]byte("ID3 audio bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestCleanHTML(t *testing.T) {
	srv := newServer(t)

	got, err := newFetcher().CleanHTML(context.Background(), srv.URL+"/article")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, unwanted := range []string{"<script", "alert(", "<style", "color: red", "onclick", "onmouseover", "<form", "enable js"} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("expected %q to be removed from %q", unwanted, got)
		}
	}

	for _, wanted := range []string{"Hello world", "<p>", `href="https://example.com/more"`} {
		if !strings.Contains(got, wanted) {
			t.Fatalf("expected %q to be kept in %q", wanted, got)
		}
	}

	for _, line := range strings.Split(got, "\n") {
		if strings.TrimSpace(line) == "" || line != strings.TrimSpace(line) {
			t.Fatalf("expected trimmed non-blank lines, got %q", got)
		}
	}
}

func TestOpenUnexpectedStatus(t *testing.T) {
	srv := newServer(t)

	_, err := newFetcher().CleanHTML(context.Background(), srv.URL+"/missing")
	if !errors.Is(err, fetch.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}

	var fetchErr *fetch.Error
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected *fetch.Error with status 404, got %#v", err)
	}
}

func TestOpenUnreachable(t *testing.T) {
	_, err := newFetcher().Document(context.Background(), "http://127.0.0.1:1/unreachable")
	if !errors.Is(err, fetch.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestJSON(t *testing.T) {
	srv := newServer(t)

	var v struct {
		Title string `json:"title"`
	}
	if err := newFetcher().JSON(context.Background(), srv.URL+"/data.json", &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Title != "t" {
		t.Fatalf("unexpected title: %q", v.Title)
	}
}

func TestDownload(t *testing.T) {
	srv := newServer(t)
	dst := filepath.Join(t.TempDir(), "file.mp3")

	if err := newFetcher().Download(context.Background(), srv.URL+"/file.mp3", dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}

	if string(data) != "ID3 audio bytes" {
		t.Fatalf("unexpected file content: %q", data)
	}
}
