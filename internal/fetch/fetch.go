package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/PuerkitoBio/goquery"
)

const UserAgent = "Mozilla/5.0"

// ErrFetch matches every acquisition failure of this package.
var ErrFetch = errors.New("fetch failed")

// Error describes a failed fetch. StatusCode is zero when no response was
// received.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status: %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return "fetch " + e.URL + ": failed"
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}

	return []error{ErrFetch, e.Err}
}

type Fetcher struct {
	client *http.Client
	log    *slog.Logger
}

func New(client *http.Client, log *slog.Logger) *Fetcher {
	return &Fetcher{client: client, log: log}
}

// Open issues a GET request and returns the body of a 200 response. The
// caller closes the body.
func (f *Fetcher) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req) //nolint:gosec // User supplied URL is the whole point.
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("do request: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		f.close(ctx, resp.Body, rawURL)

		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}

// Document fetches and parses an HTML page.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer f.close(ctx, body, rawURL)

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("create document from reader: %w", err)}
	}

	return doc, nil
}

// JSON fetches rawURL and decodes the JSON body into v.
func (f *Fetcher) JSON(ctx context.Context, rawURL string, v any) error {
	body, err := f.Open(ctx, rawURL)
	if err != nil {
		return err
	}
	defer f.close(ctx, body, rawURL)

	if err = json.NewDecoder(body).Decode(v); err != nil {
		return &Error{URL: rawURL, Err: fmt.Errorf("decode body: %w", err)}
	}

	return nil
}

// Download stores the body of rawURL in the file at dst.
func (f *Fetcher) Download(ctx context.Context, rawURL string, dst string) error {
	body, err := f.Open(ctx, rawURL)
	if err != nil {
		return err
	}
	defer f.close(ctx, body, rawURL)

	file, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err = io.Copy(file, body); err != nil {
		return errors.Join(
			&Error{URL: rawURL, Err: fmt.Errorf("copy body: %w", err)},
			file.Close(),
		)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	return nil
}

// CleanHTML fetches rawURL and returns its sanitized markup.
func (f *Fetcher) CleanHTML(ctx context.Context, rawURL string) (string, error) {
	doc, err := f.Document(ctx, rawURL)
	if err != nil {
		return "", err
	}

	return Sanitize(doc)
}

func (f *Fetcher) close(ctx context.Context, body io.Closer, rawURL string) {
	if err := body.Close(); err != nil {
		f.log.ErrorContext(ctx, "Failed to close response body",
			"error", err,
			"url", rawURL)
	}
}
