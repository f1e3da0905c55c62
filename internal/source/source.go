package source

import (
	"errors"
	"net/url"
	"path"
	"regexp"
	"strings"

	"smrz/internal/domain"

	"mvdan.cc/xurls/v2"
)

const videoIDLength = 11

var ErrNotYouTube = errors.New("not a YouTube video URL")

//nolint:gochecknoglobals // Immutable lookup tables.
var (
	audioExtensions = map[string]struct{}{
		".mp3": {}, ".wav": {}, ".ogg": {}, ".flac": {}, ".aac": {},
	}
	videoExtensions = map[string]struct{}{
		".mp4": {}, ".avi": {}, ".mov": {}, ".mkv": {}, ".webm": {}, ".flv": {},
	}
	youTubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:https?://)?youtu\.be/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/live/([a-zA-Z0-9_-]{11})`),
	}
	urlFinder = xurls.Strict()
)

// Classify maps a URL to its source kind. Unrecognized input is an article.
func Classify(rawURL string) domain.SourceKind {
	ext := strings.ToLower(path.Ext(urlPath(rawURL)))

	if _, ok := audioExtensions[ext]; ok {
		return domain.KindDirectAudio
	}
	if _, ok := videoExtensions[ext]; ok {
		return domain.KindDirectVideo
	}
	if _, err := VideoID(rawURL); err == nil {
		return domain.KindYouTube
	}

	return domain.KindArticle
}

// VideoID returns the 11-character id of a YouTube video URL.
func VideoID(rawURL string) (string, error) {
	for _, pattern := range youTubePatterns {
		match := pattern.FindStringSubmatch(rawURL)
		if len(match) < 2 {
			continue
		}

		if validVideoID(match[1]) {
			return match[1], nil
		}
	}

	return "", ErrNotYouTube
}

// NormalizeYouTubeURL rewrites any supported YouTube URL to the watch form.
func NormalizeYouTubeURL(rawURL string) (string, error) {
	id, err := VideoID(rawURL)
	if err != nil {
		return "", err
	}

	return "https://www.youtube.com/watch?v=" + id, nil
}

// HasHTTPScheme reports whether the URL starts with http:// or https://.
func HasHTTPScheme(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

// FindURL returns the first http(s) URL found in free text, e.g. a shared message.
func FindURL(text string) (string, bool) {
	for _, candidate := range urlFinder.FindAllString(text, -1) {
		if HasHTTPScheme(candidate) {
			return candidate, true
		}
	}

	return "", false
}

func validVideoID(id string) bool {
	if len(id) != videoIDLength {
		return false
	}

	for i := range len(id) {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}

	return true
}

func urlPath(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}

	return u.Path
}
