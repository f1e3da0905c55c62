package metadata

import (
	"context"
	"net/url"
	"strings"
	"time"

	"smrz/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

//nolint:gochecknoglobals // Read-only selector lists, most specific first.
var (
	titleSelectors = []string{
		"meta[property='og:title']",
		"meta[name='twitter:title']",
	}
	authorSelectors = []string{
		"meta[name='author']",
		"meta[property='article:author']",
		"meta[name='parsely-author']",
		"meta[name='sailthru.author']",
	}
	dateSelectors = []string{
		"meta[property='article:published_time']",
		"meta[itemprop='datePublished']",
		"meta[name='pubdate']",
		"meta[name='publish-date']",
		"meta[name='date']",
		"meta[name='parsely-pub-date']",
	}
	imageSelectors = []string{
		"meta[property='og:image']",
		"meta[name='twitter:image']",
	}
)

// Article fetches pageURL and reads its metadata.
func (c *Client) Article(ctx context.Context, pageURL string) (domain.ArticleMetadata, error) {
	doc, err := c.fetcher.Document(ctx, pageURL)
	if err != nil {
		return domain.ArticleMetadata{}, err
	}

	return ArticleFromDocument(doc, pageURL), nil
}

// ArticleFromDocument reads article metadata from a parsed page.
func ArticleFromDocument(doc *goquery.Document, pageURL string) domain.ArticleMetadata {
	meta := domain.ArticleMetadata{
		Title:     firstContent(doc, titleSelectors),
		Author:    strings.Join(authors(doc), ", "),
		Favicon:   Favicon(pageURL),
		MetaImage: firstContent(doc, imageSelectors),
	}

	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("head > title").First().Text())
	}

	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	if published, ok := publishedDate(doc); ok {
		meta.PublishedDate = &published
	}

	return meta
}

// Favicon returns the conventional favicon location of the URL's host.
func Favicon(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}

	return "https://" + u.Host + "/favicon.ico"
}

// ParseDate parses a date written in any common layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func authors(doc *goquery.Document) []string {
	var names []string
	seen := make(map[string]struct{})

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || strings.HasPrefix(name, "http") {
			return
		}

		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}

		seen[key] = struct{}{}
		names = append(names, name)
	}

	for _, selector := range authorSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			add(s.AttrOr("content", ""))
		})
	}

	if len(names) == 0 {
		doc.Find("[rel='author'], [itemprop='author'] [itemprop='name']").Each(func(_ int, s *goquery.Selection) {
			add(s.Text())
		})
	}

	return names
}

func publishedDate(doc *goquery.Document) (time.Time, bool) {
	for _, selector := range dateSelectors {
		if t, ok := ParseDate(doc.Find(selector).First().AttrOr("content", "")); ok {
			return t, true
		}
	}

	if t, ok := ParseDate(doc.Find("time[datetime]").First().AttrOr("datetime", "")); ok {
		return t, true
	}

	return time.Time{}, false
}

func firstContent(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if content := strings.TrimSpace(doc.Find(selector).First().AttrOr("content", "")); content != "" {
			return content
		}
	}

	return ""
}
