package domain

import "time"

// SourceKind is the classification of an input URL.
type SourceKind int

const (
	KindArticle SourceKind = iota
	KindYouTube
	KindDirectAudio
	KindDirectVideo
)

func (k SourceKind) String() string {
	switch k {
	case KindYouTube:
		return "youtube"
	case KindDirectAudio:
		return "audio"
	case KindDirectVideo:
		return "video"
	default:
		return "article"
	}
}

// IsMedia reports whether content of this kind has to be transcribed.
func (k SourceKind) IsMedia() bool {
	return k != KindArticle
}

type ArticleMetadata struct {
	Title         string     `json:"title"`
	Author        string     `json:"author,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Favicon       string     `json:"favicon,omitempty"`
	MetaImage     string     `json:"meta_image,omitempty"`
}

type VideoMetadata struct {
	Title         string     `json:"title,omitempty"`
	Channel       string     `json:"channel,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
}

// Content is the normalized body of one source together with its metadata.
type Content struct {
	Kind     SourceKind
	URL      string
	Metadata Metadata
	Markdown string
	// Cost is the model cost spent producing the content.
	Cost float64
}

// Metadata is implemented by ArticleMetadata and VideoMetadata.
type Metadata interface {
	DisplayTitle() string
}

func (m ArticleMetadata) DisplayTitle() string { return m.Title }

func (m VideoMetadata) DisplayTitle() string { return m.Title }
