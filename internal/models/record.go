package models

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Category classifies a record into one of the site's fixed sections.
type Category string

const (
	CategoryNews         Category = "news"
	CategoryEvent        Category = "event"
	CategoryGallery      Category = "gallery"
	CategoryDocument     Category = "document"
	CategoryHeritage     Category = "heritage"
	CategoryEmergency    Category = "emergency"
	CategoryContact      Category = "contact"
	CategoryAnnouncement Category = "announcement"
)

// Categories lists every valid category value.
var Categories = []Category{
	CategoryNews,
	CategoryEvent,
	CategoryGallery,
	CategoryDocument,
	CategoryHeritage,
	CategoryEmergency,
	CategoryContact,
	CategoryAnnouncement,
}

// Valid reports whether c is one of the fixed category values.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority marks how prominently the site should surface a record.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the fixed priority values.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// ContentRecord is a news/announcement item as persisted in data/news.json.
// The Hindi fields are the site's primary language, English the secondary.
type ContentRecord struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	Timestamp int64    `json:"timestamp"`
	TitleHI   string   `json:"title_hi"`
	TitleEN   string   `json:"title_en"`
	DescHI    string   `json:"description_hi"`
	DescEN    string   `json:"description_en"`
	Image     *string  `json:"image"`
	Category  Category `json:"category"`
	Priority  Priority `json:"priority"`
	Tags      []string `json:"tags"`
}

// GalleryRecord is a photo item as persisted in data/gallery.json.
// Unlike ContentRecord the media path is mandatory.
type GalleryRecord struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	Timestamp int64    `json:"timestamp"`
	Path      string   `json:"path"`
	TitleHI   string   `json:"title_hi"`
	TitleEN   string   `json:"title_en"`
	Category  Category `json:"category"`
	Tags      []string `json:"tags"`
}

// NewRecordID generates a short unique identifier for a new record.
func NewRecordID() string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + hex.EncodeToString(suffix)
}

// RecordDate formats a capture time the way the site displays dates.
func RecordDate(t time.Time) string {
	return t.Format("02/01/2006")
}
