package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gramsetu/sandesh/internal/logger"
	"github.com/gramsetu/sandesh/internal/models"
)

const (
	// NewsPath is the content collection backing the site's news sections.
	NewsPath = "data/news.json"
	// GalleryPath is the photo collection. It has no size cap.
	GalleryPath = "data/gallery.json"
	// MaxNewsRecords caps the news collection: inserting beyond it silently
	// evicts the oldest record.
	MaxNewsRecords = 50
)

// AppendNews inserts a record at the head of the news collection, trims it to
// MaxNewsRecords, and writes it back under the version token read beforehand.
//
// The read-modify-write is not atomic: two concurrent writers can both read
// version V and the second write wins, discarding the first insertion. This is
// an accepted limitation of the single-operator usage model.
func (c *Client) AppendNews(ctx context.Context, rec models.ContentRecord) error {
	raw, sha, err := c.Read(ctx, NewsPath)
	if err != nil {
		return err
	}

	records := decodeContentRecords(raw)
	records = append([]models.ContentRecord{rec}, records...)
	if len(records) > MaxNewsRecords {
		records = records[:MaxNewsRecords]
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode news collection: %w", err)
	}

	message := fmt.Sprintf("Add %s: %s", rec.Category, rec.TitleEN)
	_, err = c.Write(ctx, NewsPath, data, message, sha)
	return err
}

// AppendGallery inserts a record at the head of the gallery collection.
// The collection grows without bound.
func (c *Client) AppendGallery(ctx context.Context, rec models.GalleryRecord) error {
	raw, sha, err := c.Read(ctx, GalleryPath)
	if err != nil {
		return err
	}

	var records []models.GalleryRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &records); err != nil {
			logger.Get().Warn().Err(err).Str("path", GalleryPath).
				Msg("Malformed gallery collection, resetting to empty")
			records = nil
		}
	}
	records = append([]models.GalleryRecord{rec}, records...)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode gallery collection: %w", err)
	}

	message := fmt.Sprintf("Add gallery item: %s", rec.TitleEN)
	_, err = c.Write(ctx, GalleryPath, data, message, sha)
	return err
}

// ListNews returns up to limit records from the head of the news collection,
// newest first.
func (c *Client) ListNews(ctx context.Context, limit int) ([]models.ContentRecord, error) {
	raw, _, err := c.Read(ctx, NewsPath)
	if err != nil {
		return nil, err
	}
	records := decodeContentRecords(raw)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// decodeContentRecords parses a stored news collection. A missing or
// malformed file is treated as an empty collection rather than an error,
// favoring availability over strict validation.
func decodeContentRecords(raw []byte) []models.ContentRecord {
	if len(raw) == 0 {
		return nil
	}
	var records []models.ContentRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Get().Warn().Err(err).Str("path", NewsPath).
			Msg("Malformed news collection, resetting to empty")
		return nil
	}
	return records
}
