package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gramsetu/sandesh/internal/config"
	"github.com/gramsetu/sandesh/internal/logger"
	"github.com/gramsetu/sandesh/internal/media"
	"github.com/gramsetu/sandesh/internal/models"
)

// ErrNotAuthorized marks a sender that is not on a non-empty allow-list.
// It is reported back to the sender, not logged as a failure.
var ErrNotAuthorized = errors.New("sender is not authorized to publish content")

// Store is the slice of the content store the pipeline writes through.
type Store interface {
	AppendNews(ctx context.Context, rec models.ContentRecord) error
	AppendGallery(ctx context.Context, rec models.GalleryRecord) error
	UploadMedia(ctx context.Context, path string, data []byte) (string, error)
}

// Classifier turns message text into advisory categorization metadata.
type Classifier interface {
	Classify(ctx context.Context, text string, hasImage bool) models.Classification
}

// Downloader fetches the raw bytes of an attached file from the transport.
type Downloader func(ctx context.Context) ([]byte, error)

// Pipeline turns one inbound message into a committed change to the content
// store. Each message is handled independently; failures short-circuit to an
// error the transport reports back to the sender. An uploaded media blob is
// not rolled back if the subsequent collection write fails.
type Pipeline struct {
	cfg        *config.Config
	store      Store
	classifier Classifier
	media      *media.Processor
}

func New(cfg *config.Config, store Store, classifier Classifier) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		classifier: classifier,
		media:      media.NewProcessor(),
	}
}

// HandleText classifies a plain text message and appends it to the news
// collection. It returns a user-facing acknowledgment.
func (p *Pipeline) HandleText(ctx context.Context, senderID int64, text string) (string, error) {
	if !p.cfg.IsAllowed(senderID) {
		return "", ErrNotAuthorized
	}

	cls := p.classifier.Classify(ctx, text, false)
	rec := p.contentRecord(cls, nil)
	if err := p.store.AppendNews(ctx, rec); err != nil {
		return "", err
	}

	logger.Get().Info().
		Str("id", rec.ID).
		Str("category", string(rec.Category)).
		Int64("sender", senderID).
		Msg("Text message published")
	return fmt.Sprintf("✅ प्रकाशित!\nCategory: %s\nTitle: %s\nID: %s", rec.Category, rec.TitleHI, rec.ID), nil
}

// HandlePhoto downloads the photo, classifies its caption, optimizes the
// image, uploads it, and appends either a gallery or a content record
// depending on the classified category.
func (p *Pipeline) HandlePhoto(ctx context.Context, senderID int64, caption string, download Downloader) (string, error) {
	if !p.cfg.IsAllowed(senderID) {
		return "", ErrNotAuthorized
	}

	raw, err := download(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to download photo: %w", err)
	}

	if caption == "" {
		caption = "गांव की तस्वीर" // placeholder: "village photo"
	}
	cls := p.classifier.Classify(ctx, caption, true)

	optimized, err := p.media.Process(raw)
	if err != nil {
		return "", err
	}

	path, err := p.store.UploadMedia(ctx, "images/"+media.Filename(), optimized)
	if err != nil {
		return "", err
	}

	if cls.Category == models.CategoryGallery || cls.Category == models.CategoryHeritage {
		rec := p.galleryRecord(cls, path)
		if err := p.store.AppendGallery(ctx, rec); err != nil {
			return "", err
		}
	} else {
		rec := p.contentRecord(cls, &path)
		if err := p.store.AppendNews(ctx, rec); err != nil {
			return "", err
		}
	}

	logger.Get().Info().
		Str("path", path).
		Str("category", string(cls.Category)).
		Int64("sender", senderID).
		Msg("Photo published")
	return fmt.Sprintf("✅ फोटो सहेजी गई!\nCategory: %s\nTitle: %s\nPath: %s", cls.Category, cls.TitleHI, path), nil
}

// HandleDocument uploads the raw file under its original name (last write
// wins) and appends a content record with the category forced to document.
func (p *Pipeline) HandleDocument(ctx context.Context, senderID int64, filename, caption string, download Downloader) (string, error) {
	if !p.cfg.IsAllowed(senderID) {
		return "", ErrNotAuthorized
	}

	raw, err := download(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to download document: %w", err)
	}

	path, err := p.store.UploadMedia(ctx, "documents/"+filename, raw)
	if err != nil {
		return "", err
	}

	text := caption
	if text == "" {
		text = filename
	}
	cls := p.classifier.Classify(ctx, text, false)
	cls.Category = models.CategoryDocument

	rec := p.contentRecord(cls, nil)
	if err := p.store.AppendNews(ctx, rec); err != nil {
		return "", err
	}

	logger.Get().Info().
		Str("path", path).
		Str("filename", filename).
		Int64("sender", senderID).
		Msg("Document published")
	return fmt.Sprintf("✅ दस्तावेज़ सहेजा गया!\nFile: %s\nPath: %s", filename, path), nil
}

func (p *Pipeline) contentRecord(cls models.Classification, imagePath *string) models.ContentRecord {
	now := time.Now()
	return models.ContentRecord{
		ID:        models.NewRecordID(),
		Date:      models.RecordDate(now),
		Timestamp: now.UnixMilli(),
		TitleHI:   cls.TitleHI,
		TitleEN:   cls.TitleEN,
		DescHI:    cls.DescHI,
		DescEN:    cls.DescEN,
		Image:     imagePath,
		Category:  cls.Category,
		Priority:  cls.Priority,
		Tags:      cls.Tags,
	}
}

func (p *Pipeline) galleryRecord(cls models.Classification, path string) models.GalleryRecord {
	now := time.Now()
	return models.GalleryRecord{
		ID:        models.NewRecordID(),
		Date:      models.RecordDate(now),
		Timestamp: now.UnixMilli(),
		Path:      path,
		TitleHI:   cls.TitleHI,
		TitleEN:   cls.TitleEN,
		Category:  cls.Category,
		Tags:      cls.Tags,
	}
}
