package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramsetu/sandesh/internal/classify"
	"github.com/gramsetu/sandesh/internal/config"
	"github.com/gramsetu/sandesh/internal/models"
)

type fakeStore struct {
	news      []models.ContentRecord
	gallery   []models.GalleryRecord
	uploads   map[string][]byte
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: make(map[string][]byte)}
}

func (f *fakeStore) AppendNews(ctx context.Context, rec models.ContentRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.news = append([]models.ContentRecord{rec}, f.news...)
	return nil
}

func (f *fakeStore) AppendGallery(ctx context.Context, rec models.GalleryRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.gallery = append([]models.GalleryRecord{rec}, f.gallery...)
	return nil
}

func (f *fakeStore) UploadMedia(ctx context.Context, path string, data []byte) (string, error) {
	f.uploads[path] = data
	return path, nil
}

type fixedClassifier struct {
	result models.Classification
}

func (f *fixedClassifier) Classify(ctx context.Context, text string, hasImage bool) models.Classification {
	return f.result
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func openConfig() *config.Config {
	return &config.Config{}
}

// Text message with both providers unavailable: the fallback classification
// lands in the news collection and the acknowledgment names the category.
func TestHandleTextWithFallbackClassifier(t *testing.T) {
	st := newFakeStore()
	p := New(openConfig(), st, classify.New())

	ack, err := p.HandleText(context.Background(), 42, "कल बैठक होगी")
	require.NoError(t, err)

	require.Len(t, st.news, 1)
	rec := st.news[0]
	assert.Equal(t, models.CategoryNews, rec.Category)
	assert.Equal(t, "कल बैठक होगी", rec.TitleHI)
	assert.Equal(t, models.PriorityMedium, rec.Priority)
	assert.Nil(t, rec.Image)
	assert.NotEmpty(t, rec.ID)
	assert.Contains(t, ack, "news")
}

// Photo classified as heritage goes to the gallery collection, not news, and
// the stored path matches images/<digits>_<8 hex>.jpg.
func TestHandlePhotoHeritageGoesToGallery(t *testing.T) {
	st := newFakeStore()
	cls := &fixedClassifier{result: models.Classification{
		Category: models.CategoryHeritage,
		TitleHI:  "मंदिर",
		TitleEN:  "Temple",
		Priority: models.PriorityMedium,
		Tags:     []string{"heritage"},
	}}
	p := New(openConfig(), st, cls)

	download := func(ctx context.Context) ([]byte, error) {
		return pngBytes(t, 2000, 1500), nil
	}
	ack, err := p.HandlePhoto(context.Background(), 42, "मंदिर", download)
	require.NoError(t, err)

	assert.Empty(t, st.news)
	require.Len(t, st.gallery, 1)
	rec := st.gallery[0]
	assert.Regexp(t, `^images/\d+_[0-9a-f]{8}\.jpg$`, rec.Path)
	assert.Equal(t, models.CategoryHeritage, rec.Category)
	assert.Contains(t, st.uploads, rec.Path)
	assert.Contains(t, ack, rec.Path)
}

// Photo classified as anything else becomes a ContentRecord carrying the
// media path.
func TestHandlePhotoNewsCarriesImagePath(t *testing.T) {
	st := newFakeStore()
	cls := &fixedClassifier{result: models.Classification{
		Category: models.CategoryNews,
		TitleHI:  "सड़क निर्माण",
		TitleEN:  "Road construction",
		Priority: models.PriorityMedium,
		Tags:     []string{},
	}}
	p := New(openConfig(), st, cls)

	download := func(ctx context.Context) ([]byte, error) {
		return pngBytes(t, 800, 600), nil
	}
	_, err := p.HandlePhoto(context.Background(), 42, "सड़क", download)
	require.NoError(t, err)

	assert.Empty(t, st.gallery)
	require.Len(t, st.news, 1)
	require.NotNil(t, st.news[0].Image)
	assert.Regexp(t, `^images/\d+_[0-9a-f]{8}\.jpg$`, *st.news[0].Image)
}

// Documents keep their original filename, get category forced to document,
// and never carry an image field.
func TestHandleDocumentForcesCategory(t *testing.T) {
	st := newFakeStore()
	p := New(openConfig(), st, classify.New())

	download := func(ctx context.Context) ([]byte, error) {
		return []byte("%PDF-1.4 fake"), nil
	}
	ack, err := p.HandleDocument(context.Background(), 42, "notice.pdf", "", download)
	require.NoError(t, err)

	assert.Contains(t, st.uploads, "documents/notice.pdf")
	require.Len(t, st.news, 1)
	rec := st.news[0]
	assert.Equal(t, models.CategoryDocument, rec.Category)
	assert.Nil(t, rec.Image)
	assert.Equal(t, "notice.pdf", rec.TitleHI, "filename stands in for the missing caption")
	assert.Contains(t, ack, "documents/notice.pdf")
}

// A sender missing from a non-empty allow-list triggers the authorization
// rejection and no store write of any kind.
func TestUnauthorizedSenderWritesNothing(t *testing.T) {
	st := newFakeStore()
	cfg := &config.Config{AllowedUsers: []int64{1, 2}}
	p := New(cfg, st, classify.New())

	_, err := p.HandleText(context.Background(), 99, "spam")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = p.HandlePhoto(context.Background(), 99, "", func(ctx context.Context) ([]byte, error) {
		t.Fatal("download must not run for unauthorized senders")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	assert.Empty(t, st.news)
	assert.Empty(t, st.gallery)
	assert.Empty(t, st.uploads)
}

// An empty allow-list means open mode: everyone is authorized.
func TestEmptyAllowListIsOpenMode(t *testing.T) {
	st := newFakeStore()
	p := New(openConfig(), st, classify.New())

	_, err := p.HandleText(context.Background(), 12345, "खुला मोड")
	require.NoError(t, err)
	assert.Len(t, st.news, 1)
}

// A failed collection write does not roll back the already-uploaded media
// blob. Accepted limitation, asserted here so a change is deliberate.
func TestUploadedMediaIsNotRolledBack(t *testing.T) {
	st := newFakeStore()
	st.appendErr = errors.New("store unavailable")
	p := New(openConfig(), st, classify.New())

	download := func(ctx context.Context) ([]byte, error) {
		return pngBytes(t, 100, 100), nil
	}
	_, err := p.HandlePhoto(context.Background(), 42, "", download)
	require.Error(t, err)
	assert.Len(t, st.uploads, 1, "blob stays uploaded after the record write fails")
}

func TestHandlePhotoCorruptImageFails(t *testing.T) {
	st := newFakeStore()
	p := New(openConfig(), st, classify.New())

	download := func(ctx context.Context) ([]byte, error) {
		return []byte("garbage"), nil
	}
	_, err := p.HandlePhoto(context.Background(), 42, "", download)
	assert.Error(t, err)
	assert.Empty(t, st.gallery)
	assert.Empty(t, st.news)
}
