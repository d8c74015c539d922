package bot

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramsetu/sandesh/internal/cache"
	"github.com/gramsetu/sandesh/internal/classify"
	"github.com/gramsetu/sandesh/internal/config"
	"github.com/gramsetu/sandesh/internal/models"
	"github.com/gramsetu/sandesh/internal/pipeline"
)

type recordingStore struct {
	news    []models.ContentRecord
	gallery []models.GalleryRecord
	uploads map[string][]byte
}

func newRecordingStore() *recordingStore {
	return &recordingStore{uploads: make(map[string][]byte)}
}

func (s *recordingStore) AppendNews(ctx context.Context, rec models.ContentRecord) error {
	s.news = append([]models.ContentRecord{rec}, s.news...)
	return nil
}

func (s *recordingStore) AppendGallery(ctx context.Context, rec models.GalleryRecord) error {
	s.gallery = append([]models.GalleryRecord{rec}, s.gallery...)
	return nil
}

func (s *recordingStore) UploadMedia(ctx context.Context, path string, data []byte) (string, error) {
	s.uploads[path] = data
	return path, nil
}

// dispatchBot builds a Bot whose replies are captured instead of sent, wired
// to a real pipeline over a recording store and the fallback classifier.
func dispatchBot(t *testing.T, cfg *config.Config, st *recordingStore) (*Bot, *[]string) {
	t.Helper()
	var replies []string
	replyForTest = func(chatID int64, text string) {
		replies = append(replies, text)
	}
	t.Cleanup(func() { replyForTest = nil })

	b := &Bot{
		pipeline: pipeline.New(cfg, st, classify.New()),
		cache:    cache.NewMemoryCache(),
		cfg:      cfg,
	}
	return b, &replies
}

func textMessage(senderID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: senderID},
		Chat:      &tgbotapi.Chat{ID: 7},
		Text:      text,
	}
}

func TestHandleMessageDispatchesText(t *testing.T) {
	st := newRecordingStore()
	b, replies := dispatchBot(t, &config.Config{}, st)

	b.handleMessage(context.Background(), textMessage(42, "कल बैठक होगी"))

	require.Len(t, st.news, 1, "text dispatch must reach the pipeline")
	require.Len(t, *replies, 1)
	assert.Contains(t, (*replies)[0], "✅")
	assert.Contains(t, (*replies)[0], "news")
}

func TestHandleMessageDispatchesPhoto(t *testing.T) {
	st := newRecordingStore()
	cfg := &config.Config{AllowedUsers: []int64{1}}
	b, replies := dispatchBot(t, cfg, st)

	msg := textMessage(99, "")
	msg.Caption = "मंदिर"
	msg.Photo = []tgbotapi.PhotoSize{
		{FileID: "small", Width: 90, Height: 60},
		{FileID: "large", Width: 1280, Height: 853},
	}

	b.handleMessage(context.Background(), msg)

	// Unauthorized sender: the photo branch still dispatches and replies with
	// the rejection before any download or write happens.
	assert.Empty(t, st.uploads)
	assert.Empty(t, st.gallery)
	require.Len(t, *replies, 1)
	assert.Equal(t, notAuthorizedReply, (*replies)[0])
}

func TestHandleMessageDispatchesDocument(t *testing.T) {
	st := newRecordingStore()
	cfg := &config.Config{AllowedUsers: []int64{1}}
	b, replies := dispatchBot(t, cfg, st)

	msg := textMessage(99, "")
	msg.Document = &tgbotapi.Document{FileID: "doc", FileName: "notice.pdf"}

	b.handleMessage(context.Background(), msg)

	assert.Empty(t, st.uploads)
	assert.Empty(t, st.news)
	require.Len(t, *replies, 1)
	assert.Equal(t, notAuthorizedReply, (*replies)[0])
}

func TestHandleMessageIgnoresSenderlessUpdates(t *testing.T) {
	st := newRecordingStore()
	b, replies := dispatchBot(t, &config.Config{}, st)

	msg := textMessage(0, "channel post")
	msg.From = nil
	b.handleMessage(context.Background(), msg)

	assert.Empty(t, st.news)
	assert.Empty(t, *replies)
}

func TestHandleMessageFailureReply(t *testing.T) {
	st := newRecordingStore()
	b, replies := dispatchBot(t, &config.Config{}, st)

	msg := textMessage(42, "")
	msg.Photo = []tgbotapi.PhotoSize{{FileID: "f", Width: 100, Height: 100}}
	// Authorized photo with a failing download: the handler boundary turns the
	// error into a failure reply.
	b.pipeline = pipeline.New(&config.Config{HTTPTimeout: time.Second}, st, classify.New())
	ack, err := b.pipeline.HandlePhoto(context.Background(), 42, "", func(ctx context.Context) ([]byte, error) {
		return nil, context.DeadlineExceeded
	})
	b.replyOutcome(msg, ack, err)

	require.Len(t, *replies, 1)
	assert.Contains(t, (*replies)[0], "❌")
}
