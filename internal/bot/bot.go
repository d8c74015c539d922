package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gramsetu/sandesh/internal/cache"
	"github.com/gramsetu/sandesh/internal/config"
	"github.com/gramsetu/sandesh/internal/logger"
	"github.com/gramsetu/sandesh/internal/models"
	"github.com/gramsetu/sandesh/internal/pipeline"
	"github.com/gramsetu/sandesh/internal/store"
)

const notAuthorizedReply = "🚫 आप इस बोट का उपयोग करने के लिए अधिकृत नहीं हैं।\nYou are not authorized to publish content."

// ContentReader is the read-only slice of the content store the bot's
// commands use.
type ContentReader interface {
	ListNews(ctx context.Context, limit int) ([]models.ContentRecord, error)
	Info(ctx context.Context) (store.RepoInfo, error)
}

// Bot is the Telegram transport adapter: it receives inbound messages, hands
// them to the pipeline, and sends acknowledgments or failure replies back to
// the originating chat.
type Bot struct {
	api       *tgbotapi.BotAPI
	pipeline  *pipeline.Pipeline
	reader    ContentReader
	cache     cache.Cache
	cfg       *config.Config
	providers []string
	http      *http.Client
}

// New connects to the Telegram API and builds the transport adapter.
// providers names the configured classifier providers for /status output.
func New(cfg *config.Config, pipe *pipeline.Pipeline, reader ContentReader, c cache.Cache, providers []string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	logger.Get().Info().Str("bot", api.Self.UserName).Msg("Telegram bot authorized")

	return &Bot{
		api:       api,
		pipeline:  pipe,
		reader:    reader,
		cache:     c,
		cfg:       cfg,
		providers: providers,
		http:      &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// Run polls Telegram for updates until ctx is cancelled. Each message is
// handled independently; there is no queue, retry, or ordering guarantee
// across messages.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		ack, err := b.handlePhoto(ctx, msg)
		b.replyOutcome(msg, ack, err)
	case msg.Document != nil:
		ack, err := b.handleDocument(ctx, msg)
		b.replyOutcome(msg, ack, err)
	case msg.Text != "":
		ack, err := b.handleText(ctx, msg)
		b.replyOutcome(msg, ack, err)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	return b.pipeline.HandleText(ctx, msg.From.ID, msg.Text)
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	// Telegram offers several resolutions; pick the largest.
	best := msg.Photo[0]
	for _, variant := range msg.Photo[1:] {
		if variant.Width > best.Width {
			best = variant
		}
	}
	return b.pipeline.HandlePhoto(ctx, msg.From.ID, msg.Caption, b.downloader(best.FileID))
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	return b.pipeline.HandleDocument(ctx, msg.From.ID, msg.Document.FileName, msg.Caption, b.downloader(msg.Document.FileID))
}

// downloader builds a pipeline.Downloader fetching a Telegram file's bytes.
func (b *Bot) downloader(fileID string) pipeline.Downloader {
	return func(ctx context.Context) ([]byte, error) {
		url, err := b.api.GetFileDirectURL(fileID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve file URL: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := b.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download file: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
}

// replyOutcome sends the pipeline's acknowledgment or failure text back to
// the sender. Authorization rejections are replies, not errors.
func (b *Bot) replyOutcome(msg *tgbotapi.Message, ack string, err error) {
	if err == nil {
		b.reply(msg.Chat.ID, ack)
		return
	}
	if errors.Is(err, pipeline.ErrNotAuthorized) {
		b.reply(msg.Chat.ID, notAuthorizedReply)
		return
	}
	logger.Get().Error().
		Err(err).
		Int64("sender", msg.From.ID).
		Msg("Message handling failed")
	b.reply(msg.Chat.ID, fmt.Sprintf("❌ त्रुटि: %v", err))
}

var replyForTest func(chatID int64, text string)

func (b *Bot) reply(chatID int64, text string) {
	if replyForTest != nil {
		replyForTest(chatID, text)
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Get().Error().Err(err).Int64("chat", chatID).Msg("Failed to send reply")
	}
}
