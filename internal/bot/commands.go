package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gramsetu/sandesh/internal/logger"
	"github.com/gramsetu/sandesh/internal/utils"
)

const recentLimit = 5

const welcomeText = `🙏 नमस्ते! मैं गांव की वेबसाइट का संदेश बोट हूं।

मुझे समाचार, फोटो या दस्तावेज़ भेजें और मैं उन्हें वेबसाइट पर प्रकाशित कर दूंगा।

Send me text, a photo, or a document and I will publish it on the village website. Use /help for details.`

const helpText = `📋 Commands:
/start — introduction
/help — this message
/status — content repository and classifier status
/recent — latest published updates

📨 Sending content:
• Text — published as a news item
• Photo (with optional caption) — optimized and published to the gallery or news
• Document — stored under documents/ and listed as a document record`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, welcomeText)
	case "help":
		b.reply(msg.Chat.ID, helpText)
	case "status":
		b.reply(msg.Chat.ID, b.statusText(ctx))
	case "recent":
		b.reply(msg.Chat.ID, b.recentText(ctx))
	default:
		b.reply(msg.Chat.ID, "अज्ञात कमांड। /help देखें।")
	}
}

// statusText summarizes the content repository and the configured classifier
// providers. The summary is cached briefly.
func (b *Bot) statusText(ctx context.Context) string {
	key := utils.CacheKey("status")
	if cached, ok, err := b.cache.Get(ctx, key); err == nil && ok {
		return cached
	}

	info, err := b.reader.Info(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Failed to fetch repository status")
		return fmt.Sprintf("❌ त्रुटि: %v", err)
	}

	providers := "fallback only"
	if len(b.providers) > 0 {
		providers = strings.Join(b.providers, " → ") + " → fallback"
	}

	var sb strings.Builder
	sb.WriteString("📊 Status\n")
	fmt.Fprintf(&sb, "Repository: %s (branch %s)\n", info.FullName, b.cfg.GitHubBranch)
	if info.UpdatedAt != "" {
		fmt.Fprintf(&sb, "Last updated: %s\n", info.UpdatedAt)
	}
	fmt.Fprintf(&sb, "Classifiers: %s", providers)

	text := sb.String()
	if err := b.cache.Set(ctx, key, text, b.cfg.CacheTTL); err != nil {
		logger.Get().Warn().Err(err).Msg("Failed to cache status text")
	}
	return text
}

// recentText lists the latest published news records, newest first.
func (b *Bot) recentText(ctx context.Context) string {
	key := utils.CacheKey("recent", fmt.Sprint(recentLimit))
	if cached, ok, err := b.cache.Get(ctx, key); err == nil && ok {
		return cached
	}

	records, err := b.reader.ListNews(ctx, recentLimit)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Failed to list recent records")
		return fmt.Sprintf("❌ त्रुटि: %v", err)
	}
	var text string
	if len(records) == 0 {
		text = "अभी तक कोई अपडेट प्रकाशित नहीं हुआ है।\nNo updates published yet."
	} else {
		var sb strings.Builder
		sb.WriteString("🗞 Recent updates:\n")
		for _, rec := range records {
			fmt.Fprintf(&sb, "• [%s] %s (%s)\n", rec.Category, rec.TitleHI, rec.Date)
		}
		text = strings.TrimRight(sb.String(), "\n")
	}
	if err := b.cache.Set(ctx, key, text, b.cfg.CacheTTL); err != nil {
		logger.Get().Warn().Err(err).Msg("Failed to cache recent text")
	}
	return text
}
