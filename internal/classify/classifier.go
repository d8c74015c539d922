package classify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gramsetu/sandesh/internal/logger"
	"github.com/gramsetu/sandesh/internal/models"
)

const fallbackTitleLimit = 80

var errNoJSON = errors.New("no JSON object in response")

// Classifier runs a message through a fixed-priority chain of providers and
// degrades to a deterministic default when none of them yields a usable
// result. Classification is advisory metadata, so Classify never fails.
type Classifier struct {
	providers []Provider
}

// New creates a Classifier trying the given providers in order.
func New(providers ...Provider) *Classifier {
	return &Classifier{providers: providers}
}

// ProviderNames lists the configured providers in priority order.
func (c *Classifier) ProviderNames() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Classify categorizes a message. It always returns a valid Classification:
// provider failures and unparsable responses fall through to the next
// provider and finally to Fallback.
func (c *Classifier) Classify(ctx context.Context, text string, hasImage bool) models.Classification {
	log := logger.Get()
	prompt := buildPrompt(text, hasImage)

	for _, provider := range c.providers {
		raw, err := provider.Complete(ctx, prompt)
		if err != nil {
			log.Warn().
				Err(err).
				Str("provider", provider.Name()).
				Msg("Classification provider failed, trying next")
			continue
		}

		result, err := parseClassification(raw, hasImage)
		if err != nil {
			log.Warn().
				Err(err).
				Str("provider", provider.Name()).
				Msg("Could not parse provider response, trying next")
			continue
		}

		log.Debug().
			Str("provider", provider.Name()).
			Str("category", string(result.Category)).
			Msg("Message classified")
		return result
	}

	log.Info().Bool("has_image", hasImage).Msg("All providers unavailable, using fallback classification")
	return Fallback(text, hasImage)
}

// parseClassification extracts the first JSON object from raw model output
// and normalizes it into a valid Classification.
func parseClassification(raw string, hasImage bool) (models.Classification, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return models.Classification{}, err
	}

	var result models.Classification
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return models.Classification{}, err
	}

	normalize(&result, hasImage)
	return result, nil
}

// extractJSON returns the first {...} substring of s, matching braces so
// providers that wrap the object in prose or code fences still parse.
func extractJSON(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errNoJSON
}

// normalize fills in or corrects fields the model got wrong so the result
// always satisfies the Classification contract.
func normalize(result *models.Classification, hasImage bool) {
	if !result.Category.Valid() {
		if hasImage {
			result.Category = models.CategoryGallery
		} else {
			result.Category = models.CategoryNews
		}
	}
	if !result.Priority.Valid() {
		result.Priority = models.PriorityMedium
	}
	if result.TitleHI == "" {
		result.TitleHI = result.TitleEN
	}
	if result.TitleEN == "" {
		result.TitleEN = result.TitleHI
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
}

// Fallback builds the deterministic default classification used when no
// provider is available.
func Fallback(text string, hasImage bool) models.Classification {
	category := models.CategoryNews
	if hasImage {
		category = models.CategoryGallery
	}
	title := truncate(strings.TrimSpace(text), fallbackTitleLimit)
	return models.Classification{
		Category: category,
		TitleHI:  title,
		TitleEN:  title,
		DescHI:   strings.TrimSpace(text),
		DescEN:   strings.TrimSpace(text),
		Section:  string(category),
		Priority: models.PriorityMedium,
		Tags:     []string{},
	}
}

// truncate shortens s to at most limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
