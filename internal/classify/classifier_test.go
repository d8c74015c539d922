package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramsetu/sandesh/internal/models"
)

type stubProvider struct {
	name   string
	output string
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.output, s.err
}

func TestClassifyFallbackWhenNoProviders(t *testing.T) {
	c := New()

	result := c.Classify(context.Background(), "कल बैठक होगी", false)
	assert.Equal(t, models.CategoryNews, result.Category)
	assert.Equal(t, "कल बैठक होगी", result.TitleHI)
	assert.Equal(t, models.PriorityMedium, result.Priority)
	assert.Empty(t, result.Tags)

	result = c.Classify(context.Background(), "मंदिर", true)
	assert.Equal(t, models.CategoryGallery, result.Category)
}

func TestClassifyFallbackWhenAllProvidersFail(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: errors.New("unavailable")}
	secondary := &stubProvider{name: "claude", err: errors.New("unavailable")}
	c := New(primary, secondary)

	result := c.Classify(context.Background(), "पानी की समस्या", false)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, models.CategoryNews, result.Category)
	assert.Equal(t, models.PriorityMedium, result.Priority)
}

func TestClassifyFirstProviderWins(t *testing.T) {
	primary := &stubProvider{name: "gemini", output: `{"category":"event","title_hi":"मेला","title_en":"Fair","priority":"high","tags":["mela"]}`}
	secondary := &stubProvider{name: "claude", output: `{"category":"news"}`}
	c := New(primary, secondary)

	result := c.Classify(context.Background(), "गांव में मेला", false)
	assert.Equal(t, models.CategoryEvent, result.Category)
	assert.Equal(t, models.PriorityHigh, result.Priority)
	assert.Equal(t, 0, secondary.calls)
}

func TestClassifyFallsThroughOnUnparsableOutput(t *testing.T) {
	primary := &stubProvider{name: "gemini", output: "I cannot help with that."}
	secondary := &stubProvider{name: "claude", output: "Here is the result:\n```json\n{\"category\":\"heritage\",\"title_hi\":\"मंदिर\",\"title_en\":\"Temple\",\"priority\":\"medium\"}\n```"}
	c := New(primary, secondary)

	result := c.Classify(context.Background(), "पुराना मंदिर", true)
	assert.Equal(t, models.CategoryHeritage, result.Category)
	assert.Equal(t, "Temple", result.TitleEN)
}

func TestClassifyNormalizesInvalidFields(t *testing.T) {
	provider := &stubProvider{name: "gemini", output: `{"category":"nonsense","title_en":"Only English","priority":"urgent"}`}
	c := New(provider)

	result := c.Classify(context.Background(), "something", true)
	assert.Equal(t, models.CategoryGallery, result.Category)
	assert.Equal(t, models.PriorityMedium, result.Priority)
	assert.Equal(t, "Only English", result.TitleHI)
	assert.NotNil(t, result.Tags)
}

func TestExtractJSON(t *testing.T) {
	payload, err := extractJSON(`prose before {"a": {"b": 1}, "c": "brace } in string"} prose after`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}, "c": "brace } in string"}`, payload)

	_, err = extractJSON("no object here")
	assert.ErrorIs(t, err, errNoJSON)

	_, err = extractJSON(`{"unterminated": true`)
	assert.ErrorIs(t, err, errNoJSON)
}

func TestFallbackTruncatesLongText(t *testing.T) {
	long := strings.Repeat("क", 200)
	result := Fallback(long, false)
	assert.Len(t, []rune(result.TitleHI), fallbackTitleLimit)
	assert.Equal(t, long, result.DescHI)
}
