package classify

import (
	"fmt"
	"strings"
)

const classificationPrompt = `You are the content editor for a bilingual (Hindi/English) village community website.
Classify the following message submitted by a village administrator and prepare it for publishing.

Message: %s
Has attached image: %t

Respond with exactly one JSON object and nothing else, with these fields:
- category (one of: news, event, gallery, document, heritage, emergency, contact, announcement)
- title_hi (short Hindi title)
- title_en (short English title)
- description_hi (longer Hindi description)
- description_en (longer English description)
- section (suggested website section for this content)
- priority (one of: high, medium, low)
- tags (array of short keyword strings)`

// buildPrompt creates the classification prompt for a single message.
func buildPrompt(text string, hasImage bool) string {
	return fmt.Sprintf(classificationPrompt, escapeForPrompt(text), hasImage)
}

// escapeForPrompt flattens whitespace and quotes for safe prompt embedding.
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
