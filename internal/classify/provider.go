package classify

import "context"

// Provider is a language-understanding backend that turns a classification
// prompt into raw model output. Implementations may return JSON directly or
// JSON embedded in free text; the classifier extracts the payload either way.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
