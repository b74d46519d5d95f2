// Package completion wraps hosted chat-completion models behind a single
// capability so handlers can be tested with fakes.
package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/illegalcall/codecraft/internal/config"
)

// Completer sends one user-role message to a hosted model and returns the reply text.
type Completer interface {
	CompleteChat(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyReply is returned when the model answers without any content.
var ErrEmptyReply = errors.New("model returned no choices")

// New builds the Completer selected by cfg.Provider.
func New(ctx context.Context, cfg config.CompletionConfig) (Completer, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAICompleter(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case "gemini":
		return NewGeminiCompleter(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiBaseURL)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
