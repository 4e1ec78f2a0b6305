package translator

import (
	"context"

	"novelweaver/models"
)

// Fragment is one streamed piece of translated text. A Fragment with Err set
// terminates the stream; a closed channel without one means clean completion.
type Fragment struct {
	Text string
	Err  error
}

// Request carries everything a provider may need: LLM providers consume the
// assembled Prompt, simpler ones translate SourceText directly.
type Request struct {
	Prompt     string
	SourceText string
	Config     models.TranslationConfig
}

// Provider produces a translation as an ordered fragment stream.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (<-chan Fragment, error)
}
