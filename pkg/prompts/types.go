package prompts

import (
	"github.com/happyculture/soco-concierge/pkg/llm"
)

// Context carries the named slots a prompt template is rendered from.
type Context map[string]interface{}

// PromptFunction is a function that generates prompt messages from a
// slot context.
type PromptFunction func(context Context) ([]llm.Message, error)

// PromptVersion represents a versioned prompt function. Templates are
// versioned so prompt changes stay testable independently of the
// orchestration logic.
type PromptVersion interface {
	Call(context Context) ([]llm.Message, error)
}

type promptVersionImpl struct {
	fn PromptFunction
}

// Call executes the prompt function with the given context.
func (p *promptVersionImpl) Call(context Context) ([]llm.Message, error) {
	return p.fn(context)
}

// NewPromptVersion creates a new PromptVersion from a function.
func NewPromptVersion(fn PromptFunction) PromptVersion {
	return &promptVersionImpl{fn: fn}
}
