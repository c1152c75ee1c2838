// Package prompts holds the versioned prompt templates the pipeline
// sends to the language model: the closed-set intent classification
// instruction and the persona-driven synthesis prompt.
package prompts

// Library defines the interface for the complete prompt library.
type Library interface {
	Classify() ClassifyPrompt
	Synthesize() SynthesizePrompt
}

// LibraryImpl implements the Library interface.
type LibraryImpl struct {
	classify   ClassifyPrompt
	synthesize SynthesizePrompt
}

func (l *LibraryImpl) Classify() ClassifyPrompt     { return l.classify }
func (l *LibraryImpl) Synthesize() SynthesizePrompt { return l.synthesize }

// NewLibrary creates a new prompt library instance.
func NewLibrary() Library {
	return &LibraryImpl{
		classify:   NewClassifyVersions(),
		synthesize: NewSynthesizeVersions(),
	}
}

// DefaultLibrary is the default prompt library instance.
var DefaultLibrary = NewLibrary()
