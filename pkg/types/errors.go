package types

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the pipeline's external calls. Callers classify
// wrapped errors with errors.Is.
var (
	// ErrEmbedding indicates the embedding provider failed. Recovered
	// locally by the retriever as an empty result.
	ErrEmbedding = errors.New("embedding provider failure")

	// ErrStore indicates the knowledge store failed. Handled identically
	// to an empty retrieval.
	ErrStore = errors.New("knowledge store failure")

	// ErrModel indicates a language model call failed (timeout, rate
	// limit, malformed output). During classification it is recovered by
	// forcing the unknown intent.
	ErrModel = errors.New("language model failure")
)

// ErrGeneration specializes ErrModel for the synthesis step. It surfaces
// to the orchestrator, which substitutes a fixed apology response; it is
// never re-raised to the transport layer.
var ErrGeneration = fmt.Errorf("generation failure: %w", ErrModel)
