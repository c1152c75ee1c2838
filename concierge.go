// Package concierge orchestrates the Hôtel So'Co support pipeline: a
// guest question flows through security filtering, intent
// classification, context retrieval, answer synthesis, and output
// filtering, and always comes back as a well-formed Response. The
// pipeline holds no mutable state across queries; external clients are
// injected once at construction and used read-only thereafter.
package concierge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/happyculture/soco-concierge/pkg/intent"
	"github.com/happyculture/soco-concierge/pkg/retrieval"
	"github.com/happyculture/soco-concierge/pkg/security"
	"github.com/happyculture/soco-concierge/pkg/synthesis"
	"github.com/happyculture/soco-concierge/pkg/types"
)

// Engine is the sole entry point the transport layer consumes. Process
// never returns an error: every internal failure maps to a fallback
// Response.
type Engine interface {
	Process(ctx context.Context, question string) *types.Response
}

// Fixed responses substituted when the pipeline short-circuits.
const (
	// DeclineAnswer replaces a question blocked on input.
	DeclineAnswer = "Je suis désolé, mais je ne peux pas partager ce type d'information. Puis-je vous aider avec autre chose concernant votre séjour ?"

	// FallbackAnswer replaces an answer blocked on output.
	FallbackAnswer = "Je préfère ne pas détailler ce point. Puis-je vous renseigner sur nos chambres, notre petit-déjeuner ou notre spa ?"

	// ApologyAnswer replaces an answer lost to a generation failure.
	ApologyAnswer = "Toutes mes excuses, je rencontre un souci technique. Pouvez-vous reformuler votre demande dans un instant, ou préférez-vous que la réception vous rappelle ?"

	// ClarifyAnswer replaces an empty question.
	ClarifyAnswer = "Bonjour ! Je n'ai pas bien saisi votre demande. Souhaitez-vous des informations sur nos chambres, nos services ou une réservation ?"
)

// maxSources caps the provenance labels attached to a Response.
const maxSources = 3

// state names each step of the pipeline's linear pass.
type state int

const (
	stateReceived state = iota
	stateFiltering
	stateClassifying
	stateRetrieving
	stateSynthesizing
	statePostFiltering
	stateDone
)

func (s state) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateFiltering:
		return "filtering"
	case stateClassifying:
		return "classifying"
	case stateRetrieving:
		return "retrieving"
	case stateSynthesizing:
		return "synthesizing"
	case statePostFiltering:
		return "post_filtering"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// Config holds pipeline construction parameters.
type Config struct {
	// TopK is the number of chunks requested per retrieval.
	TopK int
}

// Pipeline implements Engine as a linear state machine over the injected
// components. Each external call is attempted exactly once per query;
// retry policy belongs to the transport layer.
type Pipeline struct {
	filter      security.Evaluator
	classifier  *intent.Classifier
	retriever   *retrieval.Retriever
	synthesizer *synthesis.Synthesizer
	topK        int
	logger      *slog.Logger
}

// NewPipeline wires the pipeline from its components.
func NewPipeline(
	filter security.Evaluator,
	classifier *intent.Classifier,
	retriever *retrieval.Retriever,
	synthesizer *synthesis.Synthesizer,
	config *Config,
	logger *slog.Logger,
) *Pipeline {
	topK := retrieval.DefaultTopK
	if config != nil && config.TopK > 0 {
		topK = config.TopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		filter:      filter,
		classifier:  classifier,
		retriever:   retriever,
		synthesizer: synthesizer,
		topK:        topK,
		logger:      logger,
	}
}

// Process runs one question through the pipeline. The walk is linear:
// received → filtering → classifying → retrieving → synthesizing →
// post-filtering → done, with short-circuits to done on input block,
// generation failure, and output block.
func (p *Pipeline) Process(ctx context.Context, question string) *types.Response {
	query := types.NewQuery(question)
	logger := p.logger.With("query_id", query.ID)

	// Filtering: empty input and denylisted input end the walk before
	// any external call.
	logger.Debug("state transition", "state", stateFiltering)
	if strings.TrimSpace(query.Text) == "" {
		logger.Debug("state transition", "state", stateDone, "outcome", "empty_input")
		return &types.Response{
			Answer:  ClarifyAnswer,
			Intent:  types.IntentUnknown,
			Sources: []string{},
		}
	}
	if verdict := p.filter.Evaluate(query.Text); verdict.Blocked {
		logger.Info("question blocked on input", "reason", verdict.Reason)
		return &types.Response{
			Answer:  DeclineAnswer,
			Intent:  types.IntentUnknown,
			Sources: []string{},
		}
	}

	logger.Debug("state transition", "state", stateClassifying)
	classified := p.classifier.Classify(ctx, query.Text)
	logger.Debug("intent classified", "intent", classified)

	logger.Debug("state transition", "state", stateRetrieving)
	retrieved := p.retriever.Retrieve(ctx, query.Text, classified, p.topK)
	if retrieved.Empty() {
		logger.Debug("answering without grounding", "intent", classified)
	}

	logger.Debug("state transition", "state", stateSynthesizing)
	answer, err := p.synthesizer.Synthesize(ctx, query.Text, classified, retrieved)
	if err != nil {
		logger.Error("synthesis failed, substituting apology", "error", err)
		return &types.Response{
			Answer:  ApologyAnswer,
			Intent:  classified,
			Sources: []string{},
		}
	}

	// Post-filtering: a blocked answer is discarded, the classified
	// intent survives.
	logger.Debug("state transition", "state", statePostFiltering)
	if verdict := p.filter.Evaluate(answer); verdict.Blocked {
		logger.Info("answer blocked on output", "reason", verdict.Reason)
		return &types.Response{
			Answer:         FallbackAnswer,
			Intent:         classified,
			Sources:        []string{},
			RequiresAction: classified.RequiresAction(),
		}
	}

	logger.Debug("state transition", "state", stateDone)
	return &types.Response{
		Answer:         answer,
		Intent:         classified,
		Sources:        sourceLabels(answer, retrieved),
		RequiresAction: classified.RequiresAction(),
	}
}

// sourceLabels derives the provenance labels for the chunks the answer
// was grounded on: deduplicated titles in rank order, capped at
// maxSources. An answer that states it does not know carries no sources.
func sourceLabels(answer string, retrieved types.RetrievalResult) []string {
	labels := []string{}
	if retrieved.Empty() || answerAdmitsIgnorance(answer) {
		return labels
	}

	seen := make(map[string]struct{}, len(retrieved))
	for _, sc := range retrieved {
		label := sc.Chunk.Title()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
		if len(labels) == maxSources {
			break
		}
	}
	return labels
}

func answerAdmitsIgnorance(answer string) bool {
	lowered := strings.ToLower(answer)
	return strings.Contains(lowered, "n'ai pas") || strings.Contains(lowered, "je ne sais pas")
}
