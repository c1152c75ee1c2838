// Package synthesis composes the grounded, persona-driven answer for a
// classified question. It invokes the language model exactly once per
// query; a failed call surfaces as a generation failure for the
// orchestrator to substitute its apology response.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/happyculture/soco-concierge/pkg/llm"
	"github.com/happyculture/soco-concierge/pkg/prompts"
	"github.com/happyculture/soco-concierge/pkg/types"
)

var (
	confirmationPattern = regexp.MustCompile(`[A-Z]{2,3}-?\d{4,8}`)
	emailPattern        = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
)

// Synthesizer turns a question, its intent, and the retrieved chunks
// into a French answer following the fixed persona policy.
type Synthesizer struct {
	llm     llm.Client
	library prompts.Library
	logger  *slog.Logger
}

// NewSynthesizer creates a synthesizer over the given model client.
func NewSynthesizer(llmClient llm.Client, library prompts.Library, logger *slog.Logger) *Synthesizer {
	if library == nil {
		library = prompts.DefaultLibrary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		llm:     llmClient,
		library: library,
		logger:  logger,
	}
}

// Synthesize generates the answer text. An empty retrieval selects the
// ungrounded template, which instructs the model to acknowledge
// uncertainty rather than invent facts. Model failures wrap
// types.ErrGeneration.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, intent types.Intent, retrieved types.RetrievalResult) (string, error) {
	promptContext := prompts.Context{
		"question": question,
		"strategy": intentStrategy(intent, question),
	}

	var version prompts.PromptVersion
	if retrieved.Empty() {
		version = s.library.Synthesize().Ungrounded()
	} else {
		promptContext["context"] = retrieved.Texts()
		version = s.library.Synthesize().Grounded()
	}

	messages, err := version.Call(promptContext)
	if err != nil {
		return "", fmt.Errorf("%w: build prompt: %v", types.ErrGeneration, err)
	}

	resp, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}

	answer := cleanAnswer(resp.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", types.ErrGeneration)
	}
	return answer, nil
}

// intentStrategy selects the response directive the persona follows for
// the classified intent.
func intentStrategy(intent types.Intent, question string) string {
	switch intent {
	case types.IntentCheckAvailability:
		return "Le client demande une disponibilité ou un prix. Présente nos catégories de chambres avec leurs tarifs d'après le contexte, et propose un surclassement ainsi que nos services (petit-déjeuner bio, parking, spa)."
	case types.IntentMakeReservation:
		return "Le client veut réserver. Collecte les informations nécessaires : nom complet, date d'arrivée, date de départ, type de chambre, nombre de personnes, email ou téléphone. Propose immédiatement le petit-déjeuner ou le spa. Précise que la confirmation finale et le paiement seront traités à l'arrivée ou via un lien sécurisé."
	case types.IntentCancelReservation:
		if confirmationPattern.MatchString(strings.ToUpper(question)) || emailPattern.MatchString(question) {
			return "Le client veut annuler et a fourni une référence. Rappelle notre politique d'annulation (gratuite jusqu'à 48 heures avant l'arrivée, frais d'une nuit en deçà) et indique que notre équipe va vérifier la réservation et confirmer l'annulation."
		}
		return "Le client veut annuler sans référence. Demande son numéro de confirmation (ex: SC-20260110-001) ou l'adresse email utilisée pour la réservation avant de poursuivre."
	case types.IntentTalkToHuman:
		return "Le client veut parler à un humain. Donne nos options de contact : réception 24h/24 et 7j/7, 27 Avenue Thiers 06000 Nice, chat en direct, et le 0 depuis le téléphone de la chambre. Propose un service en attendant."
	}
	return ""
}

// cleanAnswer strips model sentinel tokens and surrounding whitespace.
func cleanAnswer(answer string) string {
	answer = strings.ReplaceAll(answer, "<s>", "")
	answer = strings.ReplaceAll(answer, "</s>", "")
	return strings.TrimSpace(answer)
}
