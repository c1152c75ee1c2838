package prompts

import (
	"fmt"
	"strings"

	"github.com/happyculture/soco-concierge/pkg/llm"
)

// PersonaPrompt is the fixed persona and style policy for every
// synthesized answer: French, warm, sales-oriented, never fabricating
// unavailable information.
const PersonaPrompt = `Tu es l'assistant commercial et concierge virtuel de l'Hôtel So'Co by HappyCulture à Nice.
Tu es un VENDEUR EXPERT et ta mission est de transformer chaque interaction en opportunité de vente ou de réservation.
Tu dois TOUJOURS répondre en français.

OBJECTIFS PRINCIPAUX :
1. CONVERTIR : Transforme les demandes d'information en réservations.
2. UPSELL : Propose toujours nos services d'exception : Petit-déjeuner Signature (produits locaux & bio), Spa & Jacuzzi Privatif, et Visites privées.
3. FIDÉLISER : Sois chaleureux, persuasif et extrêmement serviable.

RÈGLES DE COMPORTEMENT :
- Utilise UNIQUEMENT le contexte fourni pour tes réponses factuelles, n'invente jamais une information indisponible.
- Sois proactif : Ne te contente pas de répondre, PROPOSE.
- Mets en valeur les offres du catalogue (Petit-déjeuner bio, Spa, Tours privés).
- Ne traite jamais de paiement réel, mais confirme l'intérêt du client.

Termine toujours par une question engageante.`

// UncertaintyDirective instructs the model to acknowledge missing
// grounding instead of inventing facts when retrieval came back empty.
const UncertaintyDirective = `Aucun contexte n'est disponible pour cette question. Indique clairement que tu n'as pas cette information spécifique et propose de mettre le client en contact avec la réception. N'invente AUCUN détail factuel.`

// SynthesizePrompt defines the interface for answer synthesis prompts.
type SynthesizePrompt interface {
	// Grounded renders the prompt with retrieved context.
	Grounded() PromptVersion
	// Ungrounded renders the prompt for an empty retrieval.
	Ungrounded() PromptVersion
}

// SynthesizeVersions holds all versions of synthesis prompts.
type SynthesizeVersions struct {
	groundedPrompt   PromptVersion
	ungroundedPrompt PromptVersion
}

func (s *SynthesizeVersions) Grounded() PromptVersion   { return s.groundedPrompt }
func (s *SynthesizeVersions) Ungrounded() PromptVersion { return s.ungroundedPrompt }

// NewSynthesizeVersions creates the synthesis prompt set.
func NewSynthesizeVersions() *SynthesizeVersions {
	return &SynthesizeVersions{
		groundedPrompt:   NewPromptVersion(groundedPrompt),
		ungroundedPrompt: NewPromptVersion(ungroundedPrompt),
	}
}

func synthesisSystemPrompt(context Context) string {
	sysPrompt := PersonaPrompt
	if strategy, ok := context["strategy"].(string); ok && strategy != "" {
		sysPrompt += "\n\nSTRATÉGIE POUR CETTE DEMANDE :\n" + strategy
	}
	return sysPrompt
}

// groundedPrompt composes the persona, the intent strategy, and the
// retrieved chunks as grounding context.
func groundedPrompt(context Context) ([]llm.Message, error) {
	question, ok := context["question"].(string)
	if !ok {
		return nil, fmt.Errorf("synthesis prompt requires a question slot")
	}
	chunks, ok := context["context"].([]string)
	if !ok || len(chunks) == 0 {
		return nil, fmt.Errorf("grounded synthesis prompt requires context chunks")
	}

	userPrompt := fmt.Sprintf("Contexte: %s\n\nQuestion du client: %s",
		strings.Join(chunks, "\n\n"), question)

	return []llm.Message{
		llm.NewSystemMessage(synthesisSystemPrompt(context)),
		llm.NewUserMessage(userPrompt),
	}, nil
}

// ungroundedPrompt composes the persona with the uncertainty directive
// in place of grounding context.
func ungroundedPrompt(context Context) ([]llm.Message, error) {
	question, ok := context["question"].(string)
	if !ok {
		return nil, fmt.Errorf("synthesis prompt requires a question slot")
	}

	sysPrompt := synthesisSystemPrompt(context) + "\n\n" + UncertaintyDirective

	return []llm.Message{
		llm.NewSystemMessage(sysPrompt),
		llm.NewUserMessage(fmt.Sprintf("Question du client: %s", question)),
	}, nil
}
