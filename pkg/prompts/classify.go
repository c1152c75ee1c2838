package prompts

import (
	"fmt"

	"github.com/happyculture/soco-concierge/pkg/llm"
)

// ClassifyPrompt defines the interface for intent classification prompts.
type ClassifyPrompt interface {
	Intent() PromptVersion
}

// ClassifyVersions holds all versions of classification prompts.
type ClassifyVersions struct {
	intentPrompt PromptVersion
}

func (c *ClassifyVersions) Intent() PromptVersion { return c.intentPrompt }

// NewClassifyVersions creates the classification prompt set.
func NewClassifyVersions() *ClassifyVersions {
	return &ClassifyVersions{
		intentPrompt: NewPromptVersion(intentPrompt),
	}
}

// intentPrompt constrains the model to exactly one label from the closed
// intent set. The label definitions mirror the production French bot.
func intentPrompt(context Context) ([]llm.Message, error) {
	question, ok := context["question"].(string)
	if !ok {
		return nil, fmt.Errorf("classify prompt requires a question slot")
	}

	sysPrompt := `Tu classifies le message d'un client d'hôtel dans UNE de ces intentions :
- check_availability: Demande de disponibilité ou de prix
- make_reservation: Intention de réserver ou d'acheter
- cancel_reservation: Annulation de séjour
- hotel_information: Questions sur l'hôtel, les services, le catalogue
- talk_to_human: Demande explicite de parler à un humain
- unknown: Autre ou non clair

Réponds avec UNIQUEMENT le label de l'intention, sans ponctuation ni explication.`

	userPrompt := fmt.Sprintf("Message de l'utilisateur: %s", question)

	return []llm.Message{
		llm.NewSystemMessage(sysPrompt),
		llm.NewUserMessage(userPrompt),
	}, nil
}
