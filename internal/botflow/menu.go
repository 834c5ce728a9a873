// Package botflow decides what the bot answers to an inbound text: a fixed
// menu, one of the canned option replies, or a handoff to the AI fallback.
package botflow

import (
	"fmt"
	"strings"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
)

// Action tells the caller what to do with the routed message.
type Action int

const (
	// ActionReply sends Reply.Text and records Reply.Event.
	ActionReply Action = iota
	// ActionMenu sends the menu and records menu-shown.
	ActionMenu
	// ActionNoMatch hands the original text to the AI fallback.
	ActionNoMatch
)

// Reply is the routing outcome for one inbound text.
type Reply struct {
	Action Action
	Text   string
	Event  leads.EventType
}

const MenuText = `📋 *Menu*

1) Produtos / Serviços
2) Preços e condições
3) Falar com atendente 🤝
4) Status do pedido

Você também pode digitar sua dúvida livremente 😉`

const option1Text = `🛍️ *Nossos Produtos/Serviços*
• Produto A — ideal para quem está começando
• Produto B — performance avançada
• Serviço C — implementação completa

Se quiser, posso te recomendar algo com base no que você precisa 🙂`

const option2Text = `💲 *Preços e condições*
Temos planos flexíveis. Posso te indicar o melhor custo-benefício.
• Pagamento no cartão ou PIX
• Descontos à vista

Quer que eu simule um plano pra você? 😉`

const option3Text = `🧑‍💼 Tudo bem! Vou te colocar com um atendente humano agora.
*Dica:* Se quiser voltar ao menu depois, digite *menu*.`

const option4Text = `📦 *Status do pedido*
Me diga seu código/ID do pedido que eu verifico pra você 😉`

// menuKeywords bring the user back to the menu from anywhere.
var menuKeywords = map[string]bool{
	"menu":   true,
	"início": true,
	"inicio": true,
	"voltar": true,
}

var optionReplies = map[string]Reply{
	"1": {Action: ActionReply, Text: option1Text, Event: leads.EventMenuOption1},
	"2": {Action: ActionReply, Text: option2Text, Event: leads.EventMenuOption2},
	"3": {Action: ActionReply, Text: option3Text, Event: leads.EventMenuOption3},
	"4": {Action: ActionReply, Text: option4Text, Event: leads.EventMenuOption4},
}

// Route matches the inbound text against the menu rules, first match wins.
// Matching is case- and whitespace-insensitive.
func Route(text string) Reply {
	lower := strings.ToLower(strings.TrimSpace(text))

	if menuKeywords[lower] {
		return Reply{Action: ActionMenu, Text: MenuText, Event: leads.EventMenuShown}
	}
	if reply, ok := optionReplies[lower]; ok {
		return reply
	}
	return Reply{Action: ActionNoMatch}
}

// Greeting is the first-contact salutation sent before the menu.
func Greeting(name string) string {
	if name != "" {
		name = " " + name
	}
	return fmt.Sprintf("Olá%s! Eu sou o *Assistente PMX*. Como posso ajudar hoje? 😊", name)
}
