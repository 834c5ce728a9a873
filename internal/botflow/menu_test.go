package botflow

import (
	"strings"
	"testing"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
)

func TestRouteMenuOptions(t *testing.T) {
	want := []struct {
		input string
		event leads.EventType
		snip  string
	}{
		{"1", leads.EventMenuOption1, "Produtos/Serviços"},
		{"2", leads.EventMenuOption2, "Preços e condições"},
		{"3", leads.EventMenuOption3, "atendente humano"},
		{"4", leads.EventMenuOption4, "Status do pedido"},
	}

	for _, tc := range want {
		reply := Route(tc.input)
		if reply.Action != ActionReply {
			t.Fatalf("Route(%q) action = %v, want ActionReply", tc.input, reply.Action)
		}
		if reply.Event != tc.event {
			t.Errorf("Route(%q) event = %q, want %q", tc.input, reply.Event, tc.event)
		}
		if !strings.Contains(reply.Text, tc.snip) {
			t.Errorf("Route(%q) text misses %q", tc.input, tc.snip)
		}
	}
}

func TestRouteNormalizesInput(t *testing.T) {
	for _, input := range []string{"  1  ", "MENU", " Voltar ", "Início"} {
		reply := Route(input)
		if reply.Action == ActionNoMatch {
			t.Errorf("Route(%q) fell through to NoMatch", input)
		}
	}
}

func TestRouteMenuKeywords(t *testing.T) {
	for _, input := range []string{"menu", "início", "inicio", "voltar"} {
		reply := Route(input)
		if reply.Action != ActionMenu {
			t.Errorf("Route(%q) action = %v, want ActionMenu", input, reply.Action)
		}
		if reply.Event != leads.EventMenuShown {
			t.Errorf("Route(%q) event = %q", input, reply.Event)
		}
	}
}

func TestRouteNoMatch(t *testing.T) {
	for _, input := range []string{"xyz123", "quero saber mais", "5", ""} {
		if reply := Route(input); reply.Action != ActionNoMatch {
			t.Errorf("Route(%q) action = %v, want ActionNoMatch", input, reply.Action)
		}
	}
}

func TestGreeting(t *testing.T) {
	if got := Greeting("Maria"); !strings.Contains(got, "Maria") {
		t.Errorf("Greeting missing name: %q", got)
	}
	if got := Greeting(""); strings.Contains(got, "  ") {
		t.Errorf("Greeting with empty name has stray spaces: %q", got)
	}
}
