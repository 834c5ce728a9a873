package leads

import "testing"

func TestStageForEvent(t *testing.T) {
	cases := []struct {
		event     EventType
		wantStage Stage
		wantOK    bool
	}{
		{EventMenuShown, StageMenu, true},
		{EventMenuOption1, StageProduct, true},
		{EventMenuOption2, StagePrice, true},
		{EventMenuOption3, StageHuman, true},
		{EventMenuOption4, StageStatus, true},
		{EventStatusRequested, StageStatus, true},
		{EventConversationStarted, "", false},
		{EventAIAnswered, "", false},
		{EventReplySent, "", false},
		{EventType("something-unknown"), "", false},
	}

	for _, tc := range cases {
		stage, ok := StageForEvent(tc.event)
		if ok != tc.wantOK {
			t.Errorf("StageForEvent(%q) ok = %v, want %v", tc.event, ok, tc.wantOK)
		}
		if ok && stage != tc.wantStage {
			t.Errorf("StageForEvent(%q) = %q, want %q", tc.event, stage, tc.wantStage)
		}
	}
}

func TestLeadCloneIsDeep(t *testing.T) {
	lead := &Lead{
		ID:    "5511999990000",
		Stage: StageMenu,
		History: []Event{
			{ID: "e1", Type: EventMenuShown, Data: map[string]string{"source": "whatsapp"}},
		},
	}

	cp := lead.Clone()
	cp.History[0].Data["source"] = "mutated"
	cp.History = append(cp.History, Event{ID: "e2"})

	if lead.History[0].Data["source"] != "whatsapp" {
		t.Error("clone shares event data with the original")
	}
	if len(lead.History) != 1 {
		t.Error("clone shares history slice with the original")
	}
}
