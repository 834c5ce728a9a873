// Package leads holds the lead/funnel tracker: every contact that ever
// messaged the bot gets a Lead record with an append-only event history and a
// derived funnel stage.
package leads

import "time"

// Stage is the lead's current position in the conversion funnel.
type Stage string

const (
	StageStart     Stage = "start"
	StageMenu      Stage = "menu"
	StageProduct   Stage = "product"
	StagePrice     Stage = "price"
	StageHuman     Stage = "human"
	StageStatus    Stage = "status"
	StageDone      Stage = "done"
	StageAbandoned Stage = "abandoned"
)

// FunnelStages lists every stage in funnel order. Analytics reports one
// counter per entry, zero included.
var FunnelStages = []Stage{
	StageStart,
	StageMenu,
	StageProduct,
	StagePrice,
	StageHuman,
	StageStatus,
	StageDone,
	StageAbandoned,
}

// EventType identifies a tracked occurrence in a lead's history.
type EventType string

const (
	EventConversationStarted EventType = "conversation-started"
	EventMenuShown           EventType = "menu-shown"
	EventMenuOption1         EventType = "menu-option-1"
	EventMenuOption2         EventType = "menu-option-2"
	EventMenuOption3         EventType = "menu-option-3"
	EventMenuOption4         EventType = "menu-option-4"
	EventAIAnswered          EventType = "ai-answered"
	EventStatusRequested     EventType = "status-requested"
	EventReplySent           EventType = "reply-sent"
)

// stageByEvent is the full stage-derivation table. Event types absent from
// the table leave the stage untouched; there are no guarded transitions, an
// event can move a lead to any stage in any order.
var stageByEvent = map[EventType]Stage{
	EventMenuShown:       StageMenu,
	EventMenuOption1:     StageProduct,
	EventMenuOption2:     StagePrice,
	EventMenuOption3:     StageHuman,
	EventMenuOption4:     StageStatus,
	EventStatusRequested: StageStatus,
}

// StageForEvent returns the stage the given event type maps to, and whether
// the event affects the stage at all.
func StageForEvent(t EventType) (Stage, bool) {
	s, ok := stageByEvent[t]
	return s, ok
}

// Event is a timestamped, typed occurrence in a lead's history.
type Event struct {
	ID   string            `json:"id"`
	At   time.Time         `json:"at"`
	Type EventType         `json:"type"`
	Data map[string]string `json:"data,omitempty"`
}

// Lead is a tracked contact and its interaction history. ID is the WhatsApp
// contact id (wa_id) and never changes once created.
type Lead struct {
	ID            string    `json:"waId"`
	Name          string    `json:"name"`
	FirstSeenAt   time.Time `json:"firstSeenAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	Stage         Stage     `json:"stage"`
	History       []Event   `json:"history"`
}

// Clone returns a deep copy so snapshots cannot alias store internals.
func (l *Lead) Clone() Lead {
	cp := *l
	cp.History = make([]Event, len(l.History))
	copy(cp.History, l.History)
	for i := range cp.History {
		if cp.History[i].Data != nil {
			data := make(map[string]string, len(cp.History[i].Data))
			for k, v := range cp.History[i].Data {
				data[k] = v
			}
			cp.History[i].Data = data
		}
	}
	return cp
}
