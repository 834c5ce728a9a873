package analytics

import (
	"context"
	"time"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
)

// Summary is the totals view: lead count, stage histogram and how many
// messages the AI answered across all histories.
type Summary struct {
	TotalLeads  int                 `json:"totalLeads"`
	ByStage     map[leads.Stage]int `json:"byStage"`
	TotalMsgsIA int                 `json:"totalMsgsIA"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Funnel reports one counter per known stage, zero included.
type Funnel struct {
	Funnel    map[leads.Stage]int `json:"funnel"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// LeadDump is the full lead listing.
type LeadDump struct {
	Leads     []leads.Lead `json:"leads"`
	Count     int          `json:"count"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Service computes read-only aggregations over a point-in-time snapshot of
// the lead store. Nothing is cached; every request recomputes.
type Service struct {
	store leads.Store
}

func NewService(store leads.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	byStage := make(map[leads.Stage]int)
	totalIA := 0
	for _, lead := range snapshot {
		byStage[lead.Stage]++
		for _, ev := range lead.History {
			if ev.Type == leads.EventAIAnswered {
				totalIA++
			}
		}
	}

	return &Summary{
		TotalLeads:  len(snapshot),
		ByStage:     byStage,
		TotalMsgsIA: totalIA,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func (s *Service) Funnel(ctx context.Context) (*Funnel, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[leads.Stage]int, len(leads.FunnelStages))
	for _, stage := range leads.FunnelStages {
		counts[stage] = 0
	}
	for _, lead := range snapshot {
		if _, known := counts[lead.Stage]; known {
			counts[lead.Stage]++
		}
	}

	return &Funnel{
		Funnel:    counts,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) Leads(ctx context.Context) (*LeadDump, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		snapshot = []leads.Lead{}
	}

	return &LeadDump{
		Leads:     snapshot,
		Count:     len(snapshot),
		UpdatedAt: time.Now().UTC(),
	}, nil
}
