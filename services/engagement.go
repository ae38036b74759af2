package services

import (
	"context"

	"github.com/openedu/studyhub/models"
)

// EngagementService ties the event log and the counter aggregator together:
// every event accepted as Created feeds the counters exactly once, while a
// Refreshed outcome leaves them untouched.
type EngagementService struct {
	events   *EventStore
	counters *CounterService
}

// NewEngagementService creates the orchestrator over an event store and a
// counter service.
func NewEngagementService(events *EventStore, counters *CounterService) *EngagementService {
	return &EngagementService{events: events, counters: counters}
}

// RecordEvent records one engagement event and applies its counter side
// effect when the event was newly created.
func (s *EngagementService) RecordEvent(ctx context.Context, in EventInput) (RecordOutcome, error) {
	outcome, event, err := s.events.Record(ctx, in)
	if err != nil {
		return "", err
	}
	if outcome != OutcomeCreated || event.ResourceID == nil {
		return outcome, nil
	}

	rid := *event.ResourceID
	switch event.Kind {
	case models.EventView:
		err = s.counters.ApplyView(ctx, rid, event.OccurredAt)
	case models.EventDownload:
		err = s.counters.ApplyDownload(ctx, rid)
	case models.EventLike:
		// AlreadyLiked is fine here: the event is new but the like row may
		// predate the dedup window.
		_, err = s.counters.ApplyLike(ctx, rid, event.UserID)
	case models.EventComment:
		err = s.counters.ApplyComment(ctx, rid)
	case models.EventBookmark:
		// Bookmarks have no denormalized counter; the registry owns them.
	}
	if err != nil {
		return "", err
	}
	return outcome, nil
}
