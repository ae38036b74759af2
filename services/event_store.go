package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openedu/studyhub/models"
)

// DedupWindow is the interval within which a repeated (user, kind, resource)
// event refreshes the previous record's timestamp instead of appending a new
// row. It keeps page-reload storms from inflating counters while still
// tracking when the user was last seen.
const DedupWindow = 60 * time.Second

// RecordOutcome tells the caller whether an event was appended or collapsed
// into an existing one.
type RecordOutcome string

const (
	OutcomeCreated   RecordOutcome = "created"
	OutcomeRefreshed RecordOutcome = "refreshed"
)

// EventInput carries one engagement event from the caller.
type EventInput struct {
	UserID     uint
	Kind       string
	ResourceID *uint
	OccurredAt time.Time
	Message    string
	Source     string
}

// EventStore appends engagement events to the append-only log with
// near-duplicate suppression.
type EventStore struct {
	db *gorm.DB
}

// NewEventStore creates an EventStore backed by db.
func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// Record appends in to the event log, or refreshes the timestamp of the most
// recent matching event when one exists inside the dedup window. The returned
// event is the row that now represents the action.
func (s *EventStore) Record(ctx context.Context, in EventInput) (RecordOutcome, *models.EngagementEvent, error) {
	if err := validateEvent(&in); err != nil {
		return "", nil, err
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	} else {
		in.OccurredAt = in.OccurredAt.UTC()
	}

	var (
		outcome RecordOutcome
		event   models.EngagementEvent
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the matching row range so two concurrent records of the same
		// action cannot both miss the lookup and insert duplicate rows.
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND kind = ?", in.UserID, in.Kind)
		if in.ResourceID != nil {
			q = q.Where("resource_id = ?", *in.ResourceID)
		} else {
			q = q.Where("resource_id IS NULL")
		}
		q = q.Where("occurred_at > ?", in.OccurredAt.Add(-DedupWindow))

		err := q.Order("occurred_at DESC").First(&event).Error
		switch {
		case err == nil:
			// Duplicate inside the window: refresh the last-seen timestamp only.
			if updErr := tx.Model(&models.EngagementEvent{}).
				Where("id = ?", event.ID).
				Update("occurred_at", in.OccurredAt).Error; updErr != nil {
				return updErr
			}
			event.OccurredAt = in.OccurredAt
			outcome = OutcomeRefreshed
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			event = models.EngagementEvent{
				EventID:    uuid.NewString(),
				UserID:     in.UserID,
				Kind:       in.Kind,
				ResourceID: in.ResourceID,
				OccurredAt: in.OccurredAt,
				Message:    in.Message,
				Source:     in.Source,
			}
			if createErr := tx.Create(&event).Error; createErr != nil {
				return createErr
			}
			outcome = OutcomeCreated
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return "", nil, err
	}
	return outcome, &event, nil
}

// kindsRequiringResource lists event kinds that must reference a resource.
// All current kinds target a resource; the table keeps the requirement explicit
// for any future non-resource kinds.
var kindsRequiringResource = map[string]struct{}{
	models.EventView:     {},
	models.EventDownload: {},
	models.EventLike:     {},
	models.EventComment:  {},
	models.EventBookmark: {},
}

func validateEvent(in *EventInput) error {
	if !models.ValidEventKind(in.Kind) {
		return &ValidationError{Field: "kind", Reason: "unknown event kind"}
	}
	if in.UserID == 0 {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}
	if _, needs := kindsRequiringResource[in.Kind]; needs {
		if in.ResourceID == nil || *in.ResourceID == 0 {
			return &ValidationError{Field: "resource_id", Reason: "required for kind " + in.Kind}
		}
	}
	return nil
}
