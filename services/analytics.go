package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/openedu/studyhub/models"
)

// DailyViewCount is one day's view total recomputed from the event log.
type DailyViewCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ReconcileReport describes the counter values a reconciliation settled on.
type ReconcileReport struct {
	Views     int64 `json:"views"`
	Downloads int64 `json:"downloads"`
	Likes     int64 `json:"likes"`
	Comments  int64 `json:"comments"`
	Buckets   int   `json:"buckets"`
}

// AnalyticsService reads view history straight from the event log. The log is
// the canonical record; the dailyViews buckets on the resource are a derived
// cache that Reconcile can rebuild when the two drift apart.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates an AnalyticsService backed by db.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// DailyViewsFromEvents buckets the resource's view events by UTC calendar day
// over the trailing days window, most recent day last. Days with no views are
// omitted, matching the shape of the cached buckets.
func (s *AnalyticsService) DailyViewsFromEvents(ctx context.Context, resourceID uint, days int) ([]DailyViewCount, error) {
	if err := s.requireResource(ctx, resourceID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	events, err := s.viewEvents(ctx, resourceID, &since)
	if err != nil {
		return nil, err
	}
	return bucketByDay(events), nil
}

// Reconcile replays the event log for one resource and rewrites its counters
// and daily buckets to match. Likes are recounted from the like rows, which
// are authoritative for set membership.
func (s *AnalyticsService) Reconcile(ctx context.Context, resourceID uint) (*ReconcileReport, error) {
	if err := s.requireResource(ctx, resourceID); err != nil {
		return nil, err
	}

	report := &ReconcileReport{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counts := map[string]*int64{
			models.EventView:     &report.Views,
			models.EventDownload: &report.Downloads,
			models.EventComment:  &report.Comments,
		}
		for kind, dst := range counts {
			if err := tx.Model(&models.EngagementEvent{}).
				Where("resource_id = ? AND kind = ?", resourceID, kind).
				Count(dst).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.ResourceLike{}).
			Where("resource_id = ?", resourceID).
			Count(&report.Likes).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Resource{}).
			Where("id = ?", resourceID).
			Updates(map[string]interface{}{
				"views":     report.Views,
				"downloads": report.Downloads,
				"likes":     report.Likes,
				"comments":  report.Comments,
			}).Error; err != nil {
			return err
		}

		// Rebuild the daily buckets from scratch.
		if err := tx.Where("resource_id = ?", resourceID).
			Delete(&models.ResourceDailyView{}).Error; err != nil {
			return err
		}
		var events []models.EngagementEvent
		if err := tx.Where("resource_id = ? AND kind = ?", resourceID, models.EventView).
			Find(&events).Error; err != nil {
			return err
		}
		buckets := bucketByDay(events)
		report.Buckets = len(buckets)
		for _, b := range buckets {
			day, err := time.Parse("2006-01-02", b.Date)
			if err != nil {
				return err
			}
			if err := tx.Create(&models.ResourceDailyView{
				ResourceID: resourceID,
				ViewDate:   day.UTC(),
				Count:      b.Count,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *AnalyticsService) viewEvents(ctx context.Context, resourceID uint, since *time.Time) ([]models.EngagementEvent, error) {
	q := s.db.WithContext(ctx).
		Where("resource_id = ? AND kind = ?", resourceID, models.EventView)
	if since != nil {
		q = q.Where("occurred_at >= ?", *since)
	}
	var events []models.EngagementEvent
	err := q.Find(&events).Error
	return events, err
}

func (s *AnalyticsService) requireResource(ctx context.Context, resourceID uint) error {
	var r models.Resource
	err := s.db.WithContext(ctx).Select("id").Take(&r, resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// bucketByDay groups events by their UTC calendar day, sorted ascending.
func bucketByDay(events []models.EngagementEvent) []DailyViewCount {
	byDay := make(map[string]int64)
	for _, e := range events {
		byDay[e.OccurredAt.UTC().Format("2006-01-02")]++
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]DailyViewCount, 0, len(days))
	for _, d := range days {
		out = append(out, DailyViewCount{Date: d, Count: byDay[d]})
	}
	return out
}
