package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openedu/studyhub/models"
)

// FileStore removes stored file assets. Implemented by the storage collaborator;
// the lifecycle manager only ever asks it to delete.
type FileStore interface {
	Remove(ctx context.Context, key string) error
}

// Resource lifecycle states as reported to callers.
const (
	StateActive  = "active"
	StateTrashed = "trashed"
	StateRemoved = "removed"
)

// LifecycleService drives the Active -> Trashed -> (Active | Removed) state
// machine. Every transition is a conditional single-row write guarded by the
// expected precondition, so two racing transitions cannot both apply.
type LifecycleService struct {
	db    *gorm.DB
	files FileStore
	log   *zap.SugaredLogger
}

// NewLifecycleService creates a LifecycleService. files may be nil when no
// file storage collaborator is configured; log may be nil to disable warnings.
func NewLifecycleService(db *gorm.DB, files FileStore, log *zap.SugaredLogger) *LifecycleService {
	return &LifecycleService{db: db, files: files, log: log}
}

// SoftDeleteResult reports a completed soft delete. FileWarning is set when
// the physical asset could not be removed; the state transition has still
// succeeded and the caller should surface the warning rather than retry.
type SoftDeleteResult struct {
	State       string    `json:"state"`
	DeletedAt   time.Time `json:"deleted_at"`
	FileWarning string    `json:"file_warning,omitempty"`
}

// SoftDelete moves an Active resource to Trashed and requests best-effort
// removal of its file asset.
func (s *LifecycleService) SoftDelete(ctx context.Context, resourceID uint) (*SoftDeleteResult, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND deleted_at IS NULL", resourceID).
		Update("deleted_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.transitionMiss(ctx, resourceID)
	}

	out := &SoftDeleteResult{State: StateTrashed, DeletedAt: now}

	var r models.Resource
	if err := s.db.WithContext(ctx).Select("file_key").Take(&r, resourceID).Error; err == nil && r.FileKey != "" && s.files != nil {
		if ferr := s.files.Remove(ctx, r.FileKey); ferr != nil {
			if s.log != nil {
				s.log.Warnf("file removal failed for resource %d key %s: %v", resourceID, r.FileKey, ferr)
			}
			out.FileWarning = ferr.Error()
		}
	}
	return out, nil
}

// Restore moves a Trashed resource back to Active.
func (s *LifecycleService) Restore(ctx context.Context, resourceID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND deleted_at IS NOT NULL", resourceID).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.transitionMiss(ctx, resourceID)
	}
	return nil
}

// Purge permanently removes a Trashed resource together with its daily
// buckets, likes, and bookmarks. The event log is append-only and keeps its
// rows. Purging an Active resource is a Conflict, never a silent success.
func (s *LifecycleService) Purge(ctx context.Context, resourceID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND deleted_at IS NOT NULL", resourceID).
			Delete(&models.Resource{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.transitionMissTx(tx, resourceID)
		}
		if err := tx.Where("resource_id = ?", resourceID).Delete(&models.ResourceDailyView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id = ?", resourceID).Delete(&models.ResourceLike{}).Error; err != nil {
			return err
		}
		return tx.Where("resource_id = ?", resourceID).Delete(&models.Bookmark{}).Error
	})
}

// PurgeExpired removes every resource trashed at or before cutoff. It backs
// the trash sweeper and returns the ids it purged.
func (s *LifecycleService) PurgeExpired(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Resource{}).
		Where("deleted_at IS NOT NULL AND deleted_at <= ?", cutoff).
		Limit(100).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	purged := make([]uint, 0, len(ids))
	for _, id := range ids {
		if err := s.Purge(ctx, id); err != nil {
			// A concurrent restore turns the row Active again; skip it.
			if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
				continue
			}
			return purged, err
		}
		purged = append(purged, id)
	}
	return purged, nil
}

// transitionMiss decides why a conditional write matched no rows: the
// resource is gone (NotFound) or in the wrong state (Conflict).
func (s *LifecycleService) transitionMiss(ctx context.Context, resourceID uint) error {
	return s.transitionMissTx(s.db.WithContext(ctx), resourceID)
}

func (s *LifecycleService) transitionMissTx(tx *gorm.DB, resourceID uint) error {
	var n int64
	if err := tx.Model(&models.Resource{}).Where("id = ?", resourceID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}
