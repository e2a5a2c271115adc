package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// MappingRepository implements MappingRepository using GORM
type MappingRepository struct {
	db *gorm.DB
}

// NewMappingRepository creates a new GORM CLO-PLO mapping repository
func NewMappingRepository(db *gorm.DB) interfaces.MappingRepository {
	return &MappingRepository{
		db: db,
	}
}

// ReplaceForCourse deletes every mapping of the referenced CLOs under the
// course and inserts the new flattened set, atomically with the activity log.
// A validation failure upstream therefore never leaves partial writes behind.
func (r *MappingRepository) ReplaceForCourse(ctx context.Context, courseID uint, cloIDs []uint, rows []*outcome.CloPloMapping, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cloIDs) > 0 {
			err := tx.Delete(&outcome.CloPloMapping{}, "course_id = ? AND clo_id IN ?", courseID, cloIDs).Error
			if err != nil {
				return err
			}
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if log != nil {
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MappingRepository) GetByID(ctx context.Context, id uint) (*outcome.CloPloMapping, error) {
	var mapping outcome.CloPloMapping
	err := r.db.WithContext(ctx).
		Preload("Clo").
		Preload("Plo").
		First(&mapping, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *MappingRepository) GetByCourse(ctx context.Context, courseID uint) ([]*outcome.CloPloMapping, error) {
	var mappings []*outcome.CloPloMapping
	err := r.db.WithContext(ctx).
		Preload("Clo").
		Preload("Plo").
		Where("course_id = ?", courseID).
		Order("clo_id ASC, plo_id ASC").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *MappingRepository) Delete(ctx context.Context, id uint, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&outcome.CloPloMapping{}, "id = ?", id).Error; err != nil {
			return err
		}
		if log != nil {
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MappingRepository) DeleteAllForCourse(ctx context.Context, courseID uint, log *academic.ActivityLog) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&outcome.CloPloMapping{}, "course_id = ?", courseID)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		if log != nil {
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
