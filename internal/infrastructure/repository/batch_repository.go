package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// BatchRepository implements BatchRepository using GORM. Lifecycle mutations
// that touch several rows run in one transaction with their activity log.
type BatchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new GORM batch repository
func NewBatchRepository(db *gorm.DB) interfaces.BatchRepository {
	return &BatchRepository{
		db: db,
	}
}

// CreateWithSemesters inserts the batch and all of its generated semesters
// atomically.
func (r *BatchRepository) CreateWithSemesters(ctx context.Context, batch *academic.Batch, semesters []*academic.Semester, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		for _, sem := range semesters {
			sem.BatchID = batch.ID
		}
		if err := tx.Create(&semesters).Error; err != nil {
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

func (r *BatchRepository) GetByID(ctx context.Context, id uint) (*academic.Batch, error) {
	var batch academic.Batch
	err := r.db.WithContext(ctx).Preload("Program").First(&batch, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *BatchRepository) GetByName(ctx context.Context, name string) (*academic.Batch, error) {
	var batch academic.Batch
	err := r.db.WithContext(ctx).First(&batch, "name = ?", name).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *BatchRepository) List(ctx context.Context, page, limit int) ([]*academic.Batch, int64, error) {
	var batches []*academic.Batch
	var total int64

	if err := r.db.WithContext(ctx).Model(&academic.Batch{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Program").
		Order("year DESC, name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&batches).Error
	if err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func (r *BatchRepository) Update(ctx context.Context, batch *academic.Batch, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(batch).Error; err != nil {
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

// DeleteWithSemesters removes the batch and its semesters atomically.
func (r *BatchRepository) DeleteWithSemesters(ctx context.Context, id uint, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&academic.Semester{}, "batch_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&academic.Batch{}, "id = ?", id).Error; err != nil {
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

// AdvanceSemester locks the current semester, activates the next one (nextID
// zero means there is none) and moves the batch pointer, all atomically.
func (r *BatchRepository) AdvanceSemester(ctx context.Context, batchID, currentID, nextID uint, newCurrent int, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&academic.Semester{}).
			Where("id = ?", currentID).
			Updates(map[string]interface{}{"is_active": false, "is_locked": true}).Error
		if err != nil {
			return err
		}
		if nextID != 0 {
			err = tx.Model(&academic.Semester{}).
				Where("id = ?", nextID).
				Update("is_active", true).Error
			if err != nil {
				return err
			}
		}
		err = tx.Model(&academic.Batch{}).
			Where("id = ?", batchID).
			Update("current_semester", newCurrent).Error
		if err != nil {
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

// Graduate locks the final semester and marks the batch Graduated.
func (r *BatchRepository) Graduate(ctx context.Context, batchID, finalSemesterID uint, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&academic.Semester{}).
			Where("id = ?", finalSemesterID).
			Updates(map[string]interface{}{"is_active": false, "is_locked": true}).Error
		if err != nil {
			return err
		}
		err = tx.Model(&academic.Batch{}).
			Where("id = ?", batchID).
			Update("status", academic.BatchStatusGraduated).Error
		if err != nil {
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
