package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// CloRepository implements CloRepository using GORM
type CloRepository struct {
	db *gorm.DB
}

// NewCloRepository creates a new GORM CLO repository
func NewCloRepository(db *gorm.DB) interfaces.CloRepository {
	return &CloRepository{
		db: db,
	}
}

func (r *CloRepository) Create(ctx context.Context, clo *outcome.Clo, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(clo).Error; err != nil {
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

func (r *CloRepository) CreateMany(ctx context.Context, clos []*outcome.Clo, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clos).Error; err != nil {
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

func (r *CloRepository) GetByID(ctx context.Context, id uint) (*outcome.Clo, error) {
	var clo outcome.Clo
	err := r.db.WithContext(ctx).First(&clo, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &clo, nil
}

func (r *CloRepository) GetByIDs(ctx context.Context, ids []uint) ([]*outcome.Clo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var clos []*outcome.Clo
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&clos).Error
	if err != nil {
		return nil, err
	}
	return clos, nil
}

func (r *CloRepository) GetByCourse(ctx context.Context, courseID uint) ([]*outcome.Clo, error) {
	var clos []*outcome.Clo
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("clo_number ASC").
		Find(&clos).Error
	if err != nil {
		return nil, err
	}
	return clos, nil
}

func (r *CloRepository) GetByCourseAndNumber(ctx context.Context, courseID uint, cloNumber int) (*outcome.Clo, error) {
	var clo outcome.Clo
	err := r.db.WithContext(ctx).
		First(&clo, "course_id = ? AND clo_number = ?", courseID, cloNumber).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &clo, nil
}

func (r *CloRepository) Update(ctx context.Context, clo *outcome.Clo, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(clo).Error; err != nil {
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

// Delete removes the CLO and its mapping rows together.
func (r *CloRepository) Delete(ctx context.Context, id uint, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&outcome.CloPloMapping{}, "clo_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&outcome.Clo{}, "id = ?", id).Error; err != nil {
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
