package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// PloRepository implements PloRepository using GORM
type PloRepository struct {
	db *gorm.DB
}

// NewPloRepository creates a new GORM PLO repository
func NewPloRepository(db *gorm.DB) interfaces.PloRepository {
	return &PloRepository{
		db: db,
	}
}

func (r *PloRepository) Create(ctx context.Context, plo *outcome.Plo, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plo).Error; err != nil {
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

func (r *PloRepository) GetByID(ctx context.Context, id uint) (*outcome.Plo, error) {
	var plo outcome.Plo
	err := r.db.WithContext(ctx).First(&plo, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plo, nil
}

func (r *PloRepository) GetByIDs(ctx context.Context, ids []uint) ([]*outcome.Plo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var plos []*outcome.Plo
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&plos).Error
	if err != nil {
		return nil, err
	}
	return plos, nil
}

func (r *PloRepository) GetByProgram(ctx context.Context, programID uint) ([]*outcome.Plo, error) {
	var plos []*outcome.Plo
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("code ASC").
		Find(&plos).Error
	if err != nil {
		return nil, err
	}
	return plos, nil
}

func (r *PloRepository) GetByProgramAndCode(ctx context.Context, programID uint, code string) (*outcome.Plo, error) {
	var plo outcome.Plo
	err := r.db.WithContext(ctx).
		First(&plo, "program_id = ? AND code = ?", programID, code).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plo, nil
}
