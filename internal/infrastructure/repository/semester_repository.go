package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// SemesterRepository implements SemesterRepository using GORM
type SemesterRepository struct {
	db *gorm.DB
}

// NewSemesterRepository creates a new GORM semester repository
func NewSemesterRepository(db *gorm.DB) interfaces.SemesterRepository {
	return &SemesterRepository{
		db: db,
	}
}

func (r *SemesterRepository) GetByID(ctx context.Context, id uint) (*academic.Semester, error) {
	var semester academic.Semester
	err := r.db.WithContext(ctx).Preload("Batch").First(&semester, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &semester, nil
}

func (r *SemesterRepository) GetByBatch(ctx context.Context, batchID uint) ([]*academic.Semester, error) {
	var semesters []*academic.Semester
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("number ASC").
		Find(&semesters).Error
	if err != nil {
		return nil, err
	}
	return semesters, nil
}

func (r *SemesterRepository) GetByIDAndBatch(ctx context.Context, id, batchID uint) (*academic.Semester, error) {
	var semester academic.Semester
	err := r.db.WithContext(ctx).
		First(&semester, "id = ? AND batch_id = ?", id, batchID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &semester, nil
}
