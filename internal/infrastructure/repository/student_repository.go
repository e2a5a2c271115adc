package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// StudentRepository implements StudentRepository using GORM
type StudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new GORM pre-registered student repository
func NewStudentRepository(db *gorm.DB) interfaces.StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

func (r *StudentRepository) CreateMany(ctx context.Context, students []*academic.PreRegisteredStudent, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&students).Error; err != nil {
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

func (r *StudentRepository) GetByID(ctx context.Context, id uint) (*academic.PreRegisteredStudent, error) {
	var student academic.PreRegisteredStudent
	err := r.db.WithContext(ctx).Preload("Batch").First(&student, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

// GetByRollNo matches case-insensitively on the trimmed roll number, the same
// normalization the upload path applies.
func (r *StudentRepository) GetByRollNo(ctx context.Context, rollNo string) (*academic.PreRegisteredStudent, error) {
	var student academic.PreRegisteredStudent
	err := r.db.WithContext(ctx).
		Preload("Batch").
		First(&student, "LOWER(roll_no) = LOWER(?)", rollNo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) GetByBatch(ctx context.Context, batchID uint) ([]*academic.PreRegisteredStudent, error) {
	var students []*academic.PreRegisteredStudent
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("roll_no ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *StudentRepository) CountByBatch(ctx context.Context, batchID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&academic.PreRegisteredStudent{}).
		Where("batch_id = ?", batchID).
		Count(&count).Error
	return count, err
}
