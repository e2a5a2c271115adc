package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// ProgramRepository implements ProgramRepository using GORM
type ProgramRepository struct {
	db *gorm.DB
}

// NewProgramRepository creates a new GORM program repository
func NewProgramRepository(db *gorm.DB) interfaces.ProgramRepository {
	return &ProgramRepository{
		db: db,
	}
}

func (r *ProgramRepository) Create(ctx context.Context, program *academic.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *ProgramRepository) GetByID(ctx context.Context, id uint) (*academic.Program, error) {
	var program academic.Program
	err := r.db.WithContext(ctx).First(&program, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &program, nil
}

func (r *ProgramRepository) CountBatches(ctx context.Context, programID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&academic.Batch{}).
		Where("program_id = ?", programID).
		Count(&count).Error
	return count, err
}

func (r *ProgramRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&academic.Program{}, "id = ?", id).Error
}
