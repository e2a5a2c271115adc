package repository

import (
	"context"

	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PloCacheRepository implements PloCacheRepository using GORM
type PloCacheRepository struct {
	db *gorm.DB
}

// NewPloCacheRepository creates a new GORM attainment cache repository
func NewPloCacheRepository(db *gorm.DB) interfaces.PloCacheRepository {
	return &PloCacheRepository{
		db: db,
	}
}

// ReplaceForStudent applies the recomputed rows and removals for one student
// atomically. Upserts conflict on (roll_no, plo_number); the generated
// achievement columns are never assigned.
func (r *PloCacheRepository) ReplaceForStudent(ctx context.Context, rollNo string, upserts []*outcome.StudentProgramPloCache, removePloNumbers []int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(upserts) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "roll_no"}, {Name: "plo_number"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"batch_id",
					"total_attainment",
					"course_count",
					"average_attainment",
					"contributing_courses",
					"last_calculated",
					"updated_at",
				}),
			}).Create(&upserts).Error
			if err != nil {
				return err
			}
		}
		if len(removePloNumbers) > 0 {
			err := tx.Delete(&outcome.StudentProgramPloCache{},
				"roll_no = ? AND plo_number IN ?", rollNo, removePloNumbers).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PloCacheRepository) GetByRollNo(ctx context.Context, rollNo string) ([]*outcome.StudentProgramPloCache, error) {
	var rows []*outcome.StudentProgramPloCache
	err := r.db.WithContext(ctx).
		Where("roll_no = ?", rollNo).
		Order("plo_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PloCacheRepository) GetByRollNoAndBatch(ctx context.Context, rollNo string, batchID uint) ([]*outcome.StudentProgramPloCache, error) {
	var rows []*outcome.StudentProgramPloCache
	err := r.db.WithContext(ctx).
		Where("roll_no = ? AND batch_id = ?", rollNo, batchID).
		Order("plo_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PloCacheRepository) DistinctRollNos(ctx context.Context, batchID uint) ([]string, error) {
	var rollNos []string
	err := r.db.WithContext(ctx).Model(&outcome.StudentProgramPloCache{}).
		Where("batch_id = ?", batchID).
		Distinct("roll_no").
		Order("roll_no ASC").
		Pluck("roll_no", &rollNos).Error
	if err != nil {
		return nil, err
	}
	return rollNos, nil
}
