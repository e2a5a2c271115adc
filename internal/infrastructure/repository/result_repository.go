package repository

import (
	"context"
	"time"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// ResultRepository implements ResultRepository using GORM
type ResultRepository struct {
	db *gorm.DB
}

// NewResultRepository creates a new GORM PLO result repository
func NewResultRepository(db *gorm.DB) interfaces.ResultRepository {
	return &ResultRepository{
		db: db,
	}
}

// BulkUpsert writes all records in one transaction, chunked. Each chunk does
// an explicit existence check on (course_offering_id, student_id) so inserted
// and updated counts stay observable; updates keep the original row ID and
// refresh the upload timestamp.
func (r *ResultRepository) BulkUpsert(ctx context.Context, records []*outcome.CourseStudentPloResult, chunkSize int, log *academic.ActivityLog) (int, int, error) {
	if chunkSize <= 0 {
		chunkSize = 100
	}

	var inserted, updated int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(records); start += chunkSize {
			end := start + chunkSize
			if end > len(records) {
				end = len(records)
			}
			chunk := records[start:end]

			offeringIDs := make([]uint, 0, len(chunk))
			studentIDs := make([]uint, 0, len(chunk))
			for _, rec := range chunk {
				offeringIDs = append(offeringIDs, rec.CourseOfferingID)
				studentIDs = append(studentIDs, rec.StudentID)
			}

			var existing []*outcome.CourseStudentPloResult
			err := tx.Where("course_offering_id IN ? AND student_id IN ?", offeringIDs, studentIDs).
				Find(&existing).Error
			if err != nil {
				return err
			}

			existingByKey := make(map[[2]uint]*outcome.CourseStudentPloResult, len(existing))
			for _, row := range existing {
				existingByKey[[2]uint{row.CourseOfferingID, row.StudentID}] = row
			}

			toInsert := make([]*outcome.CourseStudentPloResult, 0, len(chunk))
			for _, rec := range chunk {
				prior, ok := existingByKey[[2]uint{rec.CourseOfferingID, rec.StudentID}]
				if !ok {
					toInsert = append(toInsert, rec)
					continue
				}
				rec.ID = prior.ID
				rec.UploadTimestamp = time.Now().UTC()
				if err := tx.Save(rec).Error; err != nil {
					return err
				}
				updated++
			}

			if len(toInsert) > 0 {
				if err := tx.Create(&toInsert).Error; err != nil {
					return err
				}
				inserted += len(toInsert)
			}
		}

		if log != nil {
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, updated, nil
}

// GetByRollNoAndBatch returns every result row of the student inside the batch
// with the course preloaded; the aggregation engine reads course codes off it.
func (r *ResultRepository) GetByRollNoAndBatch(ctx context.Context, rollNo string, batchID uint) ([]*outcome.CourseStudentPloResult, error) {
	var results []*outcome.CourseStudentPloResult
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("LOWER(roll_no) = LOWER(?) AND batch_id = ?", rollNo, batchID).
		Order("course_id ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ResultRepository) DistinctRollNos(ctx context.Context, batchID uint) ([]string, error) {
	var rollNos []string
	err := r.db.WithContext(ctx).Model(&outcome.CourseStudentPloResult{}).
		Where("batch_id = ?", batchID).
		Distinct("roll_no").
		Order("roll_no ASC").
		Pluck("roll_no", &rollNos).Error
	if err != nil {
		return nil, err
	}
	return rollNos, nil
}

func (r *ResultRepository) DeleteByOfferingAndStudent(ctx context.Context, offeringID, studentID uint) error {
	return r.db.WithContext(ctx).
		Delete(&outcome.CourseStudentPloResult{}, "course_offering_id = ? AND student_id = ?", offeringID, studentID).Error
}
