package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// OfferingRepository implements OfferingRepository using GORM
type OfferingRepository struct {
	db *gorm.DB
}

// NewOfferingRepository creates a new GORM course offering repository
func NewOfferingRepository(db *gorm.DB) interfaces.OfferingRepository {
	return &OfferingRepository{
		db: db,
	}
}

func (r *OfferingRepository) Create(ctx context.Context, offering *academic.CourseOffering, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(offering).Error; err != nil {
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

func (r *OfferingRepository) GetByID(ctx context.Context, id uint) (*academic.CourseOffering, error) {
	var offering academic.CourseOffering
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Semester").
		Preload("Semester.Batch").
		Preload("Instructor").
		Preload("Instructor.User").
		First(&offering, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &offering, nil
}

func (r *OfferingRepository) GetByCourseAndSemester(ctx context.Context, courseID, semesterID uint) (*academic.CourseOffering, error) {
	var offering academic.CourseOffering
	err := r.db.WithContext(ctx).
		First(&offering, "course_id = ? AND semester_id = ?", courseID, semesterID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &offering, nil
}

func (r *OfferingRepository) Update(ctx context.Context, offering *academic.CourseOffering, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(offering).Error; err != nil {
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

func (r *OfferingRepository) Delete(ctx context.Context, id uint, log *academic.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&academic.CourseOffering{}, "id = ?", id).Error; err != nil {
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

func (r *OfferingRepository) List(ctx context.Context, query *academic.OfferingQuery) ([]*academic.CourseOffering, int64, error) {
	base := r.db.WithContext(ctx).Model(&academic.CourseOffering{})
	if query.SemesterID != 0 {
		base = base.Where("course_offerings.semester_id = ?", query.SemesterID)
	}
	if query.InstructorID != 0 {
		base = base.Where("course_offerings.instructor_id = ?", query.InstructorID)
	}
	if query.BatchID != 0 {
		base = base.Joins("JOIN semesters ON semesters.id = course_offerings.semester_id").
			Where("semesters.batch_id = ?", query.BatchID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var offerings []*academic.CourseOffering
	err := base.
		Preload("Course").
		Preload("Semester").
		Preload("Semester.Batch").
		Preload("Instructor").
		Preload("Instructor.User").
		Order("course_offerings.created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&offerings).Error
	if err != nil {
		return nil, 0, err
	}
	return offerings, total, nil
}

func (r *OfferingRepository) ListByInstructor(ctx context.Context, instructorID uint) ([]*academic.CourseOffering, error) {
	var offerings []*academic.CourseOffering
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Semester").
		Preload("Semester.Batch").
		Preload("Instructor").
		Preload("Instructor.User").
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

func (r *OfferingRepository) ListBySemester(ctx context.Context, semesterID uint) ([]*academic.CourseOffering, error) {
	var offerings []*academic.CourseOffering
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Semester").
		Preload("Semester.Batch").
		Preload("Instructor").
		Preload("Instructor.User").
		Where("semester_id = ?", semesterID).
		Order("created_at DESC").
		Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}
