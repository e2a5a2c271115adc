package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// CourseRepository implements CourseRepository using GORM
type CourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new GORM course repository
func NewCourseRepository(db *gorm.DB) interfaces.CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

func (r *CourseRepository) Create(ctx context.Context, course *academic.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) GetByID(ctx context.Context, id uint) (*academic.Course, error) {
	var course academic.Course
	err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) GetByCodes(ctx context.Context, codes []string) ([]*academic.Course, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var courses []*academic.Course
	err := r.db.WithContext(ctx).
		Where("course_code IN ?", codes).
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}
