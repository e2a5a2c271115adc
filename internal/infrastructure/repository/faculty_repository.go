package repository

import (
	"context"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// FacultyRepository implements FacultyRepository using GORM
type FacultyRepository struct {
	db *gorm.DB
}

// NewFacultyRepository creates a new GORM faculty profile repository
func NewFacultyRepository(db *gorm.DB) interfaces.FacultyRepository {
	return &FacultyRepository{
		db: db,
	}
}

func (r *FacultyRepository) GetByID(ctx context.Context, id uint) (*academic.FacultyProfile, error) {
	var profile academic.FacultyProfile
	err := r.db.WithContext(ctx).Preload("User").First(&profile, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *FacultyRepository) GetByUserID(ctx context.Context, userID uint) (*academic.FacultyProfile, error) {
	var profile academic.FacultyProfile
	err := r.db.WithContext(ctx).Preload("User").First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *FacultyRepository) Create(ctx context.Context, profile *academic.FacultyProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// UserRepository implements UserRepository using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new GORM user repository
func NewUserRepository(db *gorm.DB) interfaces.UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*academic.User, error) {
	var user academic.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
