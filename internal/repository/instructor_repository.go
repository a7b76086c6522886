package repository

import (
	"errors"

	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type InstructorRepository struct {
	DB *gorm.DB
}

func NewInstructorRepository(db *gorm.DB) *InstructorRepository {
	return &InstructorRepository{DB: db}
}

// EnsureForUser returns the instructor profile of user, creating the user
// row and the profile when missing. Existing users keep their role.
func (r *InstructorRepository) EnsureForUser(tx *gorm.DB, user *model.User, fullTime bool) (*model.Instructor, error) {
	var existing model.User
	err := tx.First(&existing, user.ID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if user.Role == "" {
			user.Role = model.RoleInstructor
		}
		if err := tx.Create(user).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	var inst model.Instructor
	err = tx.Where("user_id = ?", user.ID).First(&inst).Error
	if err == nil {
		return &inst, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	inst = model.Instructor{UserID: user.ID, FullTime: fullTime}
	if err := tx.Create(&inst).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *InstructorRepository) ListByCourse(courseID uint) ([]model.Instructor, error) {
	var list []model.Instructor
	err := r.DB.
		Preload("User").
		Joins("JOIN course_instructors ON course_instructors.instructor_id = instructors.id").
		Where("course_instructors.course_id = ?", courseID).
		Order("instructors.id asc").
		Find(&list).Error
	return list, err
}
