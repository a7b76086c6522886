package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) Exists(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// EnrolledCourseIDs 返回 courseIDs 中用户已报名的课程集合
func (r *EnrollmentRepository) EnrolledCourseIDs(userID uint, courseIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(courseIDs) == 0 {
		return result, nil
	}

	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// CreateWithCounter inserts the enrollment and bumps the course counter in
// one transaction. A duplicate (user, course) surfaces as
// gorm.ErrDuplicatedKey and leaves the counter untouched.
func (r *EnrollmentRepository) CreateWithCounter(e *model.Enrollment, courses *CourseRepository) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		return courses.IncrementEnrollment(tx, e.CourseID)
	})
}

func (r *EnrollmentRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
