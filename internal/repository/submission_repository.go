package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Create inserts the submission and its submission_choices rows in one
// transaction. The choices must already exist; they are referenced, never
// written.
func (r *SubmissionRepository) Create(sub *model.Submission) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Choices.*").Create(sub).Error
	})
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var sub model.Submission
	err := r.DB.
		Preload("Enrollment").
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.id asc")
		}).
		First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepository) ListByEnrollment(enrollmentID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.id asc")
		}).
		Where("enrollment_id = ?", enrollmentID).
		Order("id asc").
		Find(&subs).Error
	return subs, err
}

// ListByCourse 导出成绩册用：课程下所有报名的全部提交
func (r *SubmissionRepository) ListByCourse(courseID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.
		Preload("Enrollment.User").
		Preload("Choices").
		Joins("JOIN enrollments ON enrollments.id = submissions.enrollment_id").
		Where("enrollments.course_id = ?", courseID).
		Order("submissions.id asc").
		Find(&subs).Error
	return subs, err
}
