package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// ListByCourse returns the course's questions with choices loaded, in exam
// order.
func (r *QuestionRepository) ListByCourse(courseID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Where("course_id = ?", courseID).
		Order("sort_order asc, id asc").
		Find(&qs).Error
	return qs, err
}

// FindChoicesByIDs 仅返回存在的选项，不存在的 ID 被忽略
func (r *QuestionRepository) FindChoicesByIDs(ids []uint) ([]model.Choice, error) {
	var choices []model.Choice
	if len(ids) == 0 {
		return choices, nil
	}
	err := r.DB.Where("id IN ?", ids).Order("id asc").Find(&choices).Error
	return choices, err
}
