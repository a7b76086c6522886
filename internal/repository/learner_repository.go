package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearnerRepository struct {
	DB *gorm.DB
}

func NewLearnerRepository(db *gorm.DB) *LearnerRepository {
	return &LearnerRepository{DB: db}
}

func (r *LearnerRepository) FindByUserID(userID uint) (*model.Learner, error) {
	var l model.Learner
	err := r.DB.Where("user_id = ?", userID).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LearnerRepository) Save(l *model.Learner) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"occupation", "social_link", "updated_at"}),
	}).Create(l).Error
}
