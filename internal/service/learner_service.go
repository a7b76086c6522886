package service

import (
	"errors"
	"fmt"

	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"

	"gorm.io/gorm"
)

// UpdateProfileRequest 学员资料
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	Occupation model.Occupation `json:"occupation" binding:"required"`
	SocialLink string           `json:"socialLink" binding:"omitempty,url,max=200"`
}

type LearnerService struct {
	LearnerRepo *repository.LearnerRepository
}

func NewLearnerService(learnerRepo *repository.LearnerRepository) *LearnerService {
	return &LearnerService{LearnerRepo: learnerRepo}
}

func ValidOccupation(o model.Occupation) bool {
	switch o {
	case model.OccupationStudent, model.OccupationDeveloper,
		model.OccupationDataScientist, model.OccupationDatabaseAdmin:
		return true
	}
	return false
}

// GetProfile 未填写过资料的用户返回默认资料（不落库）
func (s *LearnerService) GetProfile(userID uint) (*model.Learner, error) {
	l, err := s.LearnerRepo.FindByUserID(userID)
	if err == nil {
		return l, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Learner{UserID: userID, Occupation: model.OccupationStudent}, nil
	}
	return nil, fmt.Errorf("load learner: %w", err)
}

func (s *LearnerService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.Learner, error) {
	if !ValidOccupation(req.Occupation) {
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidOccupation, req.Occupation)
	}

	l := &model.Learner{
		UserID:     userID,
		Occupation: req.Occupation,
		SocialLink: req.SocialLink,
	}
	if err := s.LearnerRepo.Save(l); err != nil {
		return nil, fmt.Errorf("save learner: %w", err)
	}
	return s.LearnerRepo.FindByUserID(userID)
}
