package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"onlinecourse_backend/internal/grading"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/tracing"

	"gorm.io/gorm"
)

// ExamService 读取题目与提交，调用评分引擎。结果每次重新计算，不做缓存。
type ExamService struct {
	QuestionRepo   *repository.QuestionRepository
	SubmissionRepo *repository.SubmissionRepository

	mu          sync.RWMutex
	passPercent float64
}

func NewExamService(
	questionRepo *repository.QuestionRepository,
	submissionRepo *repository.SubmissionRepository,
	passPercent float64,
) *ExamService {
	return &ExamService{
		QuestionRepo:   questionRepo,
		SubmissionRepo: submissionRepo,
		passPercent:    passPercent,
	}
}

func (s *ExamService) SetPassPercent(p float64) {
	s.mu.Lock()
	s.passPercent = p
	s.mu.Unlock()
}

func (s *ExamService) PassPercent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passPercent
}

// Grade scores sub against the current questions of the course.
func (s *ExamService) Grade(ctx context.Context, courseID uint, sub *model.Submission) (*grading.Report, error) {
	_, span := tracing.Start(ctx, "ExamService.Grade")
	defer span.End()

	questions, err := s.QuestionRepo.ListByCourse(courseID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	report := grading.Score(questions, grading.NewChoiceSet(sub.ChoiceIDs()...), s.PassPercent())
	return &report, nil
}

// GradeAttempt grades a freshly recorded submission and counts the outcome.
func (s *ExamService) GradeAttempt(ctx context.Context, courseID uint, sub *model.Submission) (*grading.Report, error) {
	report, err := s.Grade(ctx, courseID, sub)
	if err != nil {
		return nil, err
	}
	monitoring.ObserveExamResult(report.Passed)
	return report, nil
}

// Result loads a stored submission and grades it. The submission must
// belong to courseID; only its owner or staff may see it.
func (s *ExamService) Result(ctx context.Context, caller *util.Claims, courseID, submissionID uint) (*grading.Report, error) {
	ctx, span := tracing.Start(ctx, "ExamService.Result")
	defer span.End()

	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("load submission %d: %w", submissionID, err)
	}
	if sub.Enrollment == nil || sub.Enrollment.CourseID != courseID {
		return nil, util.ErrSubmissionNotFound
	}
	if sub.Enrollment.UserID != caller.UserID && !caller.IsStaff() {
		return nil, util.ErrPermissionDenied
	}

	return s.Grade(ctx, courseID, sub)
}
