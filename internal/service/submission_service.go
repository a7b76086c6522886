package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/tracing"

	"gorm.io/gorm"
)

// AnswerPayload 提交答案的请求体：题目 ID -> 所选选项 ID 列表
// swagger:model AnswerPayload
type AnswerPayload struct {
	Answers map[uint][]uint `json:"answers"`
}

type SubmissionService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	QuestionRepo   *repository.QuestionRepository
	SubmissionRepo *repository.SubmissionRepository

	mu            sync.RWMutex
	strictChoices bool
}

func NewSubmissionService(
	enrollmentRepo *repository.EnrollmentRepository,
	questionRepo *repository.QuestionRepository,
	submissionRepo *repository.SubmissionRepository,
	strictChoices bool,
) *SubmissionService {
	return &SubmissionService{
		EnrollmentRepo: enrollmentRepo,
		QuestionRepo:   questionRepo,
		SubmissionRepo: submissionRepo,
		strictChoices:  strictChoices,
	}
}

// SetStrictChoices 配置热更新时调用
func (s *SubmissionService) SetStrictChoices(strict bool) {
	s.mu.Lock()
	s.strictChoices = strict
	s.mu.Unlock()
}

func (s *SubmissionService) StrictChoices() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strictChoices
}

// ExtractSelectedChoices collects the values of every choice_<qid> field.
// Values that are not positive integers are skipped. The result is sorted
// and free of duplicates.
func ExtractSelectedChoices(form url.Values) []uint {
	seen := make(map[uint]struct{})
	for field, values := range form {
		if !strings.HasPrefix(field, util.ChoiceFieldPrefix) {
			continue
		}
		for _, v := range values {
			id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
			if err != nil || id == 0 {
				continue
			}
			seen[uint(id)] = struct{}{}
		}
	}

	ids := make([]uint, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SubmitForm records a submission from legacy form fields. Any existing
// choice id is stored; grading later ignores choices of other questions.
func (s *SubmissionService) SubmitForm(ctx context.Context, userID, courseID uint, form url.Values) (*model.Submission, error) {
	ctx, span := tracing.Start(ctx, "SubmissionService.SubmitForm")
	defer span.End()

	enrollment, err := s.findEnrollment(userID, courseID)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, enrollment, ExtractSelectedChoices(form))
}

// SubmitAnswers records a submission from the typed payload. Every choice
// must belong to its question and every question to the course; mismatches
// are dropped, or rejected with ErrInvalidChoice in strict mode.
func (s *SubmissionService) SubmitAnswers(ctx context.Context, userID, courseID uint, payload AnswerPayload) (*model.Submission, error) {
	ctx, span := tracing.Start(ctx, "SubmissionService.SubmitAnswers")
	defer span.End()

	enrollment, err := s.findEnrollment(userID, courseID)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByCourse(courseID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	owner := make(map[uint]uint) // choice -> question
	for _, q := range questions {
		for _, c := range q.Choices {
			owner[c.ID] = q.ID
		}
	}

	strict := s.StrictChoices()
	seen := make(map[uint]struct{})
	selected := make([]uint, 0)
	for questionID, choiceIDs := range payload.Answers {
		for _, id := range choiceIDs {
			if qid, ok := owner[id]; !ok || qid != questionID {
				if strict {
					return nil, fmt.Errorf("%w: choice %d, question %d", util.ErrInvalidChoice, id, questionID)
				}
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			selected = append(selected, id)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })

	return s.record(ctx, enrollment, selected)
}

// ListForUser 返回用户在该课程下的全部提交
func (s *SubmissionService) ListForUser(ctx context.Context, userID, courseID uint) ([]model.Submission, error) {
	_, span := tracing.Start(ctx, "SubmissionService.ListForUser")
	defer span.End()

	enrollment, err := s.findEnrollment(userID, courseID)
	if err != nil {
		return nil, err
	}
	subs, err := s.SubmissionRepo.ListByEnrollment(enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

func (s *SubmissionService) findEnrollment(userID, courseID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return enrollment, nil
}

func (s *SubmissionService) record(ctx context.Context, enrollment *model.Enrollment, selected []uint) (*model.Submission, error) {
	// 不存在的选项 ID 直接忽略
	choices, err := s.QuestionRepo.FindChoicesByIDs(selected)
	if err != nil {
		return nil, fmt.Errorf("load choices: %w", err)
	}

	sub := &model.Submission{EnrollmentID: enrollment.ID, Choices: choices}
	if err := s.SubmissionRepo.Create(sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	sub.Enrollment = enrollment
	if sub.Choices == nil {
		sub.Choices = []model.Choice{}
	}

	monitoring.ExamSubmissionsTotal.Inc()
	return sub, nil
}
