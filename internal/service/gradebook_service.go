package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"onlinecourse_backend/internal/grading"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/tracing"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const gradebookSheet = "Gradebook"

var gradebookHeader = []interface{}{
	"Submission ID", "User ID", "User Name", "Mode",
	"Earned", "Total", "Percent", "Passed", "Submitted At",
}

// GradebookService 导出课程成绩册
type GradebookService struct {
	CourseRepo     *repository.CourseRepository
	QuestionRepo   *repository.QuestionRepository
	SubmissionRepo *repository.SubmissionRepository
	Exam           *ExamService
}

func NewGradebookService(
	courseRepo *repository.CourseRepository,
	questionRepo *repository.QuestionRepository,
	submissionRepo *repository.SubmissionRepository,
	exam *ExamService,
) *GradebookService {
	return &GradebookService{
		CourseRepo:     courseRepo,
		QuestionRepo:   questionRepo,
		SubmissionRepo: submissionRepo,
		Exam:           exam,
	}
}

// Export builds an XLSX workbook with one row per submission of the course,
// each scored against the course's current questions. It returns the file
// content and a suggested file name.
func (s *GradebookService) Export(ctx context.Context, courseID uint) ([]byte, string, error) {
	_, span := tracing.Start(ctx, "GradebookService.Export")
	defer span.End()

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", util.ErrCourseNotFound
		}
		return nil, "", fmt.Errorf("find course %d: %w", courseID, err)
	}

	questions, err := s.QuestionRepo.ListByCourse(courseID)
	if err != nil {
		return nil, "", fmt.Errorf("load questions: %w", err)
	}
	subs, err := s.SubmissionRepo.ListByCourse(courseID)
	if err != nil {
		return nil, "", fmt.Errorf("load submissions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gradebookSheet); err != nil {
		return nil, "", err
	}
	if err := f.SetSheetRow(gradebookSheet, "A1", &gradebookHeader); err != nil {
		return nil, "", err
	}

	passPercent := s.Exam.PassPercent()
	for i := range subs {
		sub := &subs[i]
		report := grading.Score(questions, grading.NewChoiceSet(sub.ChoiceIDs()...), passPercent)

		var userID uint
		var userName, mode string
		if sub.Enrollment != nil {
			userID = sub.Enrollment.UserID
			mode = string(sub.Enrollment.Mode)
			if sub.Enrollment.User != nil {
				userName = sub.Enrollment.User.Name
			}
		}

		row := []interface{}{
			sub.ID, userID, userName, mode,
			report.EarnedPoints, report.TotalPoints, report.ScorePercent, report.Passed,
			sub.CreatedAt.Format(util.TimeFormat),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(gradebookSheet, cell, &row); err != nil {
			return nil, "", err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("gradebook-course-%d.xlsx", course.ID), nil
}
