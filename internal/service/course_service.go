package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"onlinecourse_backend/pkg/tracing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseListItem 课程列表项
// swagger:model CourseListItem
type CourseListItem struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	PubDate         *time.Time `json:"pubDate,omitempty"`
	TotalEnrollment int        `json:"totalEnrollment"`
	IsEnrolled      bool       `json:"isEnrolled"`
}

// ChoiceView 对学员隐藏正确答案
type ChoiceView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Grade   int          `json:"grade"`
	Order   int          `json:"order"`
	Choices []ChoiceView `json:"choices"`
}

type InstructorView struct {
	ID       uint   `json:"id"`
	UserID   uint   `json:"userId"`
	Name     string `json:"name"`
	FullTime bool   `json:"fullTime"`
}

// CourseDetail 课程详情（含考试题目，不含答案）
// swagger:model CourseDetail
type CourseDetail struct {
	CourseListItem
	Lessons     []model.Lesson   `json:"lessons"`
	Instructors []InstructorView `json:"instructors"`
	Questions   []QuestionView   `json:"questions"`
}

type CourseService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Storage        *StorageService
	Cache          *CourseCache
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	storage *StorageService,
	cache *CourseCache,
) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Storage:        storage,
		Cache:          cache,
	}
}

// ListCourses 返回报名人数最多的课程，userID 为 0 表示匿名访问
func (s *CourseService) ListCourses(ctx context.Context, userID uint) ([]CourseListItem, error) {
	ctx, span := tracing.Start(ctx, "CourseService.ListCourses")
	defer span.End()

	items, ok := s.Cache.GetPopular(ctx)
	if !ok {
		courses, err := s.CourseRepo.ListPopular(util.PopularCourseLimit)
		if err != nil {
			return nil, fmt.Errorf("list courses: %w", err)
		}
		items = make([]CourseListItem, 0, len(courses))
		for i := range courses {
			items = append(items, s.toListItem(ctx, &courses[i]))
		}
		s.Cache.SetPopular(ctx, items)
	}

	if userID == 0 || len(items) == 0 {
		return items, nil
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	enrolled, err := s.EnrollmentRepo.EnrolledCourseIDs(userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	for i := range items {
		items[i].IsEnrolled = enrolled[items[i].ID]
	}
	return items, nil
}

// GetCourseDetail 课程详情
func (s *CourseService) GetCourseDetail(ctx context.Context, courseID, userID uint) (*CourseDetail, error) {
	ctx, span := tracing.Start(ctx, "CourseService.GetCourseDetail")
	defer span.End()

	course, err := s.CourseRepo.FindDetail(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, fmt.Errorf("load course %d: %w", courseID, err)
	}

	detail := &CourseDetail{
		CourseListItem: s.toListItem(ctx, course),
		Lessons:        course.Lessons,
		Instructors:    make([]InstructorView, 0, len(course.Instructors)),
		Questions:      make([]QuestionView, 0, len(course.Questions)),
	}
	if detail.Lessons == nil {
		detail.Lessons = []model.Lesson{}
	}

	for _, in := range course.Instructors {
		v := InstructorView{ID: in.ID, UserID: in.UserID, FullTime: in.FullTime}
		if in.User != nil {
			v.Name = in.User.Name
		}
		detail.Instructors = append(detail.Instructors, v)
	}

	for _, q := range course.Questions {
		qv := QuestionView{ID: q.ID, Text: q.Text, Grade: q.Grade, Order: q.Order, Choices: make([]ChoiceView, 0, len(q.Choices))}
		for _, c := range q.Choices {
			qv.Choices = append(qv.Choices, ChoiceView{ID: c.ID, Text: c.Text})
		}
		detail.Questions = append(detail.Questions, qv)
	}

	if userID != 0 {
		enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
		if err != nil {
			return nil, fmt.Errorf("check enrollment: %w", err)
		}
		detail.IsEnrolled = enrolled
	}
	return detail, nil
}

func (s *CourseService) toListItem(ctx context.Context, c *model.Course) CourseListItem {
	item := CourseListItem{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		PubDate:         c.PubDate,
		TotalEnrollment: c.TotalEnrollment,
	}
	imageURL, err := s.Storage.URL(ctx, c.ImageKey)
	if err != nil {
		// 图片地址解析失败不影响课程展示
		logger.L().Warn("resolve course image failed", zap.Uint("course_id", c.ID), zap.Error(err))
	}
	item.ImageURL = imageURL
	return item
}
