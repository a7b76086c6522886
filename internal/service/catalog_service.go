package service

import (
	"context"
	"errors"
	"fmt"

	"onlinecourse_backend/internal/catalog"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"onlinecourse_backend/pkg/tracing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImportResult 导入统计
type ImportResult struct {
	CourseIDs []uint `json:"courseIds"`
	Lessons   int    `json:"lessons"`
	Questions int    `json:"questions"`
	Choices   int    `json:"choices"`
}

// CatalogService 课程目录的导入与删除（管理员）
type CatalogService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	InstructorRepo *repository.InstructorRepository
	Storage        *StorageService
	Cache          *CourseCache
}

func NewCatalogService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	instructorRepo *repository.InstructorRepository,
	storage *StorageService,
	cache *CourseCache,
) *CatalogService {
	return &CatalogService{
		DB:             db,
		CourseRepo:     courseRepo,
		InstructorRepo: instructorRepo,
		Storage:        storage,
		Cache:          cache,
	}
}

// Import inserts every course of the catalog in a single transaction. Either
// the whole document lands or nothing does.
func (s *CatalogService) Import(ctx context.Context, c *catalog.Catalog) (*ImportResult, error) {
	ctx, span := tracing.Start(ctx, "CatalogService.Import")
	defer span.End()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	result := &ImportResult{CourseIDs: make([]uint, 0, len(c.Courses))}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range c.Courses {
			entry := &c.Courses[i]
			course := entry.ToModel()

			for _, in := range entry.Instructors {
				user := &model.User{
					BaseModel: model.BaseModel{ID: in.UserID},
					Name:      in.Name,
					Email:     in.Email,
				}
				inst, err := s.InstructorRepo.EnsureForUser(tx, user, in.IsFullTime())
				if err != nil {
					return fmt.Errorf("instructor %d: %w", in.UserID, err)
				}
				course.Instructors = append(course.Instructors, *inst)
			}

			if err := s.CourseRepo.CreateGraph(tx, course); err != nil {
				return fmt.Errorf("course %q: %w", course.Name, err)
			}

			result.CourseIDs = append(result.CourseIDs, course.ID)
			result.Lessons += len(course.Lessons)
			result.Questions += len(course.Questions)
			for _, q := range course.Questions {
				result.Choices += len(q.Choices)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import catalog: %w", err)
	}

	s.Cache.Invalidate(ctx)
	logger.L().Info("catalog imported",
		zap.Int("courses", len(result.CourseIDs)),
		zap.Int("questions", result.Questions),
	)
	return result, nil
}

// DeleteCourse 删除课程及其课时、题目、报名和提交
func (s *CatalogService) DeleteCourse(ctx context.Context, courseID uint) error {
	ctx, span := tracing.Start(ctx, "CatalogService.DeleteCourse")
	defer span.End()

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return fmt.Errorf("find course %d: %w", courseID, err)
	}

	if err := s.CourseRepo.Delete(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return fmt.Errorf("delete course %d: %w", courseID, err)
	}

	if err := s.Storage.Delete(ctx, course.ImageKey); err != nil {
		logger.L().Warn("delete course image failed",
			zap.Uint("course_id", courseID),
			zap.String("key", course.ImageKey),
			zap.Error(err),
		)
	}

	s.Cache.Invalidate(ctx)
	logger.L().Info("course deleted", zap.Uint("course_id", courseID))
	return nil
}
