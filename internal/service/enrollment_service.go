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
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/tracing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentService 处理报名相关的业务逻辑
type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	Cache          *CourseCache
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	cache *CourseCache,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		Cache:          cache,
	}
}

// Enroll creates the (user, course) enrollment if it does not exist yet and
// reports whether it did. Enrolling twice returns the existing row.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*model.Enrollment, bool, error) {
	ctx, span := tracing.Start(ctx, "EnrollmentService.Enroll")
	defer span.End()

	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, util.ErrCourseNotFound
		}
		return nil, false, fmt.Errorf("find course %d: %w", courseID, err)
	}

	existing, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find enrollment: %w", err)
	}

	enrollment := &model.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		DateEnrolled: time.Now(),
		Mode:         model.ModeHonor,
		Rating:       model.DefaultRating,
	}

	if err := s.EnrollmentRepo.CreateWithCounter(enrollment, s.CourseRepo); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// 并发报名：唯一索引拦下了第二条记录，返回胜出的那一条
			existing, ferr := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
			if ferr != nil {
				return nil, false, fmt.Errorf("reload enrollment after conflict: %w", ferr)
			}
			return existing, false, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, util.ErrCourseNotFound
		default:
			return nil, false, fmt.Errorf("create enrollment: %w", err)
		}
	}

	monitoring.EnrollmentsTotal.Inc()
	s.Cache.Invalidate(ctx)

	logger.L().Info("user enrolled",
		zap.Uint("user_id", userID),
		zap.Uint("course_id", courseID),
		zap.Uint("enrollment_id", enrollment.ID),
	)
	return enrollment, true, nil
}

// IsEnrolled 匿名用户（userID 为 0）永远未报名
func (s *EnrollmentService) IsEnrolled(userID, courseID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.EnrollmentRepo.Exists(userID, courseID)
}

// ReconcileCounters rewrites every course's total_enrollment from the
// enrollments table and returns how many were wrong.
func (s *EnrollmentService) ReconcileCounters(ctx context.Context) (int64, error) {
	ctx, span := tracing.Start(ctx, "EnrollmentService.ReconcileCounters")
	defer span.End()

	fixed, err := s.CourseRepo.RecountEnrollments()
	if err != nil {
		return 0, fmt.Errorf("recount enrollments: %w", err)
	}
	if fixed > 0 {
		monitoring.EnrollmentCounterDrift.Add(float64(fixed))
		s.Cache.Invalidate(ctx)
		logger.L().Warn("enrollment counters corrected", zap.Int64("courses", fixed))
	}
	return fixed, nil
}

// RunReconciler 定时校正报名计数，直到 ctx 结束
func (s *EnrollmentService) RunReconciler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ReconcileCounters(ctx); err != nil {
				logger.L().Error("enrollment reconcile failed", zap.Error(err))
			}
		}
	}
}
