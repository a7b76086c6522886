package service

import (
	"testing"

	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/grading"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/testutil"

	"gorm.io/gorm"
)

// stack wires every service over one in-memory database.
type stack struct {
	DB        *gorm.DB
	Storage   *StorageService
	Courses   *CourseService
	Enroll    *EnrollmentService
	Submit    *SubmissionService
	Exam      *ExamService
	Catalog   *CatalogService
	Gradebook *GradebookService
	Learners  *LearnerService
	LocalPath string
}

func newStack(t *testing.T) *stack {
	t.Helper()

	db := testutil.NewDB(t)
	dir := t.TempDir()
	storage, err := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: dir})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	cache := NewCourseCache(nil, 0)

	exam := NewExamService(questionRepo, submissionRepo, grading.DefaultPassPercent)
	return &stack{
		DB:        db,
		Storage:   storage,
		Courses:   NewCourseService(courseRepo, enrollmentRepo, storage, cache),
		Enroll:    NewEnrollmentService(enrollmentRepo, courseRepo, cache),
		Submit:    NewSubmissionService(enrollmentRepo, questionRepo, submissionRepo, false),
		Exam:      exam,
		Catalog:   NewCatalogService(db, courseRepo, repository.NewInstructorRepository(db), storage, cache),
		Gradebook: NewGradebookService(courseRepo, questionRepo, submissionRepo, exam),
		Learners:  NewLearnerService(repository.NewLearnerRepository(db)),
		LocalPath: dir,
	}
}
