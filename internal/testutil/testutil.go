// Package testutil builds in-memory databases and fixtures for tests.
package testutil

import (
	"testing"

	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
// The pool is pinned to a single connection because each sqlite :memory:
// connection is its own database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, id uint, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		BaseModel: model.BaseModel{ID: id},
		Name:      "user",
		Email:     "user@example.com",
		Role:      role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// ExamCourse is the course used across tests:
//
//	question A: grade 10, choices A1 (correct), A2 (correct), A3
//	question B: grade 5,  choice  B1 (incorrect only)
type ExamCourse struct {
	Course *model.Course
	A, B   *model.Question
	A1, A2 *model.Choice
	A3, B1 *model.Choice
}

func CreateExamCourse(t *testing.T, db *gorm.DB) *ExamCourse {
	t.Helper()

	course := &model.Course{
		Name:        "Go 101",
		Description: "Learn Go",
		Lessons: []model.Lesson{
			{Title: "Intro", Order: 1, Content: "hello"},
			{Title: "Types", Order: 2, Content: "ints"},
		},
		Questions: []model.Question{
			{
				Text:  "Which are Go keywords?",
				Grade: 10,
				Order: 1,
				Choices: []model.Choice{
					{Text: "func", IsCorrect: true},
					{Text: "defer", IsCorrect: true},
					{Text: "def"},
				},
			},
			{
				Text:  "Pick nothing",
				Grade: 5,
				Order: 2,
				Choices: []model.Choice{
					{Text: "a trap"},
				},
			},
		},
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	a := &course.Questions[0]
	b := &course.Questions[1]
	return &ExamCourse{
		Course: course,
		A:      a,
		B:      b,
		A1:     &a.Choices[0],
		A2:     &a.Choices[1],
		A3:     &a.Choices[2],
		B1:     &b.Choices[0],
	}
}

func CreateEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint) *model.Enrollment {
	t.Helper()
	e := &model.Enrollment{UserID: userID, CourseID: courseID, Mode: model.ModeHonor, Rating: model.DefaultRating}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}
	return e
}
