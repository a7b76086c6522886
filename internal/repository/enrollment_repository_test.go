package repository

import (
	"testing"

	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnrollmentRepository_CreateWithCounter(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentRepository(db)
	courses := NewCourseRepository(db)
	testutil.CreateUser(t, db, 1, model.RoleLearner)
	course := &model.Course{Name: "c"}
	require.NoError(t, db.Create(course).Error)

	require.NoError(t, repo.CreateWithCounter(&model.Enrollment{UserID: 1, CourseID: course.ID, Mode: model.ModeHonor}, courses))

	err := repo.CreateWithCounter(&model.Enrollment{UserID: 1, CourseID: course.ID, Mode: model.ModeHonor}, courses)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	got, err := courses.FindByID(course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalEnrollment)

	n, err := repo.CountByCourse(course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnrollmentRepository_Lookups(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentRepository(db)
	testutil.CreateUser(t, db, 1, model.RoleLearner)
	a := &model.Course{Name: "a"}
	b := &model.Course{Name: "b"}
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(b).Error)
	testutil.CreateEnrollment(t, db, 1, a.ID)

	ok, err := repo.Exists(1, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(1, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindByUserAndCourse(1, b.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	set, err := repo.EnrolledCourseIDs(1, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{a.ID: true}, set)

	set, err = repo.EnrolledCourseIDs(0, []uint{a.ID})
	require.NoError(t, err)
	assert.Empty(t, set)
}
