package repository

import (
	"testing"

	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Upsert(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Upsert(&model.User{BaseModel: model.BaseModel{ID: 9}, Name: "old", Role: model.RoleLearner}))
	require.NoError(t, repo.Upsert(&model.User{BaseModel: model.BaseModel{ID: 9}, Name: "new", Email: "n@example.com", Role: model.RoleInstructor}))

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)

	u, err := repo.FindByID(9)
	require.NoError(t, err)
	assert.Equal(t, "new", u.Name)
	assert.Equal(t, model.RoleInstructor, u.Role)
	assert.False(t, u.LastSeen.IsZero())
}

func TestInstructorRepository_EnsureForUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewInstructorRepository(db)

	t.Run("creates missing user as instructor", func(t *testing.T) {
		inst, err := repo.EnsureForUser(db, &model.User{BaseModel: model.BaseModel{ID: 20}, Name: "Ada"}, false)
		require.NoError(t, err)
		assert.False(t, inst.FullTime)

		var u model.User
		require.NoError(t, db.First(&u, 20).Error)
		assert.Equal(t, model.RoleInstructor, u.Role)
	})

	t.Run("keeps existing role and profile", func(t *testing.T) {
		testutil.CreateUser(t, db, 21, model.RoleAdmin)

		first, err := repo.EnsureForUser(db, &model.User{BaseModel: model.BaseModel{ID: 21}}, true)
		require.NoError(t, err)
		again, err := repo.EnsureForUser(db, &model.User{BaseModel: model.BaseModel{ID: 21}}, false)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.True(t, again.FullTime, "existing profile is not overwritten")

		var u model.User
		require.NoError(t, db.First(&u, 21).Error)
		assert.Equal(t, model.RoleAdmin, u.Role)
	})
}

func TestInstructorRepository_ListByCourse(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewInstructorRepository(db)
	fx := testutil.CreateExamCourse(t, db)

	a, err := repo.EnsureForUser(db, &model.User{BaseModel: model.BaseModel{ID: 30}, Name: "A"}, true)
	require.NoError(t, err)
	b, err := repo.EnsureForUser(db, &model.User{BaseModel: model.BaseModel{ID: 31}, Name: "B"}, true)
	require.NoError(t, err)
	require.NoError(t, db.Model(fx.Course).Omit("Instructors.*").Association("Instructors").Append([]model.Instructor{*b, *a}))

	list, err := repo.ListByCourse(fx.Course.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	require.NotNil(t, list[1].User)
	assert.Equal(t, "B", list[1].User.Name)

	empty, err := repo.ListByCourse(fx.Course.ID + 100)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
