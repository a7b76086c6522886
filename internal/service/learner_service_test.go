package service

import (
	"testing"

	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"
	"onlinecourse_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearnerProfile(t *testing.T) {
	s := newStack(t)
	testutil.CreateUser(t, s.DB, 1, model.RoleLearner)

	l, err := s.Learners.GetProfile(1)
	require.NoError(t, err)
	assert.Equal(t, model.OccupationStudent, l.Occupation)
	assert.Zero(t, l.ID, "default profile is not persisted")

	l, err = s.Learners.UpdateProfile(1, UpdateProfileRequest{Occupation: model.OccupationDeveloper, SocialLink: "https://example.com/ada"})
	require.NoError(t, err)
	assert.NotZero(t, l.ID)
	assert.Equal(t, model.OccupationDeveloper, l.Occupation)

	l, err = s.Learners.UpdateProfile(1, UpdateProfileRequest{Occupation: model.OccupationDatabaseAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.OccupationDatabaseAdmin, l.Occupation)
	assert.Empty(t, l.SocialLink)

	var count int64
	s.DB.Model(&model.Learner{}).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err = s.Learners.UpdateProfile(1, UpdateProfileRequest{Occupation: "astronaut"})
	assert.ErrorIs(t, err, util.ErrInvalidOccupation)
}
