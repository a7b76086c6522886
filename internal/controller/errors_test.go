package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"course not found", util.ErrCourseNotFound, http.StatusNotFound},
		{"enrollment not found", fmt.Errorf("submit: %w", util.ErrEnrollmentNotFound), http.StatusNotFound},
		{"submission not found", util.ErrSubmissionNotFound, http.StatusNotFound},
		{"permission denied", util.ErrPermissionDenied, http.StatusForbidden},
		{"invalid choice", fmt.Errorf("%w: choice 3", util.ErrInvalidChoice), http.StatusBadRequest},
		{"invalid catalog", util.ErrInvalidCatalog, http.StatusBadRequest},
		{"invalid occupation", util.ErrInvalidOccupation, http.StatusBadRequest},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(ctx, tt.err)

			assert.Equal(t, tt.code, w.Code)
			var resp util.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			if tt.code == http.StatusInternalServerError {
				assert.NotContains(t, resp.Message, "disk on fire", "internal errors are not leaked")
			}
		})
	}
}

func TestCourseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, raw := range []string{"abc", "0", "-1", ""} {
		w := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(w)
		ctx.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := courseIDParam(ctx)
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := courseIDParam(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)
}
