package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"
	"onlinecourse_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

type harness struct {
	t   *testing.T
	app *App
	db  *gorm.DB
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite"},
		JWT:      config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
		Storage:  config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Exam:     config.ExamConfig{PassPercent: 60},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	a, err := New(cfg, db, nil)
	require.NoError(t, err)
	return &harness{t: t, app: a, db: db}
}

func (h *harness) token(id uint, role model.UserRole) string {
	h.t.Helper()
	tok, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: id}, Role: role, Name: fmt.Sprintf("user%d", id)}, testSecret, time.Hour)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, target, tok, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.app.Router.ServeHTTP(w, req)
	return w
}

// data decodes the envelope's data field into v.
func data(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealthMetricsSwagger(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/health", "", "", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/metrics", "", "", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/swagger/doc.json", "", "", nil).Code)
}

func TestEnrollAndSubmitFlow(t *testing.T) {
	h := newHarness(t)
	fx := testutil.CreateExamCourse(t, h.db)
	learner := h.token(1, model.RoleLearner)
	base := fmt.Sprintf("/api/courses/%d", fx.Course.ID)

	// 匿名访问
	w := h.do(http.MethodGet, "/api/courses", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	data(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, false, list[0]["isEnrolled"])

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, base+"/enroll", "", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/courses/abc/enroll", learner, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/api/courses/999/enroll", learner, "", nil).Code)

	// 提交前必须报名
	w = h.do(http.MethodPost, base+"/submit", learner, "application/json", []byte(`{"answers":{}}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodPost, base+"/enroll", learner, "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, base, w.Header().Get("Location"))

	w = h.do(http.MethodPost, base+"/enroll", learner, "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "second enroll is idempotent")

	var course model.Course
	require.NoError(t, h.db.First(&course, fx.Course.ID).Error)
	assert.Equal(t, 1, course.TotalEnrollment)

	w = h.do(http.MethodGet, "/api/courses", learner, "", nil)
	data(t, w, &list)
	assert.Equal(t, true, list[0]["isEnrolled"])

	// JSON 答案
	payload := fmt.Sprintf(`{"answers":{"%d":[%d,%d]}}`, fx.A.ID, fx.A1.ID, fx.A2.ID)
	w = h.do(http.MethodPost, base+"/submit", learner, "application/json", []byte(payload))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submitted struct {
		Submission model.Submission `json:"submission"`
		Result     struct {
			Earned       int     `json:"earned"`
			Total        int     `json:"total"`
			ScorePercent float64 `json:"scorePercent"`
			Passed       bool    `json:"passed"`
		} `json:"result"`
	}
	data(t, w, &submitted)
	assert.Equal(t, 15, submitted.Result.Earned)
	assert.Equal(t, 15, submitted.Result.Total)
	assert.Equal(t, 100.0, submitted.Result.ScorePercent)
	assert.True(t, submitted.Result.Passed)
	// 成绩中只有每题对错，不暴露选项答案
	var raw struct {
		Data struct {
			Submission struct {
				Choices []map[string]interface{} `json:"choices"`
			} `json:"submission"`
			Result struct {
				Questions []map[string]interface{} `json:"questions"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw.Data.Submission.Choices, 2)
	for _, ch := range raw.Data.Submission.Choices {
		assert.NotContains(t, ch, "isCorrect")
	}
	require.Len(t, raw.Data.Result.Questions, 2)
	for _, q := range raw.Data.Result.Questions {
		assert.NotContains(t, q, "choices")
		assert.NotContains(t, q, "question")
	}
	resultURL := fmt.Sprintf("%s/submissions/%d/result", base, submitted.Submission.ID)
	assert.Equal(t, resultURL, w.Header().Get("Location"))

	// 表单提交
	form := url.Values{}
	form.Add(fmt.Sprintf("choice_%d", fx.A.ID), util.UintToString(fx.A1.ID))
	form.Add(fmt.Sprintf("choice_%d", fx.B.ID), util.UintToString(fx.B1.ID))
	form.Add(fmt.Sprintf("choice_%d", fx.B.ID), "not-a-number")
	w = h.do(http.MethodPost, base+"/submit", learner, "application/x-www-form-urlencoded", []byte(form.Encode()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data(t, w, &submitted)
	assert.Equal(t, 0, submitted.Result.Earned)
	assert.False(t, submitted.Result.Passed)

	// multipart 表单
	var mp bytes.Buffer
	mw := multipart.NewWriter(&mp)
	require.NoError(t, mw.WriteField(fmt.Sprintf("choice_%d", fx.A.ID), util.UintToString(fx.A1.ID)))
	require.NoError(t, mw.WriteField(fmt.Sprintf("choice_%d", fx.A.ID), util.UintToString(fx.A2.ID)))
	require.NoError(t, mw.Close())
	w = h.do(http.MethodPost, base+"/submit", learner, mw.FormDataContentType(), mp.Bytes())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data(t, w, &submitted)
	assert.Equal(t, 15, submitted.Result.Earned)
	assert.True(t, submitted.Result.Passed)
	assert.Len(t, submitted.Submission.Choices, 2)

	// 不支持的格式不会记录空提交
	w = h.do(http.MethodPost, base+"/submit", learner, "text/plain", []byte("choice_1=1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 非法 JSON
	w = h.do(http.MethodPost, base+"/submit", learner, "application/json", []byte(`{"answers":{"x":[1]}}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 提交记录与成绩
	w = h.do(http.MethodGet, base+"/submissions", learner, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var subs []model.Submission
	data(t, w, &subs)
	assert.Len(t, subs, 3)

	w = h.do(http.MethodGet, resultURL, learner, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, resultURL, h.token(2, model.RoleLearner), "", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, resultURL, h.token(3, model.RoleAdmin), "", nil).Code)

	other := testutil.CreateExamCourse(t, h.db)
	otherResult := fmt.Sprintf("/api/courses/%d/submissions/%d/result", other.Course.ID, submitted.Submission.ID)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, otherResult, learner, "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, base+"/submissions/x/result", learner, "", nil).Code)
}

func TestCourseDetailHidesAnswers(t *testing.T) {
	h := newHarness(t)
	fx := testutil.CreateExamCourse(t, h.db)

	w := h.do(http.MethodGet, fmt.Sprintf("/api/courses/%d", fx.Course.ID), "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "isCorrect")
	assert.Contains(t, w.Body.String(), "Which are Go keywords?")

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/courses/999", "", "", nil).Code)
}

func TestStrictChoicesHotReload(t *testing.T) {
	h := newHarness(t)
	fx := testutil.CreateExamCourse(t, h.db)
	learner := h.token(1, model.RoleLearner)
	base := fmt.Sprintf("/api/courses/%d", fx.Course.ID)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/enroll", learner, "", nil).Code)

	mismatched := fmt.Sprintf(`{"answers":{"%d":[%d]}}`, fx.A.ID, fx.B1.ID)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/submit", learner, "application/json", []byte(mismatched)).Code)

	reloaded := *h.app.Config
	reloaded.Exam = config.ExamConfig{PassPercent: 50, StrictChoices: true}
	h.app.ReloadConfig(&reloaded)

	w := h.do(http.MethodPost, base+"/submit", learner, "application/json", []byte(mismatched))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 50.0, h.app.services.exam.PassPercent())
}

func TestLearnerProfile(t *testing.T) {
	h := newHarness(t)
	tok := h.token(1, model.RoleLearner)

	w := h.do(http.MethodGet, "/api/learner/profile", tok, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var l model.Learner
	data(t, w, &l)
	assert.Equal(t, model.OccupationStudent, l.Occupation)

	w = h.do(http.MethodPut, "/api/learner/profile", tok, "application/json", []byte(`{"occupation":"astronaut"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPut, "/api/learner/profile", tok, "application/json", []byte(`{"occupation":"developer","socialLink":"not a url"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPut, "/api/learner/profile", tok, "application/json", []byte(`{"occupation":"developer","socialLink":"https://example.com/u1"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &l)
	assert.Equal(t, model.OccupationDeveloper, l.Occupation)
	assert.Equal(t, "https://example.com/u1", l.SocialLink)
}

const catalogYAML = `
courses:
  - name: Imported
    instructors: [{user_id: 50, name: Grace}]
    lessons: [{title: One}]
    questions:
      - text: Q
        grade: 2
        choices: [{text: yes, correct: true}, {text: no}]
`

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t)
	learner := h.token(1, model.RoleLearner)
	instructor := h.token(2, model.RoleInstructor)
	admin := h.token(3, model.RoleAdmin)

	assert.Equal(t, http.StatusForbidden,
		h.do(http.MethodPost, "/api/admin/catalog/import", learner, util.MimeYAML, []byte(catalogYAML)).Code)

	w := h.do(http.MethodPost, "/api/admin/catalog/import", instructor, util.MimeYAML, []byte("courses: [{description: x}]"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/admin/catalog/import", instructor, util.MimeYAML, []byte(catalogYAML))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var imported struct {
		CourseIDs []uint `json:"courseIds"`
	}
	data(t, w, &imported)
	require.Len(t, imported.CourseIDs, 1)
	courseID := imported.CourseIDs[0]

	// 报名并提交一次，用于成绩册
	base := fmt.Sprintf("/api/courses/%d", courseID)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/enroll", learner, "", nil).Code)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/submit", learner, "application/json", []byte(`{"answers":{}}`)).Code)

	w = h.do(http.MethodGet, fmt.Sprintf("/api/admin/courses/%d/gradebook", courseID), admin, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.MimeXLSX, w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), "gradebook-course-"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	// 人为制造计数偏差
	require.NoError(t, h.db.Model(&model.Course{}).Where("id = ?", courseID).UpdateColumn("total_enrollment", 7).Error)
	w = h.do(http.MethodPost, "/api/admin/enrollments/reconcile", admin, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec struct {
		Corrected int64 `json:"corrected"`
	}
	data(t, w, &rec)
	assert.Equal(t, int64(1), rec.Corrected)

	w = h.do(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", courseID), admin, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", courseID), admin, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, fmt.Sprintf("/api/admin/courses/%d/gradebook", courseID), admin, "", nil).Code)
}

func TestSubmitRateLimitedPerUser(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.RateLimit.SubmitPerMinute = 2 })
	fx := testutil.CreateExamCourse(t, h.db)
	base := fmt.Sprintf("/api/courses/%d", fx.Course.ID)
	alice, bob := h.token(1, model.RoleLearner), h.token(2, model.RoleLearner)
	for _, tok := range []string{alice, bob} {
		require.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/enroll", tok, "", nil).Code)
	}

	empty := []byte(`{"answers":{}}`)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/submit", alice, "application/json", empty).Code)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/submit", alice, "application/json", empty).Code)
	assert.Equal(t, http.StatusTooManyRequests, h.do(http.MethodPost, base+"/submit", alice, "application/json", empty).Code)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/submit", bob, "application/json", empty).Code)
}
