package controller

import (
	"fmt"
	"net/url"

	"onlinecourse_backend/internal/grading"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService     *service.CourseService
	EnrollmentService *service.EnrollmentService
	SubmissionService *service.SubmissionService
	ExamService       *service.ExamService
}

func NewCourseController(
	courseService *service.CourseService,
	enrollmentService *service.EnrollmentService,
	submissionService *service.SubmissionService,
	examService *service.ExamService,
) *CourseController {
	return &CourseController{
		CourseService:     courseService,
		EnrollmentService: enrollmentService,
		SubmissionService: submissionService,
		ExamService:       examService,
	}
}

// SubmitResponse 提交结果
// swagger:model SubmitResponse
type SubmitResponse struct {
	Submission *model.Submission `json:"submission"`
	Result     *grading.Report   `json:"result"`
}

// @Summary 课程列表
// @Description 报名人数最多的前10门课程；携带令牌时返回 isEnrolled
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=[]service.CourseListItem}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	items, err := c.CourseService.ListCourses(ctx.Request.Context(), util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// @Summary 课程详情
// @Description 课时、讲师和考试题目（不含正确答案）
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := courseIDParam(ctx)
	if !ok {
		return
	}
	detail, err := c.CourseService.GetCourseDetail(ctx.Request.Context(), courseID, util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 报名课程
// @Description 重复报名返回已有记录（200），首次报名返回 201
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := courseIDParam(ctx)
	if !ok {
		return
	}

	enrollment, created, err := c.EnrollmentService.Enroll(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	location := fmt.Sprintf("/api/courses/%d", courseID)
	if created {
		util.CreatedAt(ctx, location, enrollment)
		return
	}
	ctx.Header("Location", location)
	util.Success(ctx, enrollment)
}

// @Summary 提交考试
// @Description JSON: {"answers": {"<questionId>": [choiceId]}}；表单: choice_<questionId>=<choiceId>
// @Tags 考试
// @Accept json
// @Accept x-www-form-urlencoded
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param body body service.AnswerPayload false "答案"
// @Success 201 {object} util.Response{data=SubmitResponse}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/submit [post]
func (c *CourseController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := courseIDParam(ctx)
	if !ok {
		return
	}

	var (
		sub *model.Submission
		err error
	)
	switch ctx.ContentType() {
	case gin.MIMEJSON:
		var payload service.AnswerPayload
		if err := ctx.ShouldBindJSON(&payload); err != nil {
			util.BadRequest(ctx, "invalid answers payload: "+err.Error())
			return
		}
		sub, err = c.SubmissionService.SubmitAnswers(ctx.Request.Context(), user.UserID, courseID, payload)
	case gin.MIMEPOSTForm:
		if perr := ctx.Request.ParseForm(); perr != nil {
			util.BadRequest(ctx, "invalid form")
			return
		}
		sub, err = c.SubmissionService.SubmitForm(ctx.Request.Context(), user.UserID, courseID, ctx.Request.PostForm)
	case gin.MIMEMultipartPOSTForm:
		form, perr := ctx.MultipartForm()
		if perr != nil {
			util.BadRequest(ctx, "invalid multipart form")
			return
		}
		sub, err = c.SubmissionService.SubmitForm(ctx.Request.Context(), user.UserID, courseID, url.Values(form.Value))
	default:
		// 未知格式直接拒绝，避免记录一次空提交
		util.BadRequest(ctx, "unsupported content type: "+ctx.ContentType())
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	report, err := c.ExamService.GradeAttempt(ctx.Request.Context(), courseID, sub)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.CreatedAt(ctx,
		fmt.Sprintf("/api/courses/%d/submissions/%d/result", courseID, sub.ID),
		SubmitResponse{Submission: sub, Result: report})
}

// @Summary 我的提交记录
// @Tags 考试
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/submissions [get]
func (c *CourseController) ListSubmissions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := courseIDParam(ctx)
	if !ok {
		return
	}

	subs, err := c.SubmissionService.ListForUser(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary 考试成绩
// @Description 每次请求都根据已保存的提交重新评分
// @Tags 考试
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param submissionId path int true "提交ID"
// @Success 200 {object} util.Response{data=grading.Report}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/submissions/{submissionId}/result [get]
func (c *CourseController) Result(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := courseIDParam(ctx)
	if !ok {
		return
	}
	submissionID, ok := util.ParseUintStrict(ctx.Param("submissionId"))
	if !ok {
		util.BadRequest(ctx, "invalid submission id")
		return
	}

	report, err := c.ExamService.Result(ctx.Request.Context(), user, courseID, submissionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
