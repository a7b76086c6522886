package controller

import (
	"net/http"

	"onlinecourse_backend/internal/catalog"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// maxCatalogSize 导入文件大小上限
const maxCatalogSize = 4 << 20

type AdminController struct {
	CatalogService    *service.CatalogService
	GradebookService  *service.GradebookService
	EnrollmentService *service.EnrollmentService
}

func NewAdminController(
	catalogService *service.CatalogService,
	gradebookService *service.GradebookService,
	enrollmentService *service.EnrollmentService,
) *AdminController {
	return &AdminController{
		CatalogService:    catalogService,
		GradebookService:  gradebookService,
		EnrollmentService: enrollmentService,
	}
}

// @Summary 导入课程目录
// @Description YAML 文档，全部课程在一个事务中写入
// @Tags 管理
// @Accept application/x-yaml
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response{data=service.ImportResult}
// @Failure 400 {object} util.Response
// @Router /api/admin/catalog/import [post]
func (c *AdminController) ImportCatalog(ctx *gin.Context) {
	body := http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxCatalogSize)
	doc, err := catalog.Parse(body)
	if err != nil {
		respondError(ctx, err)
		return
	}

	result, err := c.CatalogService.Import(ctx.Request.Context(), doc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary 删除课程
// @Description 同时删除课时、题目、选项、报名和提交
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/courses/{id} [delete]
func (c *AdminController) DeleteCourse(ctx *gin.Context) {
	courseID, ok := courseIDParam(ctx)
	if !ok {
		return
	}
	if err := c.CatalogService.DeleteCourse(ctx.Request.Context(), courseID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": courseID})
}

// @Summary 导出成绩册
// @Tags 管理
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /api/admin/courses/{id}/gradebook [get]
func (c *AdminController) ExportGradebook(ctx *gin.Context) {
	courseID, ok := courseIDParam(ctx)
	if !ok {
		return
	}
	data, filename, err := c.GradebookService.Export(ctx.Request.Context(), courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Attachment(ctx, filename, util.MimeXLSX, data)
}

// @Summary 校正报名计数
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/enrollments/reconcile [post]
func (c *AdminController) ReconcileEnrollments(ctx *gin.Context) {
	fixed, err := c.EnrollmentService.ReconcileCounters(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"corrected": fixed})
}
