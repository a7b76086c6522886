// 手动校正课程报名计数脚本
//
// 该功能已集成到主应用的后台定时任务中（间隔见 enrollment.reconcile_interval）。
// 此脚本仅用于手动触发，例如直接改动过 enrollments 表之后。
//
// 用法: go run scripts/reconcile_enrollments.go

package main

import (
	"context"
	"log"

	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/pkg/database"
	"onlinecourse_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Printf("Redis 不可用，跳过缓存失效: %v", err)
		rdb = nil
	}

	svc := service.NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db),
		service.NewCourseCache(rdb, cfg.Redis.CourseListTTL),
	)

	fixed, err := svc.ReconcileCounters(context.Background())
	if err != nil {
		log.Fatalf("校正失败: %v", err)
	}
	log.Printf("校正完成，共修正 %d 门课程的报名计数", fixed)
}
