// @title Online Course 后端 API
// @version 1.0
// @description 在线课程报名与考试评分服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"onlinecourse_backend/internal/app"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seed := flag.String("seed", "", "启动前导入 YAML 课程目录")
	issueToken := flag.Uint("issue-token", 0, "为指定用户ID签发开发用令牌后退出")
	role := flag.String("role", string(model.RoleLearner), "签发令牌的角色: learner / instructor / admin")
	name := flag.String("name", "", "签发令牌的用户名")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *issueToken != 0 {
		user := &model.User{
			BaseModel: model.BaseModel{ID: *issueToken},
			Name:      *name,
			Role:      model.UserRole(*role),
		}
		token, err := util.GenerateJWT(user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	if *seed != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		result, err := application.Seed(ctx, *seed)
		cancel()
		if err != nil {
			logger.Log.Fatal("Failed to seed catalog", zap.String("file", *seed), zap.Error(err))
		}
		logger.Log.Info("Catalog seeded", zap.Int("courses", len(result.CourseIDs)))
	}

	application.Run()
}
