package middleware

import (
	"strings"
	"sync"
	"time"

	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func tokenFromRequest(c *gin.Context) string {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if tokenString == "" {
		tokenString = c.Query("token")
	}
	return tokenString
}

func AuthMiddleware(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.Secret)
		if err != nil {
			logger.L().Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// TryAuthMiddleware 可选登录：令牌有效时写入用户，否则按匿名处理
func TryAuthMiddleware(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, cfg.Secret); err == nil {
				c.Set("user", claims)
				c.Set("user_id", claims.UserID)
			}
		}
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			// 管理员直接放行
			if user.Role == model.RoleAdmin || user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserSyncRepo interface {
	Upsert(user *model.User) error
}

// userSyncInterval 同一用户两次同步之间的最短间隔
const userSyncInterval = time.Minute

// UserSyncMiddleware 将令牌中的用户信息写入 users 表。报名等记录依赖该行存在，
// 所以同步是阻塞的；为减少写入，同一用户一分钟内只同步一次。
func UserSyncMiddleware(repo UserSyncRepo) gin.HandlerFunc {
	var lastSync sync.Map // userID -> time.Time

	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.Next()
			return
		}

		if t, ok := lastSync.Load(claims.UserID); ok && time.Since(t.(time.Time)) < userSyncInterval {
			c.Next()
			return
		}

		user := &model.User{
			BaseModel: model.BaseModel{ID: claims.UserID},
			Name:      claims.Name,
			Email:     claims.Email,
			Role:      claims.Role,
		}
		if user.Role == "" {
			user.Role = model.RoleLearner
		}
		if err := repo.Upsert(user); err != nil {
			util.LogInternalError(c, err)
			c.Abort()
			return
		}
		lastSync.Store(claims.UserID, time.Now())
		c.Next()
	}
}
