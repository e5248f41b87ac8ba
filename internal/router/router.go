package router

import (
	"fmt"
	"socialnet/internal/admin"
	"socialnet/internal/handlers"
	"socialnet/internal/middleware"
	"socialnet/internal/services"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps is everything the routes need from main.
type Deps struct {
	DB     *gorm.DB
	Events services.EventPublisher
	// Limiter may be nil.
	Limiter *middleware.RateLimiter

	AdminName     string
	AdminPassword string
	SessionSecret string
	StatsTTL      time.Duration
}

// New builds an engine with the standard middleware chain and every route.
func New(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID(), middleware.Metrics())
	if err := RegisterRoutes(r, d); err != nil {
		return nil, err
	}
	return r, nil
}

func RegisterRoutes(r *gin.Engine, d Deps) error {
	if d.StatsTTL == 0 {
		d.StatsTTL = 30 * time.Second
	}
	if d.SessionSecret == "" {
		d.SessionSecret = "sample key"
	}

	render, err := admin.Renderer()
	if err != nil {
		return fmt.Errorf("admin templates: %w", err)
	}
	r.HTMLRender = render

	// Services
	userService := services.NewUserService(d.DB, d.Events)
	postService := services.NewPostService(d.DB, d.Events)
	commentService := services.NewCommentService(d.DB, d.Events)
	socialService := services.NewSocialService(d.DB, d.Events)
	statsService := services.NewStatsService(d.DB, d.StatsTTL)

	// Handlers
	siteHandler := handlers.NewSiteHandler(r, d.DB)
	userHandler := handlers.NewUserHandler(userService, socialService)
	postHandler := handlers.NewPostHandler(postService)
	commentHandler := handlers.NewCommentHandler(commentService)
	adminHandler := handlers.NewAdminHandler(d.AdminName, userService, postService, commentService, statsService)

	r.GET("/", siteHandler.Sitemap)        // 路由表
	r.GET("/healthz", siteHandler.Healthz) // 健康检查
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	api.Use(d.Limiter.Handler())
	{
		api.GET("/users", userHandler.List)
		api.POST("/users", userHandler.Create)
		api.GET("/users/:id", userHandler.Get)
		api.PUT("/users/:id", userHandler.Update)
		api.DELETE("/users/:id", userHandler.Delete)
		api.POST("/users/:id/follow", userHandler.Follow)     // :id 为被关注者
		api.POST("/users/:id/unfollow", userHandler.Unfollow) // 取消关注
		api.POST("/users/:id/like", userHandler.Like)         // :id 为点赞用户
		api.POST("/users/:id/unlike", userHandler.Unlike)

		api.GET("/posts", postHandler.List)
		api.POST("/posts", postHandler.Create)
		api.GET("/posts/:id", postHandler.Get)
		api.PUT("/posts/:id", postHandler.Update)
		api.DELETE("/posts/:id", postHandler.Delete)

		api.GET("/posts/:id/comments", commentHandler.List)
		api.POST("/posts/:id/comments", commentHandler.Create)
		api.PUT("/posts/:id/comments/:comment_id", commentHandler.Update)
		api.DELETE("/posts/:id/comments/:comment_id", commentHandler.Delete)
	}

	// 后台管理
	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{Path: "/admin", HttpOnly: true, MaxAge: 3600})
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.AdminAuth(d.AdminPassword), sessions.Sessions("socialnet_admin", store))
	{
		adminGroup.GET("", adminHandler.Dashboard)

		adminGroup.GET("/users", adminHandler.Users)
		adminGroup.GET("/users/new", adminHandler.NewUser)
		adminGroup.POST("/users/new", adminHandler.CreateUser)
		adminGroup.GET("/users/:id/edit", adminHandler.EditUser)
		adminGroup.POST("/users/:id/edit", adminHandler.UpdateUser)
		adminGroup.POST("/users/:id/delete", adminHandler.DeleteUser)

		adminGroup.GET("/posts", adminHandler.Posts)
		adminGroup.GET("/posts/new", adminHandler.NewPost)
		adminGroup.POST("/posts/new", adminHandler.CreatePost)
		adminGroup.GET("/posts/:id/edit", adminHandler.EditPost)
		adminGroup.POST("/posts/:id/edit", adminHandler.UpdatePost)
		adminGroup.POST("/posts/:id/delete", adminHandler.DeletePost)

		adminGroup.GET("/comments", adminHandler.Comments)
		adminGroup.GET("/comments/new", adminHandler.NewComment)
		adminGroup.POST("/comments/new", adminHandler.CreateComment)
		adminGroup.GET("/comments/:id/edit", adminHandler.EditComment)
		adminGroup.POST("/comments/:id/edit", adminHandler.UpdateComment)
		adminGroup.POST("/comments/:id/delete", adminHandler.DeleteComment)
	}

	return nil
}
