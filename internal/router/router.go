package router

import (
	"votecount/internal/handlers"
	"votecount/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	voteHandler := handlers.NewVoteHandler()
	adminHandler := handlers.NewAdminHandler()

	// 公共路由 (Public Routes)
	r.GET("/count/:ctype/:pk", voteHandler.Count) // 查询任意对象的票数（支持 ?within= 时间窗口）

	r.GET("/signup", authHandler.ShowRegister) // 注册页面
	r.POST("/signup", authHandler.Register)    // 提交注册
	r.GET("/login", authHandler.ShowLogin)     // 登录页面
	r.POST("/login", authHandler.Login)        // 提交登录
	r.GET("/logout", authHandler.Logout)       // 退出登录

	// 投票接口：处理器内部自行校验登录态，未登录返回 401 JSON
	r.POST("/vote", voteHandler.Vote)

	// 管理后台 (Admin Routes)
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("/votes", adminHandler.ListVotes)             // 投票明细列表
		admin.GET("/votecounts", adminHandler.ListVoteCounts)   // 计票汇总列表
		admin.POST("/votes/delete", adminHandler.BulkDeleteVotes) // 批量删除投票
	}

	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
