package main

import (
	"github.com/gin-gonic/gin"
	"github.com/haidang/taskhive/backend/internal/middleware"
	"github.com/haidang/taskhive/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "taskhive"})
	})

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Profile
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.PUT("/auth/me", svc.authHandler.UpdateProfile)
			protected.GET("/users/search", svc.authHandler.SearchUsers)

			// Projects
			protected.GET("/projects", svc.projectHandler.List)
			protected.GET("/projects/archived", svc.projectHandler.ListArchived)
			protected.GET("/projects/joinable", svc.projectHandler.ListJoinable)
			protected.GET("/projects/stats", svc.projectHandler.Stats)
			protected.GET("/projects/:id", svc.projectHandler.Get)
			protected.POST("/projects", svc.projectHandler.Create)
			protected.PUT("/projects/:id", svc.projectHandler.Update)
			protected.POST("/projects/:id/archive", svc.projectHandler.Archive)
			protected.POST("/projects/:id/restore", svc.projectHandler.Restore)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)

			// Project members
			protected.POST("/projects/:id/members", svc.memberHandler.Add)
			protected.PUT("/projects/:id/members/:userId", svc.memberHandler.UpdateRole)
			protected.DELETE("/projects/:id/members/:userId", svc.memberHandler.Remove)
			protected.POST("/projects/:id/join", svc.memberHandler.Join)
			protected.POST("/projects/:id/leave", svc.memberHandler.Leave)

			// Team (cross-project)
			protected.GET("/team", svc.memberHandler.ListTeam)
			protected.GET("/team/stats", svc.memberHandler.TeamStats)
			protected.PUT("/team/:userId/role", svc.memberHandler.UpdateTeamRole)
			protected.DELETE("/team/:userId", svc.memberHandler.RemoveFromTeam)

			// Invitations
			protected.POST("/invitations", svc.invitationHandler.Invite)
			protected.GET("/invitations", svc.invitationHandler.ListPending)
			protected.GET("/invitations/mine", svc.invitationHandler.ListMine)
			protected.POST("/invitations/:id/cancel", svc.invitationHandler.Cancel)
			protected.POST("/invitations/:id/resend", svc.invitationHandler.Resend)
			protected.POST("/invitations/accept", svc.invitationHandler.Accept)

			// Tasks & comments
			protected.GET("/projects/:id/tasks", svc.taskHandler.List)
			protected.POST("/projects/:id/tasks", svc.taskHandler.Create)
			protected.GET("/tasks/:id", svc.taskHandler.Get)
			protected.PUT("/tasks/:id", svc.taskHandler.Update)
			protected.DELETE("/tasks/:id", svc.taskHandler.Delete)
			protected.GET("/tasks/:id/comments", svc.taskHandler.ListComments)
			protected.POST("/tasks/:id/comments", svc.taskHandler.AddComment)
			protected.DELETE("/comments/:id", svc.taskHandler.DeleteComment)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/activity", svc.activityHandler.List)
			admin.GET("/activity/modules", svc.activityHandler.Modules)
		}
	}
}
