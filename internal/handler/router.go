package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emoncse/bugtracker/pkg/log"
	"github.com/emoncse/bugtracker/pkg/middleware"
)

// NewRouter assembles the HTTP and websocket routes.
func NewRouter(auth *AuthHandler, api *HTTPHandler, ws *WSHandler, authMW *middleware.AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(log.L()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", auth.Register)
		v1.POST("/auth/token", auth.Login)
		v1.POST("/auth/token/refresh", auth.Refresh)

		protected := v1.Group("")
		protected.Use(authMW.RequireAuth())
		{
			protected.GET("/projects", api.ListProjects)
			protected.POST("/projects", api.CreateProject)
			protected.GET("/projects/:id", api.GetProject)
			protected.PUT("/projects/:id", api.UpdateProject)
			protected.DELETE("/projects/:id", api.DeleteProject)
			protected.GET("/projects/:id/bugs", api.ListProjectBugs)

			protected.GET("/bugs", api.ListBugs)
			protected.POST("/bugs", api.CreateBug)
			protected.GET("/bugs/assigned-to-me", api.ListAssignedBugs)
			protected.GET("/bugs/created-by-me", api.ListCreatedBugs)
			protected.GET("/bugs/:id", api.GetBug)
			protected.PUT("/bugs/:id", api.UpdateBug)
			protected.DELETE("/bugs/:id", api.DeleteBug)

			protected.GET("/comments", api.ListComments)
			protected.POST("/comments", api.CreateComment)

			protected.GET("/activities", api.ListActivities)
		}
	}

	wsGroup := router.Group("/ws")
	wsGroup.Use(authMW.RequireAuth())
	{
		wsGroup.GET("/tracker", ws.HandleGlobal)
		wsGroup.GET("/tracker/:project_id", ws.HandleProject)

		// Older clients connect to the project path directly.
		wsGroup.GET("/project/:project_id", ws.HandleProject)
	}

	return router
}
