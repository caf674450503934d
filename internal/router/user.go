package router

import (
	"github.com/gin-gonic/gin"
	"github.com/quillbase/blogserver/internal/constants"
)

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		users.Use(r.jwtMw.RequireAuth())
		{
			// Get user by ID
			users.GET("/:id", r.userHandler.GetUser)

			// Posts written by one author
			users.GET("/:id/posts", r.blogHandler.ListPostsByUser)

			// Update own password with current password verification
			users.PUT("/password", r.userHandler.ChangePassword)

			// Admin-only account management
			admin := users.Group("")
			admin.Use(r.jwtMw.RequireAuthority(constants.AuthorityAdmin))
			{
				admin.PATCH("/:id/authority", r.userHandler.ChangeAuthority)
				admin.DELETE("/:id", r.userHandler.DeleteUser)
			}
		}
	}
}
