package router

import "github.com/gin-gonic/gin"

func (r *Router) blogRoutes(version *gin.RouterGroup) {
	posts := version.Group("/posts")
	{
		// Public read access
		posts.GET("", r.blogHandler.ListPosts)
		posts.GET("/summaries", r.blogHandler.ListPostSummaries)
		posts.GET("/search", r.blogHandler.SearchPosts)
		posts.GET("/:id", r.blogHandler.GetPost)

		// Protected writes (JWT authentication required)
		protected := posts.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("", r.blogHandler.CreatePost)
			protected.PUT("/:id", r.blogHandler.UpdatePost)
			protected.DELETE("/:id", r.blogHandler.DeletePost)

			protected.POST("/:id/tags", r.blogHandler.AddTag)
			protected.POST("/:id/tags/:name", r.blogHandler.AddTagByName)
			protected.DELETE("/:id/tags/:name", r.blogHandler.RemoveTag)

			protected.POST("/:id/media", r.blogHandler.AddMedia)
			protected.DELETE("/:id/media/:mediaId", r.blogHandler.DeleteMedia)
		}
	}

	tags := version.Group("/tags")
	{
		tags.GET("", r.blogHandler.ListTags)
		tags.GET("/:name/posts", r.blogHandler.ListPostsByTag)
	}
}
