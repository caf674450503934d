package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillbase/blogserver/internal/constants"
	"github.com/quillbase/blogserver/internal/dto"
	apperrors "github.com/quillbase/blogserver/internal/errors"
	"github.com/quillbase/blogserver/internal/service"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"github.com/quillbase/blogserver/pkg/validation"
)

type BlogHandler struct {
	blogService *service.BlogService
}

func NewBlogHandler(blogService *service.BlogService) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
	}
}

// CreatePost stores a new post owned by the caller
func (h *BlogHandler) CreatePost(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "CreatePost")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	var req dto.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid blog post request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.MessagesFromError(err)))
		return
	}

	post, err := h.blogService.CreatePost(ctx, userID, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Post creation failed").
			String("title", req.Title).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Post creation failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost returns one post with tags, media and author
func (h *BlogHandler) GetPost(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetPost")

	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid post id"))
		return
	}

	post, err := h.blogService.GetPost(ctx, id)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(constants.MsgNotFound, apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListPosts returns a page of full posts
func (h *BlogHandler) ListPosts(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ListPosts")

	params := constants.ParsePaginationParams(c)

	posts, total, err := h.blogService.ListPosts(ctx, params)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(constants.MsgInternalError, apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params.Page, pageTotal(total, params.Size), posts))
}

// ListPostSummaries returns the same page with truncated content
func (h *BlogHandler) ListPostSummaries(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ListPostSummaries")

	params := constants.ParsePaginationParams(c)

	posts, total, err := h.blogService.ListPostSummaries(ctx, params)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(constants.MsgInternalError, apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params.Page, pageTotal(total, params.Size), posts))
}

// ListPostsByTag returns a page of summaries for posts carrying the tag
func (h *BlogHandler) ListPostsByTag(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ListPostsByTag")

	tagName := c.Param("name")
	params := constants.ParsePaginationParams(c)

	posts, total, err := h.blogService.ListPostsByTag(ctx, tagName, params)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(constants.MsgNotFound, apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params.Page, pageTotal(total, params.Size), posts))
}

// ListPostsByUser returns a page of summaries for one author
func (h *BlogHandler) ListPostsByUser(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ListPostsByUser")

	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid user id"))
		return
	}

	params := constants.ParsePaginationParams(c)

	posts, total, err := h.blogService.ListPostsByUser(ctx, id, params)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(constants.MsgInternalError, apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params.Page, pageTotal(total, params.Size), posts))
}

// SearchPosts scans titles, content and tag names for the query string
func (h *BlogHandler) SearchPosts(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "SearchPosts")

	query := c.Query(constants.QueryParamSearch)
	if query == "" {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "query parameter is required"))
		return
	}

	params := constants.ParsePaginationParams(c)

	posts, total, err := h.blogService.SearchPosts(ctx, query, params)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(constants.MsgInternalError, apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params.Page, pageTotal(total, params.Size), posts))
}

// UpdatePost rewrites a post's title, content and tags
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdatePost")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid post id"))
		return
	}

	var req dto.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid blog post request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.MessagesFromError(err)))
		return
	}

	post, err := h.blogService.UpdatePost(ctx, userID, callerAuthority(c), id, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Post update failed").
			Uint("post_id", id).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Post update failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post and its media
func (h *BlogHandler) DeletePost(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "DeletePost")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid post id"))
		return
	}

	if err := h.blogService.DeletePost(ctx, userID, callerAuthority(c), id); err != nil {
		logger.WarnWithContext(ctx, "Post deletion failed").
			Uint("post_id", id).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Post deletion failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgDeleted))
}

// AddTag attaches a tag from the request body to a post
func (h *BlogHandler) AddTag(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "AddTag")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid post id"))
		return
	}

	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid tag request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.MessagesFromError(err)))
		return
	}

	post, err := h.blogService.AddTag(ctx, userID, callerAuthority(c), postID, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to add tag").
			Uint("post_id", postID).
			String("tag", req.Name).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to add tag", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, post)
}

// AddTagByName attaches the tag named in the URL to a post
func (h *BlogHandler) AddTagByName(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "AddTagByName")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid post id"))
		return
	}

	tagName := c.Param("name")
	post, err := h.blogService.AddTagByName(ctx, userID, callerAuthority(c), postID, tagName)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to add tag").
			Uint("post_id", postID).
			String("tag", tagName).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to add tag", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, post)
}

// RemoveTag detaches the named tag from a post
func (h *BlogHandler) RemoveTag(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "RemoveTag")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid post id"))
		return
	}

	tagName := c.Param("name")
	post, err := h.blogService.RemoveTag(ctx, userID, callerAuthority(c), postID, tagName)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to remove tag").
			Uint("post_id", postID).
			String("tag", tagName).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to remove tag", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, post)
}

// AddMedia attaches media metadata to a post
func (h *BlogHandler) AddMedia(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "AddMedia")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid post id"))
		return
	}

	var req dto.MediaFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid media request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.MessagesFromError(err)))
		return
	}

	media, err := h.blogService.AddMedia(ctx, userID, callerAuthority(c), postID, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to attach media").
			Uint("post_id", postID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to attach media", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusCreated, media)
}

// DeleteMedia detaches one media entry from a post
func (h *BlogHandler) DeleteMedia(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "DeleteMedia")

	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	postID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid post id"))
		return
	}

	mediaID, ok := pathID(c, "mediaId")
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, "invalid media id"))
		return
	}

	if err := h.blogService.DeleteMedia(ctx, userID, callerAuthority(c), postID, mediaID); err != nil {
		logger.WarnWithContext(ctx, "Failed to detach media").
			Uint("post_id", postID).
			Uint("media_id", mediaID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse("Failed to detach media", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgDeleted))
}

// ListTags returns every known tag
func (h *BlogHandler) ListTags(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ListTags")

	tags, err := h.blogService.ListTags(ctx)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(constants.MsgInternalError, apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, tags)
}
