package dto

import (
	"time"

	"gorm.io/datatypes"
)

type BlogPostRequest struct {
	Title   string             `json:"title" binding:"required,min=3,max=255"`
	Content string             `json:"content" binding:"required"`
	Tags    []TagRequest       `json:"tags" binding:"omitempty,dive"`
	Media   []MediaFileRequest `json:"media" binding:"omitempty,dive"`
}

type TagRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

type MediaFileRequest struct {
	URL       string         `json:"url" binding:"required,url"`
	MediaType string         `json:"media_type" binding:"required,oneof=IMAGE VIDEO"`
	Width     int            `json:"width" binding:"omitempty,gte=0"`
	Height    int            `json:"height" binding:"omitempty,gte=0"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
}

type BlogPostResponse struct {
	ID        uint                `json:"id"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	Author    string              `json:"author"`
	UserID    uint                `json:"user_id"`
	Tags      []TagResponse       `json:"tags"`
	Media     []MediaFileResponse `json:"media"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// BlogPostSummaryResponse carries a truncated content preview for listings.
type BlogPostSummaryResponse struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Author  string `json:"author"`
}

type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type MediaFileResponse struct {
	ID        uint           `json:"id"`
	URL       string         `json:"url"`
	MediaType string         `json:"media_type"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
}
