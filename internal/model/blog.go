package model

import (
	"time"

	"gorm.io/datatypes"
)

type BlogPost struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Title      string      `gorm:"column:title;unique;not null"`
	Content    string      `gorm:"column:content;not null"`
	UserID     uint        `gorm:"column:user_id;index;not null"`
	User       User        `gorm:"foreignKey:UserID"`
	Tags       []Tag       `gorm:"many2many:blog_post_tags"`
	MediaFiles []MediaFile `gorm:"foreignKey:BlogPostID"`
}

type Tag struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"column:name;unique;not null"`
}

// Media types stored on MediaFile.MediaType
const (
	MediaTypeImage = "IMAGE"
	MediaTypeVideo = "VIDEO"
)

type MediaFile struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	URL        string         `gorm:"column:file_url;not null"`
	MediaType  string         `gorm:"column:media_type;not null"`
	Width      int            `gorm:"column:width"`
	Height     int            `gorm:"column:height"`
	Metadata   datatypes.JSON `gorm:"column:metadata"`
	BlogPostID uint           `gorm:"column:blog_post_id;index;not null"`
}
