package models

import (
	"time"
)

// Group 帖子分组
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Created     time.Time `gorm:"<-:create;autoCreateTime;index" json:"created"`
}

func (g Group) String() string {
	return g.Title
}
