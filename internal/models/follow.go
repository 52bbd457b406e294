package models

import (
	"time"
)

// Follow 关注关系: User 关注 Author
// (user_id, author_id) 唯一, 重复关注由数据库约束拒绝
type Follow struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:unique_follow" json:"user_id"`
	User     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	AuthorID uint      `gorm:"not null;uniqueIndex:unique_follow;index" json:"author_id"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Created  time.Time `gorm:"<-:create;autoCreateTime" json:"created"`
}
