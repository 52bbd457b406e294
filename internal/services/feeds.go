package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"yatube/internal/models"
	"yatube/internal/utils"
)

// Feed 一页帖子及分页信息
type Feed struct {
	Page  utils.Page
	Posts []models.Post
}

// ProfileFeed is an author's feed as seen by a particular viewer.
type ProfileFeed struct {
	Feed
	Author    models.User
	Following bool
}

type GroupFeed struct {
	Feed
	Group models.Group
}

type FeedService struct {
	db      *gorm.DB
	perPage int
}

func NewFeedService(db *gorm.DB, perPage int) *FeedService {
	return &FeedService{db: db, perPage: perPage}
}

// list paginates the posts selected by filter, newest first.
func (s *FeedService) list(ctx context.Context, filter func(*gorm.DB) *gorm.DB, rawPage string) (*Feed, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(filter).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	page := utils.NewPage(count, s.perPage, rawPage)

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(filter, page.Scope()).
		Preload("Author").Preload("Group").
		Order("created DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &Feed{Page: page, Posts: posts}, nil
}

// Home lists every post.
func (s *FeedService) Home(ctx context.Context, rawPage string) (*Feed, error) {
	return s.list(ctx, func(tx *gorm.DB) *gorm.DB { return tx }, rawPage)
}

func (s *FeedService) Group(ctx context.Context, slug, rawPage string) (*GroupFeed, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, notFound(err, "group")
	}

	feed, err := s.list(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("group_id = ?", group.ID)
	}, rawPage)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Feed: *feed, Group: group}, nil
}

// Profile lists posts by username. Following is only ever true for an
// authenticated viewer who follows the author.
func (s *FeedService) Profile(ctx context.Context, username string, viewer *models.User, rawPage string) (*ProfileFeed, error) {
	var author models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&author).Error; err != nil {
		return nil, notFound(err, "user")
	}

	feed, err := s.list(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("author_id = ?", author.ID)
	}, rawPage)
	if err != nil {
		return nil, err
	}

	result := &ProfileFeed{Feed: *feed, Author: author}
	if viewer != nil {
		result.Following, err = isFollowing(ctx, s.db, viewer.ID, author.ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Following lists posts from authors the viewer follows.
func (s *FeedService) Following(ctx context.Context, viewer *models.User, rawPage string) (*Feed, error) {
	return s.list(ctx, func(tx *gorm.DB) *gorm.DB {
		authors := s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", viewer.ID)
		return tx.Where("author_id IN (?)", authors)
	}, rawPage)
}

// Recent returns up to limit newest posts with their authors, unpaginated.
func (s *FeedService) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Order("created DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return posts, nil
}
