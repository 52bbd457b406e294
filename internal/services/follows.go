package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/models"
)

// FollowService 关注关系
type FollowService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFollowService(db *gorm.DB, log *zap.Logger) *FollowService {
	return &FollowService{db: db, log: log}
}

func (s *FollowService) author(ctx context.Context, username string) (*models.User, error) {
	var author models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&author).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &author, nil
}

// Follow subscribes user to the author named username. Following an author twice
// leaves a single edge; following yourself returns ErrSelfFollow and writes nothing.
func (s *FollowService) Follow(ctx context.Context, user *models.User, username string) error {
	author, err := s.author(ctx, username)
	if err != nil {
		return err
	}
	if !CanFollow(user, author) {
		return ErrSelfFollow
	}

	edge := models.Follow{UserID: user.ID, AuthorID: author.ID}
	err = s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	if err != nil {
		return fmt.Errorf("create follow: %w", err)
	}

	s.log.Debug("Follow", zap.Uint("user_id", user.ID), zap.Uint("author_id", author.ID))
	return nil
}

// Unfollow removes the edge if there is one.
func (s *FollowService) Unfollow(ctx context.Context, user *models.User, username string) error {
	author, err := s.author(ctx, username)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", user.ID, author.ID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, user, author *models.User) (bool, error) {
	if user == nil || author == nil {
		return false, nil
	}
	return isFollowing(ctx, s.db, user.ID, author.ID)
}

func isFollowing(ctx context.Context, db *gorm.DB, userID, authorID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return n > 0, nil
}
