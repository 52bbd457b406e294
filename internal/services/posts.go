package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/models"
)

// PostInput 发帖/编辑表单, 作者不在表单里, 始终取自会话
type PostInput struct {
	Text  string
	Group string // group id, empty for none
	Image *multipart.FileHeader
}

type upload struct {
	name        string
	data        []byte
	contentType string
}

type PostService struct {
	db        *gorm.DB
	images    ImageStore
	maxUpload int64
	log       *zap.Logger
}

func NewPostService(db *gorm.DB, images ImageStore, maxUpload int64, log *zap.Logger) *PostService {
	return &PostService{db: db, images: images, maxUpload: maxUpload, log: log}
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		return nil, notFound(err, "post")
	}
	return &post, nil
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// Editable loads a post for editing. A non-author gets the post back together
// with ErrAuthorMismatch.
func (s *PostService) Editable(ctx context.Context, actor *models.User, id uint) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanEditPost(actor, post) {
		return post, ErrAuthorMismatch
	}
	return post, nil
}

// Groups lists the choices for the group field.
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.WithContext(ctx).Order("title ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *PostService) Create(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	groupID, img, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	authorID := author.ID
	post := models.Post{
		Text:     strings.TrimSpace(in.Text),
		AuthorID: &authorID,
		GroupID:  groupID,
	}

	err = s.withImage(ctx, img, func(stored string) error {
		post.Image = stored
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Omit(clause.Associations).Create(&post).Error
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.Info("Post created", zap.Uint("post_id", post.ID), zap.Uint("author_id", authorID))
	return &post, nil
}

// Update rewrites text and group. A new image replaces the stored path; no image
// keeps the old one. The author never changes.
func (s *PostService) Update(ctx context.Context, actor *models.User, id uint, in PostInput) (*models.Post, error) {
	post, err := s.Editable(ctx, actor, id)
	if err != nil {
		return post, err
	}

	groupID, img, err := s.validate(ctx, in)
	if err != nil {
		return post, err
	}

	err = s.withImage(ctx, img, func(stored string) error {
		updates := map[string]interface{}{
			"text":     strings.TrimSpace(in.Text),
			"group_id": groupID,
		}
		if stored != "" {
			updates["image"] = stored
		}
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error
		})
	})
	if err != nil {
		return post, fmt.Errorf("update post: %w", err)
	}

	s.log.Info("Post updated", zap.Uint("post_id", post.ID))
	return s.Get(ctx, post.ID)
}

func (s *PostService) validate(ctx context.Context, in PostInput) (*uint, *upload, error) {
	verr := &ValidationError{}

	if strings.TrimSpace(in.Text) == "" {
		verr.Add("text", "This field is required.")
	}

	var groupID *uint
	if raw := strings.TrimSpace(in.Group); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			verr.Add("group", "Select a valid choice.")
		} else {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return nil, nil, fmt.Errorf("check group: %w", err)
			}
			if count == 0 {
				verr.Add("group", "Select a valid choice.")
			} else {
				gid := uint(id)
				groupID = &gid
			}
		}
	}

	var img *upload
	if in.Image != nil {
		var msg string
		img, msg = s.readImage(in.Image)
		if msg != "" {
			verr.Add("image", msg)
		}
	}

	if verr.HasErrors() {
		return nil, nil, verr
	}
	return groupID, img, nil
}

// readImage returns a validation message instead of an error; any failure to read
// the upload is the client's problem.
func (s *PostService) readImage(fh *multipart.FileHeader) (*upload, string) {
	if s.maxUpload > 0 && fh.Size > s.maxUpload {
		return nil, "The file is too large."
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "The submitted file could not be read."
	}
	defer f.Close()

	var r io.Reader = f
	if s.maxUpload > 0 {
		r = io.LimitReader(f, s.maxUpload+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "The submitted file could not be read."
	}
	if s.maxUpload > 0 && int64(len(data)) > s.maxUpload {
		return nil, "The file is too large."
	}
	if len(data) == 0 {
		return nil, "The submitted file is empty."
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	}
	return &upload{name: fh.Filename, data: data, contentType: mt.String()}, ""
}

// withImage stores img before running write, and removes it again if write fails.
func (s *PostService) withImage(ctx context.Context, img *upload, write func(stored string) error) error {
	if img == nil {
		return write("")
	}

	stored, err := s.images.Save(ctx, img.name, bytes.NewReader(img.data), int64(len(img.data)), img.contentType)
	if err != nil {
		return fmt.Errorf("store image: %w", err)
	}
	if err := write(stored); err != nil {
		if derr := s.images.Delete(ctx, stored); derr != nil {
			s.log.Warn("Failed to remove orphaned image", zap.String("path", stored), zap.Error(derr))
		}
		return err
	}
	return nil
}

// Comments lists a post's comments, newest first.
func (s *PostService) Comments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// AddComment attaches text to the post as author. Both identities come from the
// caller, never from submitted data.
func (s *PostService) AddComment(ctx context.Context, author *models.User, postID uint, text string) (*models.Comment, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").First(&post, postID).Error; err != nil {
		return nil, notFound(err, "post")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		verr := &ValidationError{}
		verr.Add("text", "This field is required.")
		return nil, verr
	}

	comment := models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}
