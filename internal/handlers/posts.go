package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/cache"
	"yatube/internal/middleware"
	"yatube/internal/services"
	"yatube/internal/utils"
)

// homeFeedFragment is the cached part of the home page: posts and paginator only.
const homeFeedFragment = "fragments/home_feed.html"

type PostHandler struct {
	feeds     *services.FeedService
	posts     *services.PostService
	home      *cache.Snapshots
	fragments *Fragments
	log       *zap.Logger
}

func NewPostHandler(feeds *services.FeedService, posts *services.PostService, home *cache.Snapshots, fragments *Fragments, log *zap.Logger) *PostHandler {
	return &PostHandler{feeds: feeds, posts: posts, home: home, fragments: fragments, log: log}
}

func detailURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

// Index 首页, 所有帖子按时间倒序. 帖子列表按 URL 缓存并为所有访客共享,
// 页头每次按当前用户渲染
func (h *PostHandler) Index(c *gin.Context) {
	page := c.Query("page")
	feed, err := h.home.Get(c.Request.Context(), c.Request.URL.RequestURI(), func(ctx context.Context) ([]byte, error) {
		feed, err := h.feeds.Home(ctx, page)
		if err != nil {
			return nil, err
		}
		return h.fragments.Render(homeFeedFragment, gin.H{
			"Page":  feed.Page,
			"Posts": feed.Posts,
		})
	})
	if err != nil {
		fail(c, h.log, err)
		return
	}

	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Title": "Последние обновления на сайте",
		"Feed":  template.HTML(feed),
	})
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	feed, err := h.feeds.Group(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Title": feed.Group.Title,
		"Group": feed.Group,
		"Page":  feed.Page,
		"Posts": feed.Posts,
	})
}

// Detail shows one post with its comments and the comment form.
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}

	ctx := c.Request.Context()
	post, err := h.posts.Get(ctx, id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	comments, err := h.posts.Comments(ctx, post.ID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	var authorPosts int64
	if post.AuthorID != nil {
		if authorPosts, err = h.posts.CountByAuthor(ctx, *post.AuthorID); err != nil {
			fail(c, h.log, err)
			return
		}
	}

	Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Title":       "Пост " + post.String(),
		"Post":        post,
		"Comments":    comments,
		"AuthorPosts": authorPosts,
		"CanEdit":     services.CanEditPost(middleware.CurrentUser(c), post),
		"Errors":      formErrors(nil),
	})
}

func (h *PostHandler) renderPostForm(c *gin.Context, form PostForm, verr *services.ValidationError, postID uint) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}

	title := "Новый пост"
	if postID != 0 {
		title = "Редактировать пост"
	}
	Render(c, http.StatusOK, "posts/create_post.html", gin.H{
		"Title":  title,
		"IsEdit": postID != 0,
		"PostID": postID,
		"Form":   form,
		"Groups": groups,
		"Errors": formErrors(verr),
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderPostForm(c, PostForm{}, nil, 0)
}

func (h *PostHandler) Create(c *gin.Context) {
	var form PostForm
	if verr := bindForm(c, &form); verr != nil {
		h.renderPostForm(c, form, verr, 0)
		return
	}

	user := middleware.CurrentUser(c)
	_, err := h.posts.Create(c.Request.Context(), user, services.PostInput{
		Text:  form.Text,
		Group: form.Group,
		Image: form.Image,
	})
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		h.renderPostForm(c, form, verr, 0)
		return
	}
	if err != nil {
		fail(c, h.log, err)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// editable resolves the post for the edit views. It writes the response itself
// and returns false when the request should stop.
func (h *PostHandler) editable(c *gin.Context) (uint, PostForm, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return 0, PostForm{}, false
	}

	post, err := h.posts.Editable(c.Request.Context(), middleware.CurrentUser(c), id)
	if errors.Is(err, services.ErrAuthorMismatch) {
		c.Redirect(http.StatusFound, detailURL(id))
		return 0, PostForm{}, false
	}
	if err != nil {
		fail(c, h.log, err)
		return 0, PostForm{}, false
	}

	form := PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = fmt.Sprint(*post.GroupID)
	}
	return post.ID, form, true
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	id, form, ok := h.editable(c)
	if !ok {
		return
	}
	h.renderPostForm(c, form, nil, id)
}

func (h *PostHandler) Update(c *gin.Context) {
	id, _, ok := h.editable(c)
	if !ok {
		return
	}

	var form PostForm
	if verr := bindForm(c, &form); verr != nil {
		h.renderPostForm(c, form, verr, id)
		return
	}

	_, err := h.posts.Update(c.Request.Context(), middleware.CurrentUser(c), id, services.PostInput{
		Text:  form.Text,
		Group: form.Group,
		Image: form.Image,
	})
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		h.renderPostForm(c, form, verr, id)
		return
	case errors.Is(err, services.ErrAuthorMismatch):
		c.Redirect(http.StatusFound, detailURL(id))
		return
	case err != nil:
		fail(c, h.log, err)
		return
	}

	c.Redirect(http.StatusFound, detailURL(id))
}

// AddComment lands back on the post, or 404s when there is no such post. Invalid
// comments are dropped without a message.
func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.posts.Get(ctx, id); err != nil {
		fail(c, h.log, err)
		return
	}

	if c.Request.Method == http.MethodPost {
		var form CommentForm
		if bindForm(c, &form) == nil {
			_, err := h.posts.AddComment(ctx, middleware.CurrentUser(c), id, form.Text)
			var verr *services.ValidationError
			switch {
			case errors.As(err, &verr):
				h.log.Debug("Comment dropped", zap.Uint("post_id", id), zap.Error(err))
			case err != nil:
				fail(c, h.log, err)
				return
			}
		}
	}

	c.Redirect(http.StatusFound, detailURL(id))
}
