package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/middleware"
	"yatube/internal/services"
)

const followIndexURL = "/follow/"

type UserHandler struct {
	feeds   *services.FeedService
	follows *services.FollowService
	log     *zap.Logger
}

func NewUserHandler(feeds *services.FeedService, follows *services.FollowService, log *zap.Logger) *UserHandler {
	return &UserHandler{feeds: feeds, follows: follows, log: log}
}

// Profile - 用户主页 /profile/:username/
func (h *UserHandler) Profile(c *gin.Context) {
	viewer := middleware.CurrentUser(c)
	profile, err := h.feeds.Profile(c.Request.Context(), c.Param("username"), viewer, c.Query("page"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Title":     "Профайл пользователя " + profile.Author.FullName(),
		"Author":    profile.Author,
		"Following": profile.Following,
		"IsSelf":    viewer != nil && viewer.ID == profile.Author.ID,
		"Page":      profile.Page,
		"Posts":     profile.Posts,
	})
}

// FollowIndex lists posts by the authors the current user follows.
func (h *UserHandler) FollowIndex(c *gin.Context) {
	feed, err := h.feeds.Following(c.Request.Context(), middleware.CurrentUser(c), c.Query("page"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Title": "Избранные авторы",
		"Page":  feed.Page,
		"Posts": feed.Posts,
	})
}

func (h *UserHandler) Follow(c *gin.Context) {
	err := h.follows.Follow(c.Request.Context(), middleware.CurrentUser(c), c.Param("username"))
	if err != nil && !errors.Is(err, services.ErrSelfFollow) {
		fail(c, h.log, err)
		return
	}
	c.Redirect(http.StatusFound, followIndexURL)
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	if err := h.follows.Unfollow(c.Request.Context(), middleware.CurrentUser(c), c.Param("username")); err != nil {
		fail(c, h.log, err)
		return
	}
	c.Redirect(http.StatusFound, followIndexURL)
}
