package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/services"
)

// sitemapPostLimit 避免 sitemap 过大
const sitemapPostLimit = 500

type SEOHandler struct {
	feeds   *services.FeedService
	posts   *services.PostService
	siteURL string
	log     *zap.Logger
}

func NewSEOHandler(feeds *services.FeedService, posts *services.PostService, siteURL string, log *zap.Logger) *SEOHandler {
	return &SEOHandler{
		feeds:   feeds,
		posts:   posts,
		siteURL: strings.TrimSuffix(siteURL, "/"),
		log:     log,
	}
}

// RobotsTxt keeps crawlers off the account and authoring pages.
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /auth/
Disallow: /create/
Disallow: /follow/
Disallow: /posts/*/edit/
Disallow: /posts/*/comment/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the public pages: home, about, groups, recent posts and their authors.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	today := time.Now().Format("2006-01-02")

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	add := func(path, lastmod, freq, priority string) {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + path,
			LastMod:    lastmod,
			ChangeFreq: freq,
			Priority:   priority,
		})
	}

	add("/", today, "hourly", "1.0")
	add("/about/author/", "", "monthly", "0.3")
	add("/about/tech/", "", "monthly", "0.3")

	groups, err := h.posts.Groups(ctx)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	for _, g := range groups {
		add("/group/"+g.Slug+"/", today, "daily", "0.8")
	}

	posts, err := h.feeds.Recent(ctx, sitemapPostLimit)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	authors := make(map[string]bool)
	for _, p := range posts {
		// 根据帖子新旧程度调整优先级
		priority, freq := "0.6", "weekly"
		if time.Since(p.Created) < 7*24*time.Hour {
			priority, freq = "0.8", "daily"
		}
		add(detailURL(p.ID), p.Created.Format("2006-01-02"), freq, priority)

		if p.Author != nil && !authors[p.Author.Username] {
			authors[p.Author.Username] = true
			add("/profile/"+p.Author.Username+"/", "", "daily", "0.5")
		}
	}

	c.XML(http.StatusOK, set)
}
