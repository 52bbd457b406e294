package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/services"
)

// IndexCachePrefix namespaces home page snapshots in the page cache.
const IndexCachePrefix = "index_page"

const sessionName = "yatube_session"

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  cache.PageCache
	Images services.ImageStore
	Log    *zap.Logger
}

// New builds the gin engine with every route registered.
func New(d Deps) *gin.Engine {
	cfg := d.Config
	log := d.Log

	handlers.RegisterValidators()

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path))
		handlers.ServerError(c)
		c.Abort()
	}))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.HTMLRender = loadTemplates(cfg.Server.TemplatesDir, d.Images)

	// Static Assets
	r.Static("/static", cfg.Server.StaticDir)
	if local, ok := d.Images.(*services.LocalImageStore); ok {
		r.Static(strings.TrimSuffix(cfg.Media.URL, "/"), local.Root())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", handlers.NewHealthHandler(d.DB, log).Check)

	registerRoutes(r, d)
	return r
}

func registerRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	log := d.Log

	// Services
	users := services.NewUserService(d.DB, log)
	feeds := services.NewFeedService(d.DB, cfg.Feed.PageSize)
	posts := services.NewPostService(d.DB, d.Images, cfg.Media.MaxUploadSize, log)
	follows := services.NewFollowService(d.DB, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(users, log)
	home := cache.NewSnapshots(d.Cache, IndexCachePrefix, cfg.Cache.IndexTTL, log)
	postHandler := handlers.NewPostHandler(feeds, posts, home, handlers.NewFragments(r.HTMLRender), log)
	userHandler := handlers.NewUserHandler(feeds, follows, log)
	seoHandler := handlers.NewSEOHandler(feeds, posts, cfg.Server.SiteURL, log)

	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)

	loadUser := middleware.LoadUser(users, log)

	app := r.Group("/")
	app.Use(loadUser)
	if cfg.Server.CSRFEnabled {
		app.Use(middleware.CSRF(cfg.Server.SessionSecret, handlers.CSRFFailure))
	}

	// 公共路由 (Public Routes)
	app.GET("/", postHandler.Index)                     // 首页, 帖子列表缓存
	app.GET("/group/:slug/", postHandler.GroupPosts)    // 分组
	app.GET("/profile/:username/", userHandler.Profile) // 用户主页
	app.GET("/posts/:id/", postHandler.Detail)          // 帖子详情

	app.GET("/about/author/", handlers.AboutAuthor)
	app.GET("/about/tech/", handlers.AboutTech)

	auth := app.Group("/auth")
	{
		auth.GET("/signup/", authHandler.ShowSignup)
		auth.POST("/signup/", authHandler.Signup)
		auth.GET("/login/", authHandler.ShowLogin)
		auth.POST("/login/", authHandler.Login)
		auth.GET("/logout/", authHandler.Logout)
	}

	// 受保护路由 (Protected Routes)
	authorized := app.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create/", postHandler.ShowCreate)
		authorized.POST("/create/", postHandler.Create)
		authorized.GET("/posts/:id/edit/", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit/", postHandler.Update)
		authorized.GET("/posts/:id/comment/", postHandler.AddComment)
		authorized.POST("/posts/:id/comment/", postHandler.AddComment)

		authorized.GET("/follow/", userHandler.FollowIndex)
		authorized.GET("/profile/:username/follow/", userHandler.Follow)
		authorized.GET("/profile/:username/unfollow/", userHandler.Unfollow)
	}

	r.NoRoute(loadUser, handlers.NotFound)
}
