package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/adapters/signal"
	"github.com/mediochat/mediochat/internal/app"
	"github.com/mediochat/mediochat/internal/config"
	"github.com/mediochat/mediochat/internal/core"
)

// Handlers bundles the collaborators the HTTP layer talks to. It never
// touches broker state directly; the two sides meet only through the
// websocket event protocol.
type Handlers struct {
	Calls    *app.CallService
	Users    core.UserStore
	Identity core.Identity
}

func SetupRouter(ctx context.Context, cfg *config.Config, h *Handlers, broker *app.Broker) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("MediochatSession", store))

	r.LoadHTMLGlob(cfg.TemplatesPath + "/*.html")
	r.Static("/static", cfg.StaticPath)

	log.Info().Str("module", "adapters.http").Str("templates", cfg.TemplatesPath).Msg("router setup")

	r.GET("/", h.home)
	r.GET("/about", h.about)

	r.POST("/join-call", h.joinCall)
	r.GET("/room/:code", h.room)
	r.POST("/end-call", h.endCall)

	r.GET("/dashboard", h.dashboard)
	r.POST("/create-call", h.createCall)
	r.GET("/start-call/:code", h.startCall)
	r.POST("/call-history", h.callHistory)
	r.POST("/delete-call", h.deleteCall)

	r.GET("/login", h.loginPage)
	r.POST("/login", h.login)
	r.GET("/signup", h.signupPage)
	r.GET("/logout", h.logout)
	r.GET("/account", h.account)

	ctl := signal.NewController(broker)
	ctl.ReadLimit = cfg.ReadLimit
	ctl.PingPeriod = cfg.PingPeriod
	r.GET("/ws/signal", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	return r
}
