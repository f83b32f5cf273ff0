package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/web-changlu/liveroom/internal/adapters/signal"
	"github.com/web-changlu/liveroom/internal/app"
	"github.com/web-changlu/liveroom/internal/config"
)

// Stores bundles the state surfaces the HTTP adapter exposes.
type Stores struct {
	Identity *app.IdentityStore
	Room     *app.RoomStore
	Session  *app.SessionCoordinator
}

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, stores Stores, hub *signal.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("LiveroomSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Msg("router setup")

	h := &handlers{stores: stores, sdkAppID: cfg.SDKAppID}
	api := r.Group("/api")

	user := api.Group("/user")
	user.POST("/login", h.login)
	user.POST("/logout", h.logout)
	user.PUT("/info", h.updateUserInfo)
	user.PUT("/permissions", h.updatePermissions)
	user.GET("", h.userState)

	live := api.Group("/live")
	live.POST("/start", h.startLive)
	live.POST("/end", h.endLive)
	live.POST("/join", h.joinLive)
	live.POST("/leave", h.leaveLive)
	live.POST("/message", h.postMessage)
	live.POST("/gift", h.postGift)
	live.POST("/like", h.like)
	live.POST("/share", h.share)
	live.PUT("/settings", h.updateSettings)
	live.POST("/reset", h.resetLive)
	live.GET("", h.liveState)
	live.GET("/messages/recent", h.recentMessages)

	sess := api.Group("/session")
	sess.POST("/join", h.joinSession)
	sess.POST("/leave", h.leaveSession)
	sess.POST("/video", h.toggleVideo)
	sess.POST("/audio", h.toggleAudio)
	sess.POST("/screen", h.toggleScreenShare)
	sess.POST("/camera/switch", h.switchCamera)
	sess.POST("/microphone", h.switchMicrophone)
	sess.POST("/speaker", h.switchSpeaker)
	sess.POST("/preview/start", h.startPreview)
	sess.POST("/preview/stop", h.stopPreview)
	sess.POST("/destroy", h.destroySession)
	sess.GET("", h.sessionState)

	api.GET("/ws/notifications", func(c *gin.Context) {
		hub.HandleWS(ctx, c)
	})

	return r
}
