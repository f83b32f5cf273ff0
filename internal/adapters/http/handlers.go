package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/web-changlu/liveroom/internal/app"
	"github.com/web-changlu/liveroom/internal/core"
	"github.com/web-changlu/liveroom/internal/domain"
)

type handlers struct {
	stores Stores
	// sdkAppID is the configured application id, used when a join request
	// does not carry its own.
	sdkAppID int
}

// respond writes the uniform result envelope. Operation-level failures travel
// inside the envelope, not as HTTP errors; only malformed requests get a 400.
func respond(c *gin.Context, res core.Result) {
	c.JSON(http.StatusOK, res)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *handlers) login(c *gin.Context) {
	var req app.LoginData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Identity.Login(req))
}

func (h *handlers) logout(c *gin.Context) {
	respond(c, h.stores.Identity.Logout())
}

func (h *handlers) updateUserInfo(c *gin.Context) {
	var req app.LoginData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Identity.UpdateInfo(req))
}

func (h *handlers) updatePermissions(c *gin.Context) {
	var req app.PermissionsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Identity.UpdatePermissions(req))
}

func (h *handlers) userState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"identity":    h.stores.Identity.Identity(),
		"permissions": h.stores.Identity.Permissions(),
		"isLoggedIn":  h.stores.Identity.IsLoggedIn(),
	})
}

func (h *handlers) startLive(c *gin.Context) {
	var req app.StartLiveData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Room.Start(req))
}

func (h *handlers) endLive(c *gin.Context) {
	respond(c, h.stores.Room.End())
}

func (h *handlers) joinLive(c *gin.Context) {
	var req domain.Viewer
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Room.Join(req))
}

func (h *handlers) leaveLive(c *gin.Context) {
	var req struct {
		UserID domain.UserID `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Room.Leave(req.UserID))
}

func (h *handlers) postMessage(c *gin.Context) {
	var req app.MessageData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg := h.stores.Room.PostMessage(req)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func (h *handlers) postGift(c *gin.Context) {
	var req app.GiftData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	gift := h.stores.Room.PostGift(req)
	c.JSON(http.StatusOK, gin.H{"success": true, "gift": gift})
}

func (h *handlers) like(c *gin.Context) {
	respond(c, h.stores.Room.Like())
}

func (h *handlers) share(c *gin.Context) {
	respond(c, h.stores.Room.Share())
}

func (h *handlers) updateSettings(c *gin.Context) {
	var req domain.RoomSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Room.UpdateSettings(req))
}

func (h *handlers) resetLive(c *gin.Context) {
	respond(c, h.stores.Room.Reset())
}

func (h *handlers) liveState(c *gin.Context) {
	c.JSON(http.StatusOK, h.stores.Room.Snapshot())
}

func (h *handlers) recentMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.stores.Room.RecentMessages()})
}

func (h *handlers) joinSession(c *gin.Context) {
	var req app.JoinOptions
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.SDKAppID == 0 {
		req.SDKAppID = h.sdkAppID
	}
	respond(c, h.stores.Session.Join(c.Request.Context(), req))
}

func (h *handlers) leaveSession(c *gin.Context) {
	respond(c, h.stores.Session.Leave())
}

func (h *handlers) toggleVideo(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Session.ToggleLocalVideo(req.Enabled))
}

func (h *handlers) toggleAudio(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Session.ToggleLocalAudio(req.Enabled))
}

func (h *handlers) toggleScreenShare(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Session.ToggleScreenShare(req.Enabled))
}

func (h *handlers) switchCamera(c *gin.Context) {
	respond(c, h.stores.Session.SwitchCamera())
}

func (h *handlers) switchMicrophone(c *gin.Context) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Session.SwitchMicrophone(req.DeviceID))
}

func (h *handlers) switchSpeaker(c *gin.Context) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Session.SwitchSpeaker(req.DeviceID))
}

func (h *handlers) startPreview(c *gin.Context) {
	var req struct {
		ViewID string `json:"viewId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, h.stores.Session.StartLocalPreview(req.ViewID))
}

func (h *handlers) stopPreview(c *gin.Context) {
	respond(c, h.stores.Session.StopLocalPreview())
}

func (h *handlers) destroySession(c *gin.Context) {
	respond(c, h.stores.Session.Destroy())
}

func (h *handlers) sessionState(c *gin.Context) {
	c.JSON(http.StatusOK, h.stores.Session.Snapshot())
}
