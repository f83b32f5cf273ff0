package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/web-changlu/liveroom/internal/adapters/signal"
	"github.com/web-changlu/liveroom/internal/app"
	"github.com/web-changlu/liveroom/internal/config"
	"github.com/web-changlu/liveroom/internal/core"
)

type stubProvider struct {
	mu     sync.Mutex
	params []core.EnterRoomParams
}

func (s *stubProvider) EnterRoom(ctx context.Context, p core.EnterRoomParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = append(s.params, p)
	return nil
}

func (s *stubProvider) ExitRoom() error                          { return nil }
func (s *stubProvider) StartLocalPreview(bool, string) error     { return nil }
func (s *stubProvider) StopLocalPreview() error                  { return nil }
func (s *stubProvider) MuteLocalVideo(bool) error                { return nil }
func (s *stubProvider) MuteLocalAudio(bool) error                { return nil }
func (s *stubProvider) SwitchCamera(bool) error                  { return nil }
func (s *stubProvider) On(core.EventKind, core.EventHandler)     {}
func (s *stubProvider) Close()                                   {}

type stubFactory struct {
	p *stubProvider
}

func (f stubFactory) CreateInstance() (core.TransportProvider, error) { return f.p, nil }

func joinServer(t *testing.T, sdkAppID int) (*gin.Engine, *stubProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	provider := &stubProvider{}
	sess := app.NewSessionCoordinator(stubFactory{p: provider}, time.Second)
	stores := Stores{
		Identity: app.NewIdentityStore(),
		Room:     app.NewRoomStore(),
		Session:  sess,
	}
	cfg := &config.Config{Mode: "test", Secret: "test-secret", SDKAppID: sdkAppID}
	return SetupRouter(context.Background(), cfg, stores, signal.NewHub()), provider
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJoinSessionDefaultsSDKAppIDFromConfig(t *testing.T) {
	r, provider := joinServer(t, 42)

	w := postJSON(t, r, "/api/session/join",
		`{"roomId":"123","userId":"u1","userSig":"sig","role":"audience"}`)
	require.Equal(t, 200, w.Code)

	var res core.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Success)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Len(t, provider.params, 1)
	require.Equal(t, 42, provider.params[0].SDKAppID)
	require.Equal(t, 21, provider.params[0].Role)
}

func TestJoinSessionExplicitSDKAppIDWins(t *testing.T) {
	r, provider := joinServer(t, 42)

	w := postJSON(t, r, "/api/session/join",
		`{"roomId":"123","userId":"u1","userSig":"sig","sdkAppId":7,"role":"audience"}`)
	require.Equal(t, 200, w.Code)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Len(t, provider.params, 1)
	require.Equal(t, 7, provider.params[0].SDKAppID)
}
