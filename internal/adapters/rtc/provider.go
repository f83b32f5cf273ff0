// Package rtc implements the transport provider contract over a pion
// PeerConnection. Capture-side primitives (preview, camera switch) have no
// device pipeline in this process; they keep the handle's bookkeeping and
// emit the same events the native engines do.
package rtc

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/web-changlu/liveroom/internal/core"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// Factory creates provider handles. Implements core.ProviderFactory.
type Factory struct {
	Config webrtc.Configuration
}

func NewFactory() *Factory {
	return &Factory{Config: DefaultWebRTCConfig()}
}

func (f *Factory) CreateInstance() (core.TransportProvider, error) {
	return &Provider{cfg: f.Config, handlers: make(map[core.EventKind]core.EventHandler)}, nil
}

// Provider is one transport handle. The peer connection is created on
// EnterRoom and torn down on ExitRoom/Close.
type Provider struct {
	cfg webrtc.Configuration

	mu       sync.Mutex
	pc       *webrtc.PeerConnection
	handlers map[core.EventKind]core.EventHandler

	videoMuted bool
	audioMuted bool
	front      bool
	preview    string
}

func (p *Provider) On(kind core.EventKind, h core.EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[kind] = h
}

// emit dispatches on a fresh goroutine, the way SDK callbacks arrive.
// Synchronous dispatch would re-enter the coordinator while it still holds
// its operation lock.
func (p *Provider) emit(e core.Event) {
	p.mu.Lock()
	h := p.handlers[e.Kind]
	p.mu.Unlock()
	if h != nil {
		go h(e)
	}
}

// EnterRoom sets up the peer connection and completes ICE gathering within
// the caller's deadline. The room-entered event carries the elapsed time in
// ms, mirroring the native engines' enter-room callback.
func (p *Provider) EnterRoom(ctx context.Context, params core.EnterRoomParams) error {
	p.mu.Lock()
	if p.pc != nil {
		p.mu.Unlock()
		log.Warn().Str("module", "rtc").Int("room", params.RoomID).Msg("enter room with live pc, reusing")
		return nil
	}
	p.mu.Unlock()

	started := time.Now()
	pc, err := webrtc.NewPeerConnection(p.cfg)
	if err != nil {
		return err
	}

	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("ice_state", s.String()).Msg("ICE state")
		if s == webrtc.ICEConnectionStateDisconnected || s == webrtc.ICEConnectionStateFailed {
			p.emit(core.Event{Kind: core.EventWarning, Code: int(s), Message: "ice " + s.String()})
		}
	})
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("peer_state", s.String()).Msg("peer state")
		if s == webrtc.PeerConnectionStateFailed {
			p.emit(core.Event{Kind: core.EventExitRoom, Code: 2, Message: "transport failed"})
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		_ = pc.Close()
		return err
	}
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		_ = pc.Close()
		return err
	}
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		_ = pc.Close()
		return ctx.Err()
	}

	p.mu.Lock()
	p.pc = pc
	p.mu.Unlock()

	elapsed := int(time.Since(started).Milliseconds())
	log.Info().Str("module", "rtc").Int("room", params.RoomID).Int("role", params.Role).Int("elapsed_ms", elapsed).Msg("entered room")
	p.emit(core.Event{Kind: core.EventEnterRoom, Code: elapsed})
	return nil
}

// ExitRoom closes the peer connection and reports a self-initiated exit.
func (p *Provider) ExitRoom() error {
	p.mu.Lock()
	pc := p.pc
	p.pc = nil
	p.mu.Unlock()

	if pc != nil {
		if err := pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "rtc").Msg("close pc")
			return err
		}
	}
	p.emit(core.Event{Kind: core.EventExitRoom, Code: 0})
	return nil
}

func (p *Provider) StartLocalPreview(enable bool, viewID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enable {
		p.preview = viewID
	} else {
		p.preview = ""
	}
	log.Debug().Str("module", "rtc").Bool("enable", enable).Str("view", viewID).Msg("local preview")
	return nil
}

func (p *Provider) StopLocalPreview() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preview = ""
	return nil
}

func (p *Provider) MuteLocalVideo(mute bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.videoMuted = mute
	log.Debug().Str("module", "rtc").Bool("mute", mute).Msg("mute local video")
	return nil
}

func (p *Provider) MuteLocalAudio(mute bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audioMuted = mute
	log.Debug().Str("module", "rtc").Bool("mute", mute).Msg("mute local audio")
	return nil
}

func (p *Provider) SwitchCamera(front bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.front = front
	log.Debug().Str("module", "rtc").Bool("front", front).Msg("switch camera")
	return nil
}

func (p *Provider) Close() {
	p.mu.Lock()
	pc := p.pc
	p.pc = nil
	p.mu.Unlock()

	if pc != nil {
		if err := pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "rtc").Msg("close error")
		} else {
			log.Info().Str("module", "rtc").Msg("closed")
		}
	}
}
