package app

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/web-changlu/liveroom/internal/core"
	"github.com/web-changlu/liveroom/internal/domain"
)

// DefaultJoinTimeout bounds the provider enter-room call when no explicit
// budget is configured.
const DefaultJoinTimeout = 10 * time.Second

var (
	// ErrJoinTimeout reports that the provider did not answer an enter-room
	// call within the configured budget.
	ErrJoinTimeout = errors.New("join room timed out")
	// ErrBadRoomID reports a room id that cannot be carried on the numeric
	// provider parameter.
	ErrBadRoomID = errors.New("room id is not numeric")
)

// JoinOptions is the payload for SessionCoordinator.Join.
type JoinOptions struct {
	RoomID   string      `json:"roomId"`
	UserID   string      `json:"userId"`
	UserSig  string      `json:"userSig"`
	SDKAppID int         `json:"sdkAppId"`
	Role     domain.Role `json:"role"`
}

// SessionView is a read-only snapshot of session state.
type SessionView struct {
	ConnectionState    domain.ConnectionState     `json:"connectionState"`
	Confirmed          bool                       `json:"confirmed"`
	RoomID             string                     `json:"roomId"`
	LocalDevice        domain.LocalDevice         `json:"localDevice"`
	RemoteParticipants []domain.RemoteParticipant `json:"remoteParticipants"`
	LastRemoteUserID   domain.UserID              `json:"lastRemoteUserId"`
	NetworkQuality     domain.NetworkQuality      `json:"networkQuality"`
}

// SessionCoordinator owns the real-time connection lifecycle: the transport
// handle, local device toggles, the remote participant set and the network
// quality signal. One mutex serializes every session-mutating operation, so
// overlapping calls (two concurrent Joins, Join racing Destroy) line up
// instead of issuing overlapping provider calls.
//
// The connected state is optimistic: it is set right after the provider call
// returns and confirmed later by the room-entered event. Confirmed is the
// flag to trust when the two disagree.
type SessionCoordinator struct {
	mu      sync.Mutex
	factory core.ProviderFactory
	// onProviderCreated is invoked exactly once per handle, before any other
	// operation can observe it. The normalizer hooks in here.
	onProviderCreated func(core.TransportProvider)

	provider    core.TransportProvider
	state       domain.ConnectionState
	confirmed   bool
	roomID      string
	device      domain.LocalDevice
	remotes     map[domain.UserID]domain.RemoteParticipant
	lastRemote  domain.UserID
	quality     domain.NetworkQuality
	joinTimeout time.Duration
}

func NewSessionCoordinator(factory core.ProviderFactory, joinTimeout time.Duration) *SessionCoordinator {
	if joinTimeout <= 0 {
		joinTimeout = DefaultJoinTimeout
	}
	return &SessionCoordinator{
		factory:     factory,
		state:       domain.StateDisconnected,
		device:      domain.DefaultLocalDevice(),
		remotes:     make(map[domain.UserID]domain.RemoteParticipant),
		joinTimeout: joinTimeout,
	}
}

// OnProviderCreated registers the hook run when the transport handle is
// lazily created. Must be set before the first session operation.
func (s *SessionCoordinator) OnProviderCreated(fn func(core.TransportProvider)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProviderCreated = fn
}

// ensureProvider lazily creates the transport handle. Idempotent: a second
// call with a live handle is a no-op. Caller must hold s.mu.
func (s *SessionCoordinator) ensureProvider() (core.TransportProvider, error) {
	if s.provider != nil {
		return s.provider, nil
	}
	p, err := s.factory.CreateInstance()
	if err != nil {
		return nil, err
	}
	s.provider = p
	if s.onProviderCreated != nil {
		s.onProviderCreated(p)
	}
	log.Info().Str("module", "app.session").Msg("transport handle created")
	return p, nil
}

// Init creates the transport handle up front. Optional: every operation that
// needs the handle creates it on demand anyway.
func (s *SessionCoordinator) Init() core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ensureProvider(); err != nil {
		return core.Fail(err)
	}
	return core.OK()
}

// Join enters the transport room. The provider call is bounded by the join
// timeout; on any provider failure the connection state reverts to
// disconnected and the error lands in the result envelope.
func (s *SessionCoordinator) Join(ctx context.Context, opts JoinOptions) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.StateConnecting
	s.confirmed = false
	s.roomID = opts.RoomID

	p, err := s.ensureProvider()
	if err != nil {
		s.state = domain.StateDisconnected
		return core.Fail(err)
	}

	numericID, err := strconv.Atoi(opts.RoomID)
	if err != nil {
		s.state = domain.StateDisconnected
		return core.Fail(ErrBadRoomID)
	}
	role := opts.Role
	if role == "" {
		role = domain.RoleAnchor
	}
	params := core.EnterRoomParams{
		SDKAppID: opts.SDKAppID,
		UserID:   opts.UserID,
		UserSig:  opts.UserSig,
		RoomID:   numericID,
		Role:     role.ProviderCode(),
	}

	joinCtx, cancel := context.WithTimeout(ctx, s.joinTimeout)
	defer cancel()
	if err := p.EnterRoom(joinCtx, params); err != nil {
		s.state = domain.StateDisconnected
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrJoinTimeout
		}
		log.Error().Err(err).Str("module", "app.session").Str("room", opts.RoomID).Msg("enter room failed")
		return core.Fail(err)
	}

	// Optimistic: confirmed flips when the room-entered event arrives.
	s.state = domain.StateConnected
	log.Info().Str("module", "app.session").Str("room", opts.RoomID).Int("role", params.Role).Msg("joined room")
	return core.OK()
}

// Leave exits the transport room. The session always ends disconnected with
// the remote set and room id cleared, even when the provider call fails; the
// failure is still surfaced in the envelope.
func (s *SessionCoordinator) Leave() core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveLocked()
}

func (s *SessionCoordinator) leaveLocked() core.Result {
	var exitErr error
	if s.provider != nil && s.state == domain.StateConnected {
		exitErr = s.provider.ExitRoom()
	}

	s.state = domain.StateDisconnected
	s.confirmed = false
	s.remotes = make(map[domain.UserID]domain.RemoteParticipant)
	s.roomID = ""

	if exitErr != nil {
		log.Error().Err(exitErr).Str("module", "app.session").Msg("exit room failed, state reset anyway")
		return core.Fail(exitErr)
	}
	log.Info().Str("module", "app.session").Msg("left room")
	return core.OK()
}

// StartLocalPreview binds local capture to a render target.
func (s *SessionCoordinator) StartLocalPreview(viewID string) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.ensureProvider()
	if err != nil {
		return core.Fail(err)
	}
	if err := p.StartLocalPreview(true, viewID); err != nil {
		return core.Fail(err)
	}
	s.device.VideoView = viewID
	return core.OK()
}

// StopLocalPreview releases the render target. No handle, nothing to stop.
func (s *SessionCoordinator) StopLocalPreview() core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.provider != nil {
		if err := s.provider.StopLocalPreview(); err != nil {
			return core.Fail(err)
		}
	}
	s.device.VideoView = ""
	return core.OK()
}

// ToggleLocalVideo enables or disables local video. The provider mute
// primitive takes the inverted boolean.
func (s *SessionCoordinator) ToggleLocalVideo(enabled bool) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.ensureProvider()
	if err != nil {
		return core.Fail(err)
	}
	if err := p.MuteLocalVideo(!enabled); err != nil {
		return core.Fail(err)
	}
	s.device.VideoEnabled = enabled
	return core.OK()
}

// ToggleLocalAudio enables or disables local audio, same contract as video.
func (s *SessionCoordinator) ToggleLocalAudio(enabled bool) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.ensureProvider()
	if err != nil {
		return core.Fail(err)
	}
	if err := p.MuteLocalAudio(!enabled); err != nil {
		return core.Fail(err)
	}
	s.device.AudioEnabled = enabled
	return core.OK()
}

// ToggleScreenShare tracks the screen-share flag. The provider capture call
// is not wired yet; this mutates state only and reports success.
// TODO: call provider screen capture start/stop once the capture surface is
// exposed by the transport contract.
func (s *SessionCoordinator) ToggleScreenShare(enabled bool) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device.ScreenShareEnabled = enabled
	return core.OK()
}

// SwitchCamera flips between front and back camera and informs the provider.
func (s *SessionCoordinator) SwitchCamera() core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.ensureProvider()
	if err != nil {
		return core.Fail(err)
	}
	front := !s.device.FrontCamera
	if err := p.SwitchCamera(front); err != nil {
		return core.Fail(err)
	}
	s.device.FrontCamera = front
	return core.OK()
}

// SwitchMicrophone records the selected microphone. Provider wiring is
// deferred; bookkeeping only.
func (s *SessionCoordinator) SwitchMicrophone(id string) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device.MicrophoneID = id
	return core.OK()
}

// SwitchSpeaker records the selected speaker. Provider wiring is deferred;
// bookkeeping only.
func (s *SessionCoordinator) SwitchSpeaker(id string) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device.SpeakerID = id
	return core.OK()
}

// AddRemoteParticipant upserts a remote participant keyed by user id.
func (s *SessionCoordinator) AddRemoteParticipant(p domain.RemoteParticipant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	s.remotes[p.UserID] = p
}

// RemoveRemoteParticipant drops a remote participant; absent id is a no-op.
func (s *SessionCoordinator) RemoveRemoteParticipant(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.remotes, id)
}

// UpdateNetworkQuality replaces the quality snapshot wholesale.
func (s *SessionCoordinator) UpdateNetworkQuality(q domain.NetworkQuality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quality = q
}

// Destroy is the single teardown entry point and the only place the transport
// handle is nulled. If connected it leaves first, best-effort, then resets
// every session field to its initial value.
func (s *SessionCoordinator) Destroy() core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateConnected {
		if res := s.leaveLocked(); !res.Success {
			log.Warn().Str("module", "app.session").Str("error", res.Error).Msg("leave during destroy failed")
		}
	}
	if s.provider != nil {
		s.provider.Close()
		s.provider = nil
	}

	s.state = domain.StateDisconnected
	s.confirmed = false
	s.roomID = ""
	s.device = domain.DefaultLocalDevice()
	s.remotes = make(map[domain.UserID]domain.RemoteParticipant)
	s.lastRemote = ""
	s.quality = domain.NetworkQuality{}

	log.Info().Str("module", "app.session").Msg("session destroyed")
	return core.OK()
}

// confirmEntered reconciles the optimistic connected flag with the provider's
// room-entered event. A negative result code means the join actually failed.
func (s *SessionCoordinator) confirmEntered(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.state = domain.StateDisconnected
		s.confirmed = false
		return
	}
	if s.state != domain.StateDisconnected {
		s.state = domain.StateConnected
		s.confirmed = true
	}
}

// confirmExited reconciles state with the provider's room-exited event.
func (s *SessionCoordinator) confirmExited() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StateDisconnected
	s.confirmed = false
	s.remotes = make(map[domain.UserID]domain.RemoteParticipant)
}

// recordRemoteUser notes the most recently seen remote participant id.
func (s *SessionCoordinator) recordRemoteUser(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRemote = id
}

func (s *SessionCoordinator) ConnectionState() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SessionCoordinator) IsConnected() bool {
	return s.ConnectionState() == domain.StateConnected
}

// Snapshot returns a read-only view of the session, remote participants
// ordered by arrival.
func (s *SessionCoordinator) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	remotes := make([]domain.RemoteParticipant, 0, len(s.remotes))
	for _, p := range s.remotes {
		remotes = append(remotes, p)
	}
	sort.Slice(remotes, func(i, j int) bool {
		return remotes[i].JoinedAt.Before(remotes[j].JoinedAt)
	})
	return SessionView{
		ConnectionState:    s.state,
		Confirmed:          s.confirmed,
		RoomID:             s.roomID,
		LocalDevice:        s.device,
		RemoteParticipants: remotes,
		LastRemoteUserID:   s.lastRemote,
		NetworkQuality:     s.quality,
	}
}
