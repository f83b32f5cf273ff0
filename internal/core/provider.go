package core

import "context"

// EnterRoomParams is the parameter block handed to the transport provider.
// Role carries the provider's numeric codes (20 broadcaster, 21 audience).
type EnterRoomParams struct {
	SDKAppID int    `json:"sdkAppId"`
	UserID   string `json:"userId"`
	UserSig  string `json:"userSig"`
	RoomID   int    `json:"roomId"`
	Role     int    `json:"role"`
}

// TransportProvider abstracts the real-time audio/video engine.
// Owned exclusively by the session coordinator; never shared by value.
type TransportProvider interface {
	// EnterRoom asks the provider to join. The call is fire-and-forget from
	// the coordinator's perspective; confirmation arrives as an EventEnterRoom.
	EnterRoom(ctx context.Context, params EnterRoomParams) error
	// ExitRoom leaves the current room.
	ExitRoom() error
	// StartLocalPreview binds local capture to a render target.
	StartLocalPreview(enable bool, viewID string) error
	StopLocalPreview() error
	// MuteLocalVideo pauses (true) or resumes (false) local video publishing.
	MuteLocalVideo(mute bool) error
	MuteLocalAudio(mute bool) error
	// SwitchCamera selects the front (true) or back (false) camera.
	SwitchCamera(front bool) error
	// On registers a handler for an event kind. Handlers for the same kind
	// overwrite each other; registration happens once per provider instance.
	On(kind EventKind, h EventHandler)
	// Close releases all underlying media resources.
	Close()
}

// ProviderFactory creates the transport handle. The coordinator calls it
// lazily, at most once per session instance until Destroy.
type ProviderFactory interface {
	CreateInstance() (TransportProvider, error)
}
