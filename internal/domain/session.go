package domain

import "time"

// ConnectionState is the transport session lifecycle.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)

// Role selects the provider-side privilege level when entering a room.
type Role string

const (
	RoleAnchor   Role = "anchor"
	RoleAudience Role = "audience"
)

// Provider role codes: 20 broadcaster, 21 audience.
const (
	providerRoleAnchor   = 20
	providerRoleAudience = 21
)

// ProviderCode maps a role to the transport provider's numeric code.
// Anything that is not the anchor enters as audience.
func (r Role) ProviderCode() int {
	if r == RoleAnchor {
		return providerRoleAnchor
	}
	return providerRoleAudience
}

// LocalDevice tracks the state of local capture toggles and device selection.
type LocalDevice struct {
	VideoEnabled       bool   `json:"videoEnabled"`
	AudioEnabled       bool   `json:"audioEnabled"`
	ScreenShareEnabled bool   `json:"screenShareEnabled"`
	VideoView          string `json:"videoView"`
	FrontCamera        bool   `json:"frontCamera"`
	MicrophoneID       string `json:"microphoneId"`
	SpeakerID          string `json:"speakerId"`
}

// DefaultLocalDevice matches the state a fresh session starts from:
// capture on, front camera, no preview target, system default devices.
func DefaultLocalDevice() LocalDevice {
	return LocalDevice{
		VideoEnabled: true,
		AudioEnabled: true,
		FrontCamera:  true,
	}
}

// RemoteParticipant is a remote media stream tracked in session state,
// distinct from the Viewer set owned by room state.
type RemoteParticipant struct {
	UserID   UserID    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
	HasVideo bool      `json:"hasVideo"`
	HasAudio bool      `json:"hasAudio"`
}

// NetworkQuality is a last-write-wins snapshot; no smoothing is applied.
type NetworkQuality struct {
	Uplink   int `json:"uplink"`
	Downlink int `json:"downlink"`
}
