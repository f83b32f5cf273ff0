// Package domain contains entity without logic, just meta-data
package domain

import (
	"fmt"
	"math/rand/v2"
)

type UserID string

// Permissions are coarse product-level flags, not transport roles.
type Permissions struct {
	CanLive     bool `json:"canLive"`
	CanComment  bool `json:"canComment"`
	CanSendGift bool `json:"canSendGift"`
}

// DefaultPermissions matches the state a fresh (or logged-out) user holds.
func DefaultPermissions() Permissions {
	return Permissions{CanLive: false, CanComment: true, CanSendGift: true}
}

// UserIdentity is the local user's identity plus the credential material
// the session coordinator needs to enter a transport room.
type UserIdentity struct {
	UserID     UserID `json:"userId"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar"`
	UserSig    string `json:"userSig"`
	SDKAppID   int    `json:"sdkAppId"`
}

// GenerateUserID produces a fallback id for logins without one.
func GenerateUserID() UserID {
	return UserID(fmt.Sprintf("user_%d", rand.IntN(100000)))
}

// DefaultUserName derives a display name from a generated id ("user_123" -> "user123").
func DefaultUserName(id UserID) string {
	s := string(id)
	if len(s) > 5 {
		return "user" + s[5:]
	}
	return s
}
