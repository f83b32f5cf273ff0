package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/web-changlu/liveroom/internal/core"
	"github.com/web-changlu/liveroom/internal/domain"
)

// LoginData is the payload accepted by Login. Zero fields fall back to
// generated/default values; nothing is rejected.
type LoginData struct {
	UserID      domain.UserID       `json:"userId"`
	UserName    string              `json:"userName"`
	UserAvatar  string              `json:"userAvatar"`
	UserSig     string              `json:"userSig"`
	SDKAppID    int                 `json:"sdkAppId"`
	Permissions *domain.Permissions `json:"permissions"`
}

// IdentityStore holds the local user's identity and permission flags.
// Stateless relative to the session: the coordinator reads credentials
// from it, nothing here reacts to session events.
type IdentityStore struct {
	mu          sync.RWMutex
	identity    domain.UserIdentity
	permissions domain.Permissions
	loggedIn    bool
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{permissions: domain.DefaultPermissions()}
}

// Login fills identity from data, generating a user id when absent.
// Invariant afterwards: UserID is non-empty iff IsLoggedIn.
func (s *IdentityStore) Login(data LoginData) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := data.UserID
	if id == "" {
		id = domain.GenerateUserID()
	}
	name := data.UserName
	if name == "" {
		name = domain.DefaultUserName(id)
	}
	s.identity = domain.UserIdentity{
		UserID:     id,
		UserName:   name,
		UserAvatar: data.UserAvatar,
		UserSig:    data.UserSig,
		SDKAppID:   data.SDKAppID,
	}
	if data.Permissions != nil {
		s.permissions = *data.Permissions
	}
	s.loggedIn = true

	log.Info().Str("module", "app.identity").Str("user", string(id)).Msg("logged in")
	res := core.OK()
	res.UserID = string(id)
	return res
}

// Logout returns identity and permissions to their defaults.
func (s *IdentityStore) Logout() core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = domain.UserIdentity{}
	s.permissions = domain.DefaultPermissions()
	s.loggedIn = false

	log.Info().Str("module", "app.identity").Msg("logged out")
	return core.OK()
}

// UpdateInfo merges non-zero fields into the stored identity.
func (s *IdentityStore) UpdateInfo(data LoginData) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data.UserID != "" {
		s.identity.UserID = data.UserID
	}
	if data.UserName != "" {
		s.identity.UserName = data.UserName
	}
	if data.UserAvatar != "" {
		s.identity.UserAvatar = data.UserAvatar
	}
	if data.UserSig != "" {
		s.identity.UserSig = data.UserSig
	}
	if data.SDKAppID != 0 {
		s.identity.SDKAppID = data.SDKAppID
	}
	return core.OK()
}

// PermissionsPatch is a partial permissions update; nil fields keep their
// current values.
type PermissionsPatch struct {
	CanLive     *bool `json:"canLive"`
	CanComment  *bool `json:"canComment"`
	CanSendGift *bool `json:"canSendGift"`
}

// UpdatePermissions merges the patch into the permission flags.
func (s *IdentityStore) UpdatePermissions(p PermissionsPatch) core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CanLive != nil {
		s.permissions.CanLive = *p.CanLive
	}
	if p.CanComment != nil {
		s.permissions.CanComment = *p.CanComment
	}
	if p.CanSendGift != nil {
		s.permissions.CanSendGift = *p.CanSendGift
	}
	return core.OK()
}

func (s *IdentityStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Identity returns a copy of the current identity.
func (s *IdentityStore) Identity() domain.UserIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *IdentityStore) Permissions() domain.Permissions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions
}
