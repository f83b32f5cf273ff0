package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/web-changlu/liveroom/internal/core"
	"github.com/web-changlu/liveroom/internal/domain"
)

const recentMessageCount = 10

// StartLiveData is the payload for RoomStore.Start.
type StartLiveData struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CoverImage  string        `json:"coverImage"`
	UserID      domain.UserID `json:"userId"`
	UserName    string        `json:"userName"`
	UserAvatar  string        `json:"userAvatar"`
}

// MessageData is the payload for RoomStore.PostMessage.
type MessageData struct {
	UserID     domain.UserID `json:"userId"`
	UserName   string        `json:"userName"`
	UserAvatar string        `json:"userAvatar"`
	Content    string        `json:"content"`
	Type       string        `json:"type"`
}

// GiftData is the payload for RoomStore.PostGift.
type GiftData struct {
	UserID     domain.UserID `json:"userId"`
	UserName   string        `json:"userName"`
	UserAvatar string        `json:"userAvatar"`
	GiftID     string        `json:"giftId"`
	GiftName   string        `json:"giftName"`
	GiftImage  string        `json:"giftImage"`
	GiftValue  int           `json:"giftValue"`
	Count      int           `json:"count"`
}

// RoomView is a read-only snapshot of the full room state.
type RoomView struct {
	Info     domain.RoomInfo     `json:"info"`
	Anchor   domain.Anchor       `json:"anchor"`
	Stats    domain.RoomStats    `json:"stats"`
	Settings domain.RoomSettings `json:"settings"`
	Viewers  []domain.Viewer     `json:"viewers"`
}

// RoomStore owns the live-room lifecycle, viewer set, counters and the
// append-only message/gift logs. All mutations run under one mutex, so every
// operation observes a fully applied previous one.
type RoomStore struct {
	mu       sync.RWMutex
	info     domain.RoomInfo
	anchor   domain.Anchor
	viewers  map[domain.UserID]domain.Viewer
	stats    domain.RoomStats
	messages []domain.Message
	gifts    []domain.Gift
	settings domain.RoomSettings
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		info:     domain.RoomInfo{Status: domain.StatusIdle},
		viewers:  make(map[domain.UserID]domain.Viewer),
		settings: domain.DefaultRoomSettings(),
	}
}

// SetInfo merges non-zero fields into the room info. No validation.
func (r *RoomStore) SetInfo(info domain.RoomInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mergeInfo(info)
}

func (r *RoomStore) mergeInfo(info domain.RoomInfo) {
	if info.ID != "" {
		r.info.ID = info.ID
	}
	if info.Title != "" {
		r.info.Title = info.Title
	}
	if info.Description != "" {
		r.info.Description = info.Description
	}
	if info.CoverImage != "" {
		r.info.CoverImage = info.CoverImage
	}
}

// updateStatus records the transition timestamps: StartTime exactly once on
// entering live, EndTime exactly once on entering ended.
func (r *RoomStore) updateStatus(status domain.RoomStatus) {
	r.info.Status = status
	switch status {
	case domain.StatusLive:
		if r.info.StartTime == nil {
			now := time.Now()
			r.info.StartTime = &now
		}
	case domain.StatusEnded:
		if r.info.EndTime == nil {
			now := time.Now()
			r.info.EndTime = &now
		}
	}
}

// Start initializes room metadata and the anchor identity, then walks the
// room through preparing into live. Calling it while not idle re-initializes
// metadata and overwrites the room id; that matches observed product behavior
// and is only logged, not rejected.
func (r *RoomStore) Start(data StartLiveData) core.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.info.Status != domain.StatusIdle {
		log.Warn().Str("module", "app.room").
			Str("status", string(r.info.Status)).
			Msg("start while not idle, overwriting room")
	}

	r.mergeInfo(domain.RoomInfo{
		ID:          domain.RoomID(fmt.Sprintf("live_%s%d", data.UserID, time.Now().UnixMilli())),
		Title:       data.Title,
		Description: data.Description,
		CoverImage:  data.CoverImage,
	})
	name := data.UserName
	if name == "" {
		name = "anchor"
	}
	r.anchor = domain.Anchor{ID: data.UserID, Name: name, Avatar: data.UserAvatar}

	r.updateStatus(domain.StatusPreparing)
	r.updateStatus(domain.StatusLive)

	log.Info().Str("module", "app.room").Str("live_id", string(r.info.ID)).Msg("live started")
	res := core.OK()
	res.LiveID = string(r.info.ID)
	return res
}

// End moves the room into its terminal ended state. A second call is a no-op
// success; EndTime stays at its first value.
func (r *RoomStore) End() core.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.info.Status != domain.StatusEnded {
		r.updateStatus(domain.StatusEnded)
		log.Info().Str("module", "app.room").Str("live_id", string(r.info.ID)).Msg("live ended")
	}
	return core.OK()
}

// Join adds a viewer to the set and recomputes the viewer count.
func (r *RoomStore) Join(v domain.Viewer) core.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.Name == "" {
		v.Name = "viewer"
	}
	if v.JoinTime.IsZero() {
		v.JoinTime = time.Now()
	}
	r.viewers[v.ID] = v
	r.stats.ViewerCount = len(r.viewers)
	return core.OK()
}

// Leave removes a viewer; leaving twice (or never having joined) is a no-op.
func (r *RoomStore) Leave(id domain.UserID) core.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.viewers, id)
	r.stats.ViewerCount = len(r.viewers)
	return core.OK()
}

// PostMessage appends a chat message with a generated id and bumps the
// comment counter. Returns the stored message.
func (r *RoomStore) PostMessage(data MessageData) domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgType := data.Type
	if msgType == "" {
		msgType = "text"
	}
	msg := domain.Message{
		ID:         fmt.Sprintf("msg_%d", time.Now().UnixMilli()),
		UserID:     data.UserID,
		UserName:   data.UserName,
		UserAvatar: data.UserAvatar,
		Content:    data.Content,
		Type:       msgType,
		Timestamp:  time.Now(),
	}
	r.messages = append(r.messages, msg)
	r.stats.CommentCount++
	return msg
}

// PostGift appends a gift entry with a generated id. Gifts do not touch the
// comment counter.
func (r *RoomStore) PostGift(data GiftData) domain.Gift {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := data.Count
	if count == 0 {
		count = 1
	}
	gift := domain.Gift{
		ID:         fmt.Sprintf("gift_%d", time.Now().UnixMilli()),
		UserID:     data.UserID,
		UserName:   data.UserName,
		UserAvatar: data.UserAvatar,
		GiftID:     data.GiftID,
		GiftName:   data.GiftName,
		GiftImage:  data.GiftImage,
		GiftValue:  data.GiftValue,
		Count:      count,
		Timestamp:  time.Now(),
	}
	r.gifts = append(r.gifts, gift)
	return gift
}

func (r *RoomStore) Like() core.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.LikeCount++
	return core.OK()
}

func (r *RoomStore) Share() core.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.ShareCount++
	return core.OK()
}

// UpdateSettings merges non-zero fields into the broadcast settings.
func (r *RoomStore) UpdateSettings(s domain.RoomSettings) core.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Resolution != "" {
		r.settings.Resolution = s.Resolution
	}
	if s.Bitrate != 0 {
		r.settings.Bitrate = s.Bitrate
	}
	if s.FrameRate != 0 {
		r.settings.FrameRate = s.FrameRate
	}
	if s.Beauty != 0 {
		r.settings.Beauty = s.Beauty
	}
	if s.Filter != "" {
		r.settings.Filter = s.Filter
	}
	return core.OK()
}

// Reset returns every room field to its initial default. Always succeeds.
func (r *RoomStore) Reset() core.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.info = domain.RoomInfo{Status: domain.StatusIdle}
	r.anchor = domain.Anchor{}
	r.viewers = make(map[domain.UserID]domain.Viewer)
	r.stats = domain.RoomStats{}
	r.messages = nil
	r.gifts = nil
	r.settings = domain.DefaultRoomSettings()

	log.Info().Str("module", "app.room").Msg("room state reset")
	return core.OK()
}

func (r *RoomStore) Status() domain.RoomStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info.Status
}

func (r *RoomStore) IsLiving() bool {
	return r.Status() == domain.StatusLive
}

func (r *RoomStore) Info() domain.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

func (r *RoomStore) Stats() domain.RoomStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// RecentMessages returns the newest messages up to the recent-window size,
// oldest first.
func (r *RoomStore) RecentMessages() []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if len(r.messages) > recentMessageCount {
		start = len(r.messages) - recentMessageCount
	}
	out := make([]domain.Message, len(r.messages)-start)
	copy(out, r.messages[start:])
	return out
}

func (r *RoomStore) Messages() []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *RoomStore) Gifts() []domain.Gift {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Gift, len(r.gifts))
	copy(out, r.gifts)
	return out
}

// Snapshot returns the full room view: info, anchor, stats, settings and the
// viewer set ordered by join time.
func (r *RoomStore) Snapshot() RoomView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	viewers := make([]domain.Viewer, 0, len(r.viewers))
	for _, v := range r.viewers {
		viewers = append(viewers, v)
	}
	sort.Slice(viewers, func(i, j int) bool {
		return viewers[i].JoinTime.Before(viewers[j].JoinTime)
	})
	return RoomView{
		Info:     r.info,
		Anchor:   r.anchor,
		Stats:    r.stats,
		Settings: r.settings,
		Viewers:  viewers,
	}
}
