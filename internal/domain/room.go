package domain

import "time"

type RoomID string

// RoomStatus is the live-room lifecycle. Transitions are monotonic within a
// session: idle -> preparing -> live -> ended. Ended is terminal.
type RoomStatus string

const (
	StatusIdle      RoomStatus = "idle"
	StatusPreparing RoomStatus = "preparing"
	StatusLive      RoomStatus = "live"
	StatusEnded     RoomStatus = "ended"
)

type RoomInfo struct {
	ID          RoomID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CoverImage  string     `json:"coverImage"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Status      RoomStatus `json:"status"`
}

// Anchor is the broadcaster identity attached to a room.
type Anchor struct {
	ID     UserID `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// RoomStats counters are monotonically non-decreasing, except ViewerCount
// which tracks the current viewer set cardinality exactly.
type RoomStats struct {
	ViewerCount  int `json:"viewerCount"`
	LikeCount    int `json:"likeCount"`
	CommentCount int `json:"commentCount"`
	ShareCount   int `json:"shareCount"`
}

type Viewer struct {
	ID       UserID    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	JoinTime time.Time `json:"joinTime"`
}

// Message is an immutable append-only chat log entry.
type Message struct {
	ID         string    `json:"id"`
	UserID     UserID    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

// Gift is an immutable append-only gift log entry.
type Gift struct {
	ID         string    `json:"id"`
	UserID     UserID    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	GiftID     string    `json:"giftId"`
	GiftName   string    `json:"giftName"`
	GiftImage  string    `json:"giftImage"`
	GiftValue  int       `json:"giftValue"`
	Count      int       `json:"count"`
	Timestamp  time.Time `json:"timestamp"`
}

// RoomSettings are broadcast encoding preferences, merged field-wise.
type RoomSettings struct {
	Resolution string `json:"resolution"`
	Bitrate    int    `json:"bitrate"`
	FrameRate  int    `json:"frameRate"`
	Beauty     int    `json:"beauty"`
	Filter     string `json:"filter"`
}

func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		Resolution: "720p",
		Bitrate:    1500,
		FrameRate:  15,
		Beauty:     5,
		Filter:     "normal",
	}
}
