package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/web-changlu/liveroom/internal/core"
	"github.com/web-changlu/liveroom/internal/domain"
)

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingNotifier) Notify(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recordingNotifier) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// wired builds a coordinator with its normalizer bound and the handle already
// created, so tests can emit provider events directly.
func wired(t *testing.T) (*SessionCoordinator, *fakeProvider, *recordingNotifier) {
	t.Helper()
	factory := &fakeFactory{provider: newFakeProvider()}
	sess := NewSessionCoordinator(factory, time.Second)
	rec := &recordingNotifier{}
	NewEventNormalizer(sess, rec)
	require.True(t, sess.Init().Success)
	return sess, factory.provider, rec
}

func TestBindSubscribesEveryEventKind(t *testing.T) {
	_, provider, _ := wired(t)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	for _, kind := range []core.EventKind{
		core.EventWarning,
		core.EventError,
		core.EventEnterRoom,
		core.EventExitRoom,
		core.EventFirstVideoFrame,
		core.EventRemoteUserEnter,
		core.EventUserVideoAvailable,
	} {
		require.Contains(t, provider.handlers, kind)
	}
}

func TestEnterRoomEventConfirmsOptimisticState(t *testing.T) {
	sess, provider, rec := wired(t)
	require.True(t, sess.Join(context.Background(), audienceJoin()).Success)
	require.False(t, sess.Snapshot().Confirmed)

	provider.emit(core.Event{Kind: core.EventEnterRoom, Code: 42})

	view := sess.Snapshot()
	require.Equal(t, domain.StateConnected, view.ConnectionState)
	require.True(t, view.Confirmed)
	require.Contains(t, rec.all(), "entered room in 42ms")
}

func TestEnterRoomFailureEventRevertsState(t *testing.T) {
	sess, provider, rec := wired(t)
	require.True(t, sess.Join(context.Background(), audienceJoin()).Success)

	provider.emit(core.Event{Kind: core.EventEnterRoom, Code: -3})

	view := sess.Snapshot()
	require.Equal(t, domain.StateDisconnected, view.ConnectionState)
	require.False(t, view.Confirmed)
	require.Contains(t, rec.all(), "enter room failed, code -3")
}

func TestExitRoomEventReasons(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "exited room: left room voluntarily"},
		{1, "exited room: kicked by server"},
		{2, "exited room: room dissolved"},
		{7, "exited room: unknown reason (7)"},
	}
	for _, tt := range tests {
		sess, provider, rec := wired(t)
		require.True(t, sess.Join(context.Background(), audienceJoin()).Success)
		sess.AddRemoteParticipant(domain.RemoteParticipant{UserID: "r1"})

		provider.emit(core.Event{Kind: core.EventExitRoom, Code: tt.code})

		view := sess.Snapshot()
		require.Equal(t, domain.StateDisconnected, view.ConnectionState)
		require.Empty(t, view.RemoteParticipants)
		require.Contains(t, rec.all(), tt.want)
	}
}

func TestRemoteUserEnterRecordsAndNotifies(t *testing.T) {
	sess, provider, rec := wired(t)

	provider.emit(core.Event{Kind: core.EventRemoteUserEnter, UserID: "r9"})

	require.Equal(t, domain.UserID("r9"), sess.Snapshot().LastRemoteUserID)
	require.Contains(t, rec.all(), "remote user entered: r9")
}

func TestUserVideoAvailableRecordsOnlyWhenAvailable(t *testing.T) {
	sess, provider, rec := wired(t)

	provider.emit(core.Event{Kind: core.EventUserVideoAvailable, UserID: "r1", Available: true})
	require.Equal(t, domain.UserID("r1"), sess.Snapshot().LastRemoteUserID)

	provider.emit(core.Event{Kind: core.EventUserVideoAvailable, UserID: "r2", Available: false})
	require.Equal(t, domain.UserID("r1"), sess.Snapshot().LastRemoteUserID)

	// Availability changes are silent state updates.
	require.Empty(t, rec.all())
}

func TestWarningErrorAndFirstFrameAreNotificationOnly(t *testing.T) {
	sess, provider, rec := wired(t)
	before := sess.Snapshot()

	provider.emit(core.Event{Kind: core.EventWarning, Code: 1101, Message: "weak network"})
	provider.emit(core.Event{Kind: core.EventError, Code: -8, Message: "capture lost"})
	provider.emit(core.Event{Kind: core.EventFirstVideoFrame, UserID: "r1"})

	require.Equal(t, before, sess.Snapshot())
	texts := rec.all()
	require.Len(t, texts, 3)
	require.Contains(t, texts[0], "weak network")
	require.Contains(t, texts[1], "capture lost")
	require.Contains(t, texts[2], "first video frame")
}
