package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/web-changlu/liveroom/internal/core"
	"github.com/web-changlu/liveroom/internal/domain"
)

// Notifier receives the user-facing ephemeral notifications produced while
// normalizing provider events (rendered as toasts by UI clients).
type Notifier interface {
	Notify(text string)
}

// LogNotifier is the default sink when no UI channel is attached.
type LogNotifier struct{}

func (LogNotifier) Notify(text string) {
	log.Info().Str("module", "app.notify").Msg(text)
}

// EventNormalizer subscribes to the provider event stream and maps each event
// to either a session-state mutation or a user-facing notification. It is
// bound exactly once per transport handle, on handle creation.
type EventNormalizer struct {
	session  *SessionCoordinator
	notifier Notifier
}

func NewEventNormalizer(session *SessionCoordinator, notifier Notifier) *EventNormalizer {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	n := &EventNormalizer{session: session, notifier: notifier}
	session.OnProviderCreated(n.Bind)
	return n
}

// Bind registers one handler per event kind on a fresh transport handle.
func (n *EventNormalizer) Bind(p core.TransportProvider) {
	p.On(core.EventWarning, n.onWarning)
	p.On(core.EventError, n.onError)
	p.On(core.EventEnterRoom, n.onEnterRoom)
	p.On(core.EventExitRoom, n.onExitRoom)
	p.On(core.EventFirstVideoFrame, n.onFirstVideoFrame)
	p.On(core.EventRemoteUserEnter, n.onRemoteUserEnter)
	p.On(core.EventUserVideoAvailable, n.onUserVideoAvailable)
	log.Info().Str("module", "app.normalizer").Msg("provider events bound")
}

func (n *EventNormalizer) onWarning(e core.Event) {
	n.notifier.Notify(fmt.Sprintf("warning %d: %s", e.Code, e.Message))
}

func (n *EventNormalizer) onError(e core.Event) {
	log.Error().Str("module", "app.normalizer").Int("code", e.Code).Str("msg", e.Message).Msg("provider error")
	n.notifier.Notify(fmt.Sprintf("error %d: %s", e.Code, e.Message))
}

// onEnterRoom carries latency in ms on success or a negative failure code.
// It is the confirmation leg of the coordinator's optimistic transition.
func (n *EventNormalizer) onEnterRoom(e core.Event) {
	if e.Code >= 0 {
		n.session.confirmEntered(true)
		n.notifier.Notify(fmt.Sprintf("entered room in %dms", e.Code))
		return
	}
	n.session.confirmEntered(false)
	log.Error().Str("module", "app.normalizer").Int("code", e.Code).Msg("enter room failed")
	n.notifier.Notify(fmt.Sprintf("enter room failed, code %d", e.Code))
}

func (n *EventNormalizer) onExitRoom(e core.Event) {
	reason := core.ExitReasonFromCode(e.Code)
	n.session.confirmExited()
	if reason == core.ExitReasonUnknown {
		n.notifier.Notify(fmt.Sprintf("exited room: unknown reason (%d)", e.Code))
		return
	}
	n.notifier.Notify("exited room: " + reason.String())
}

func (n *EventNormalizer) onFirstVideoFrame(e core.Event) {
	n.notifier.Notify(fmt.Sprintf("first video frame rendered for %s", e.UserID))
}

func (n *EventNormalizer) onRemoteUserEnter(e core.Event) {
	n.session.recordRemoteUser(domain.UserID(e.UserID))
	n.notifier.Notify("remote user entered: " + e.UserID)
}

func (n *EventNormalizer) onUserVideoAvailable(e core.Event) {
	if e.UserID != "" && e.Available {
		n.session.recordRemoteUser(domain.UserID(e.UserID))
	}
}
