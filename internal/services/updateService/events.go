package updateservice

// UpdateEventKind tags the variants carried over the notifier channel.
type UpdateEventKind int

const (
	// EventMessage is an informational progress message.
	EventMessage UpdateEventKind = iota
	// EventSuccess means a new version was installed on disk.
	EventSuccess
	// EventUpToDate means no newer release exists.
	EventUpToDate
	// EventError is a terminal failure of the attempt.
	EventError
)

// UpdateEvent is a single status notification from the background update
// worker to the foreground loop. Events arrive in the order they were sent.
type UpdateEvent struct {
	Kind UpdateEventKind
	// Text holds the message for EventMessage/EventError.
	Text string
	// Version holds the new version for EventSuccess.
	Version string
}

func MessageEvent(text string) UpdateEvent {
	return UpdateEvent{Kind: EventMessage, Text: text}
}

func SuccessEvent(version string) UpdateEvent {
	return UpdateEvent{Kind: EventSuccess, Version: version}
}

func UpToDateEvent() UpdateEvent {
	return UpdateEvent{Kind: EventUpToDate}
}

func ErrorEvent(text string) UpdateEvent {
	return UpdateEvent{Kind: EventError, Text: text}
}

// notifierBuffer is sized so a full linear attempt (a handful of messages
// plus one terminal event) never fills it even if the consumer lags.
const notifierBuffer = 32

// Notifier is the single-producer/single-consumer event path between the
// update worker and the foreground render loop. Sends never block: if the
// buffer is full or the consumer is gone, the event is dropped rather than
// stalling or crashing the worker.
type Notifier struct {
	ch chan UpdateEvent
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan UpdateEvent, notifierBuffer)}
}

// Send delivers an event best-effort. Returns false if the event was dropped.
func (n *Notifier) Send(ev UpdateEvent) bool {
	select {
	case n.ch <- ev:
		return true
	default:
		return false
	}
}

// TryRecv polls for the next event without blocking. ok is false when no
// event is ready; closed reports that the producer finished and no further
// events will arrive.
func (n *Notifier) TryRecv() (ev UpdateEvent, ok bool, closed bool) {
	select {
	case ev, open := <-n.ch:
		if !open {
			return UpdateEvent{}, false, true
		}
		return ev, true, false
	default:
		return UpdateEvent{}, false, false
	}
}

// Events exposes the receive side for consumers that want to block, e.g. a
// bubbletea command goroutine.
func (n *Notifier) Events() <-chan UpdateEvent {
	return n.ch
}

// Close marks the producer side finished. Only the worker calls this, once.
func (n *Notifier) Close() {
	close(n.ch)
}
