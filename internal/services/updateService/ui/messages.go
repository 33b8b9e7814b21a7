package ui

import updateservice "github.com/redjax/upkeep/internal/services/updateService"

// updateEventMsg wraps one worker event for the bubbletea loop.
type updateEventMsg updateservice.UpdateEvent

// workerDoneMsg signals the worker closed its channel; the attempt reached
// a terminal state and no further events will arrive.
type workerDoneMsg struct{}
