package scanner

import (
	. "github.com/reelspirit/backend/utils/log"
)

// TaskRunner schedules a detached background task. The scanner only depends
// on this interface; swapping in a queue-backed runner does not touch the
// orchestration logic.
type TaskRunner interface {
	Submit(name string, task func())
}

// GoroutineRunner runs each task on its own goroutine. Tasks run to
// completion or failure, there is no cancellation.
type GoroutineRunner struct{}

var _ TaskRunner = GoroutineRunner{}

func (GoroutineRunner) Submit(name string, task func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Log.Errorf("background task %s panicked: %v", name, r)
			}
		}()
		task()
	}()
}
