package reconcile

import "sync"

// ScheduleStatus reports the state of a scheduled job.
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusRunning   ScheduleStatus = "running"
	ScheduleStatusIdle      ScheduleStatus = "idle"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCanceled  ScheduleStatus = "canceled"
	ScheduleStatusFailed    ScheduleStatus = "failed"
	ScheduleStatusStopped   ScheduleStatus = "stopped"
)

// Handle controls a scheduled job.
type Handle interface {
	Cancel()
	Status() ScheduleStatus
	Err() error
	Done() <-chan struct{}
	ID() int64
}

type jobHandle struct {
	scheduler *Scheduler
	id        int64
	entryID   int
	done      chan struct{}

	mu     sync.RWMutex
	status ScheduleStatus
	err    error
	once   sync.Once
}

func (h *jobHandle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.scheduler != nil {
			h.scheduler.removeHandle(h.id)
		}
		h.setTerminal(ScheduleStatusCanceled, nil)
	})
}

func (h *jobHandle) Status() ScheduleStatus {
	if h == nil {
		return ScheduleStatusStopped
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Err returns the error of the last failed run, if any.
func (h *jobHandle) Err() error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

func (h *jobHandle) Done() <-chan struct{} {
	if h == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return h.done
}

func (h *jobHandle) ID() int64 {
	if h == nil {
		return 0
	}
	return h.id
}

func (h *jobHandle) setStatus(status ScheduleStatus, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
	h.err = err
}

func (h *jobHandle) setTerminal(status ScheduleStatus, err error) {
	h.setStatus(status, err)
	if h.done != nil {
		select {
		case <-h.done:
		default:
			close(h.done)
		}
	}
}

func isTerminalStatus(status ScheduleStatus) bool {
	switch status {
	case ScheduleStatusCompleted, ScheduleStatusCanceled, ScheduleStatusStopped:
		return true
	default:
		return false
	}
}
