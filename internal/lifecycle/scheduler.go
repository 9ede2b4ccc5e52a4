package lifecycle

import "time"

// timerHandle identifies one armed timer. The fire callback carries its
// handle back so a stale fire (superseded or canceled while waiting on the
// coordinator lock) can be recognized and dropped.
type timerHandle struct {
	timer *time.Timer
}

// scheduler tracks one cancelable auto-dismiss timer per visible toast id.
// Scheduling always replaces: arming an id cancels any existing timer first.
//
// Not safe for concurrent use on its own: the coordinator serializes every
// call. Fire callbacks run on timer goroutines and must re-acquire the
// coordinator lock before touching state.
type scheduler struct {
	timers map[string]*timerHandle
}

func newScheduler() *scheduler {
	return &scheduler{timers: make(map[string]*timerHandle)}
}

// schedule arms a timer for id, canceling any previous one.
func (s *scheduler) schedule(id string, d time.Duration, fire func(*timerHandle)) {
	s.cancel(id)
	h := &timerHandle{}
	h.timer = time.AfterFunc(d, func() { fire(h) })
	s.timers[id] = h
}

// cancel stops and forgets the timer for id. A timer goroutine that already
// fired and is waiting on the coordinator lock will find its handle gone and
// no-op.
func (s *scheduler) cancel(id string) {
	if h, ok := s.timers[id]; ok {
		h.timer.Stop()
		delete(s.timers, id)
	}
}

// owns reports whether h is still the live timer for id.
func (s *scheduler) owns(id string, h *timerHandle) bool {
	return s.timers[id] == h
}

// scheduled reports whether id has an armed timer.
func (s *scheduler) scheduled(id string) bool {
	_, ok := s.timers[id]
	return ok
}

// remove forgets the timer for id without stopping it. Used by the fire path
// after ownership is confirmed.
func (s *scheduler) remove(id string) {
	delete(s.timers, id)
}

// cancelAll stops and forgets every timer.
func (s *scheduler) cancelAll() {
	for id, h := range s.timers {
		h.timer.Stop()
		delete(s.timers, id)
	}
}
