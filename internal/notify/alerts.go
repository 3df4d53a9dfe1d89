package notify

import "sync/atomic"

// Switch gates webhook alerting.
type Switch struct {
	enabled atomic.Bool
}

func NewSwitch(enabled bool) *Switch {
	s := &Switch{}
	s.enabled.Store(enabled)
	return s
}

// Enable turns alerting on. It reports false if it was already on.
func (s *Switch) Enable() bool {
	return s.enabled.CompareAndSwap(false, true)
}

// Disable turns alerting off. It reports false if it was already off.
func (s *Switch) Disable() bool {
	return s.enabled.CompareAndSwap(true, false)
}

func (s *Switch) Enabled() bool {
	return s.enabled.Load()
}
