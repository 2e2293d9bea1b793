package core

import (
	"github.com/diskrim/diskrim/disk"
)

// progress wraps an optional caller-supplied event channel and
// enforces the ordering contract: percentages never decrease, nothing
// is emitted after Close, and the orchestrator (the sender) closes the
// channel when the operation finishes.
type progress struct {
	ch     chan<- disk.ProgressEvent
	last   int
	closed bool
}

func newProgress(ch chan<- disk.ProgressEvent) *progress {
	return &progress{ch: ch}
}

func (p *progress) Send(percent int, message string) {
	if p.ch == nil || p.closed {
		return
	}
	if percent < p.last {
		percent = p.last
	}
	if percent > 100 {
		percent = 100
	}
	p.last = percent
	p.ch <- disk.ProgressEvent{Percent: percent, Message: message}
}

func (p *progress) Close() {
	if p.ch == nil || p.closed {
		return
	}
	p.closed = true
	close(p.ch)
}
