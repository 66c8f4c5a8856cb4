package binance

import (
	"sync"
	"time"
)

// Notice is a human-readable connector event kept for display to an operator.
type Notice struct {
	Message   string
	Time      time.Time
	Displayed bool
}

// noticeLog is an append-only buffer of notices. Entries are never removed;
// draining only flips their Displayed flag so history stays inspectable.
type noticeLog struct {
	mu      sync.Mutex
	entries []Notice
	clock   func() time.Time
}

func newNoticeLog(clock func() time.Time) *noticeLog {
	if clock == nil {
		clock = time.Now
	}
	return &noticeLog{
		mu:      sync.Mutex{},
		entries: nil,
		clock:   clock,
	}
}

func (nl *noticeLog) add(message string) {
	nl.mu.Lock()
	nl.entries = append(nl.entries, Notice{
		Message:   message,
		Time:      nl.clock(),
		Displayed: false,
	})
	nl.mu.Unlock()
}

// drain returns the notices not yet shown, marking them displayed.
func (nl *noticeLog) drain() []Notice {
	nl.mu.Lock()
	defer nl.mu.Unlock()

	var fresh []Notice
	for i := range nl.entries {
		if nl.entries[i].Displayed {
			continue
		}
		nl.entries[i].Displayed = true
		fresh = append(fresh, nl.entries[i])
	}
	return fresh
}

// all returns a copy of every notice ever recorded.
func (nl *noticeLog) all() []Notice {
	nl.mu.Lock()
	defer nl.mu.Unlock()
	out := make([]Notice, len(nl.entries))
	copy(out, nl.entries)
	return out
}
