// Package selection implements the multi-select mode used for batch
// translation: a process-wide toggle plus the set of marked messages.
package selection

import (
	"slices"
	"sync"
)

// Tracker is the selection mode state machine. All selected messages belong
// to one channel; selecting in a different channel silently discards the set
// and rebinds there.
type Tracker struct {
	mu        sync.Mutex
	active    bool
	channelID string
	order     []string
	members   map[string]struct{}
	lastID    string
}

// New creates a tracker in the off state.
func New() *Tracker {
	return &Tracker{members: make(map[string]struct{})}
}

// Toggle flips selection mode and returns the new state. Both directions
// clear any residual selection.
func (t *Tracker) Toggle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = !t.active
	t.resetLocked()
	return t.active
}

// Exit forces mode off from any state.
func (t *Tracker) Exit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
	t.resetLocked()
}

// Select toggles membership of messageID within channelID and reports
// whether the message is now selected. While mode is off it does nothing.
func (t *Tracker) Select(messageID, channelID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return false
	}
	if t.channelID != channelID {
		t.resetLocked()
		t.channelID = channelID
	}
	if _, ok := t.members[messageID]; ok {
		delete(t.members, messageID)
		if i := slices.Index(t.order, messageID); i >= 0 {
			t.order = slices.Delete(t.order, i, i+1)
		}
		return false
	}
	t.members[messageID] = struct{}{}
	t.order = append(t.order, messageID)
	t.lastID = messageID
	return true
}

// Active reports whether selection mode is on.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Channel returns the bound channel, empty until the first selection.
func (t *Tracker) Channel() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channelID
}

// Count returns the number of selected messages.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// IsSelected reports membership of messageID.
func (t *Tracker) IsSelected(messageID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.members[messageID]
	return ok
}

// LastSelected returns the most recently added message id.
func (t *Tracker) LastSelected() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastID
}

// Snapshot returns the bound channel and the selected ids in selection
// order, safe for the caller to keep.
func (t *Tracker) Snapshot() (channelID string, ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channelID, slices.Clone(t.order)
}

func (t *Tracker) resetLocked() {
	t.channelID = ""
	t.order = t.order[:0]
	clear(t.members)
	t.lastID = ""
}
