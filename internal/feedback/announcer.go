package feedback

import (
	"log"
	"sync"
	"time"
)

// Announcer delivers announcements to the user.
type Announcer interface {
	Announce(a Announcement) error
}

// LogAnnouncer writes announcements to the process log. It is the
// fallback when no speaker plugin is available, and doubles as a quiet
// announcer for tests.
type LogAnnouncer struct{}

// Announce logs the announcement.
func (LogAnnouncer) Announce(a Announcement) error {
	log.Printf("announce [%s] %s", a.Category, a.Message)
	return nil
}

// PluginAnnouncer speaks announcements through every discovered plugin.
type PluginAnnouncer struct {
	manager  *Manager
	executor *Executor
}

// NewPluginAnnouncer creates an announcer over the manager's plugins.
func NewPluginAnnouncer(manager *Manager, executor *Executor) *PluginAnnouncer {
	return &PluginAnnouncer{manager: manager, executor: executor}
}

// Announce fans the announcement out to all plugins. Individual plugin
// failures are logged, not propagated; losing one voice must not stop
// the pipeline.
func (p *PluginAnnouncer) Announce(a Announcement) error {
	plugins := p.manager.List()
	if len(plugins) == 0 {
		return LogAnnouncer{}.Announce(a)
	}

	for _, plugin := range plugins {
		resp, err := p.executor.Speak(plugin, a)
		if err != nil {
			log.Printf("speaker plugin %s: %v", plugin.Manifest.Name, err)
			continue
		}
		if !resp.Success {
			log.Printf("speaker plugin %s rejected announcement: %s", plugin.Manifest.Name, resp.Error)
		}
	}
	return nil
}

// MockAnnouncer records announcements for tests.
type MockAnnouncer struct {
	mu            sync.Mutex
	announcements []Announcement
	err           error
}

// NewMockAnnouncer creates an empty MockAnnouncer.
func NewMockAnnouncer() *MockAnnouncer {
	return &MockAnnouncer{}
}

// SetError sets the error that Announce will return.
func (m *MockAnnouncer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Announce records the announcement.
func (m *MockAnnouncer) Announce(a Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.announcements = append(m.announcements, a)
	return nil
}

// Announcements returns a copy of everything announced so far.
func (m *MockAnnouncer) Announcements() []Announcement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Announcement, len(m.announcements))
	copy(out, m.announcements)
	return out
}

// Throttle wraps an Announcer and suppresses repeats: within one
// category, an identical message inside the cooldown window is dropped,
// and any message inside the minimum gap is dropped unless urgent.
type Throttle struct {
	next     Announcer
	cooldown time.Duration
	mu       sync.Mutex
	last     map[Category]throttleEntry
	now      func() time.Time
}

type throttleEntry struct {
	message string
	at      time.Time
}

// NewThrottle wraps next with a per-category cooldown.
func NewThrottle(next Announcer, cooldown time.Duration) *Throttle {
	return &Throttle{
		next:     next,
		cooldown: cooldown,
		last:     make(map[Category]throttleEntry),
		now:      time.Now,
	}
}

// Announce forwards the announcement unless it repeats the previous one
// in its category within the cooldown. Urgent announcements always pass
// and reset the window.
func (t *Throttle) Announce(a Announcement) error {
	t.mu.Lock()
	now := t.now()
	entry, seen := t.last[a.Category]
	if a.Priority != PriorityUrgent && seen &&
		entry.message == a.Message && now.Sub(entry.at) < t.cooldown {
		t.mu.Unlock()
		return nil
	}
	t.last[a.Category] = throttleEntry{message: a.Message, at: now}
	t.mu.Unlock()

	return t.next.Announce(a)
}

// Reset clears the throttle history, for example on mode change.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[Category]throttleEntry)
}
