// Package notify collects short user-facing messages (unlocked achievements,
// failed saves, load errors) until a client drains them.
package notify

import (
	"log"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier accepts messages for the user.
type Notifier interface {
	Notify(level Level, message string)
}

// DefaultCapacity bounds how many undelivered notifications a Feed keeps.
const DefaultCapacity = 50

// Feed is a bounded in-memory queue of notifications. When full, the oldest entry is dropped.
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{capacity: capacity, now: time.Now}
}

func (f *Feed) Notify(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == f.capacity {
		f.items = f.items[1:]
	}
	f.items = append(f.items, Notification{Level: level, Message: message, CreatedAt: f.now()})
}

// Drain returns pending notifications oldest first and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.items
	f.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

func (f *Feed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Log writes notifications to the standard logger. Used by CLI commands with no client to deliver to.
type Log struct{}

func (Log) Notify(level Level, message string) {
	log.Printf("[%s] %s", level, message)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(Level, string) {}
