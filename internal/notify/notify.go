// Package notify carries user-facing notifications from the flows to whoever
// renders them. A Notifier is passed in explicitly; there is no package-level
// dispatcher.
package notify

import (
	"sync"

	"club-la-victoria/internal/common/logger"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant"`
}

type Notifier interface {
	Notify(n Notification)
}

// Success builds a default notification.
func Success(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault}
}

// Failure builds a destructive notification.
func Failure(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive}
}

// Recorder keeps notifications in memory, one per request.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Items returns a copy of the recorded notifications in order.
func (r *Recorder) Items() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// LogNotifier writes notifications to a Logger.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(n Notification) {
	fields := map[string]interface{}{
		"title":       n.Title,
		"description": n.Description,
		"variant":     string(n.Variant),
	}
	if n.Variant == VariantDestructive {
		l.log.Warn("notification", fields)
		return
	}
	l.log.Info("notification", fields)
}

type multi []Notifier

func (m multi) Notify(n Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}

// Tee fans a notification out to every non-nil target.
func Tee(targets ...Notifier) Notifier {
	out := make(multi, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notification) {}
