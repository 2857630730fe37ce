package midi

import (
	"context"
	"time"

	"openpiano/debug"
)

// Watcher polls the input port list and reports ports arriving and
// leaving, so a configured keyboard attaches automatically when it is
// plugged in mid-session.
type Watcher struct {
	events   chan DeviceEvent
	pollRate time.Duration
	seen     map[string]bool
}

func NewWatcher() *Watcher {
	return &Watcher{
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		seen:     make(map[string]bool),
	}
}

// Events is the notification stream consumed by the UI loop.
func (w *Watcher) Events() <-chan DeviceEvent { return w.events }

// Run polls until the context ends. Meant for its own goroutine; all
// watcher state stays on this goroutine.
func (w *Watcher) Run(ctx context.Context) {
	w.scan()
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	names, err := InPortNames()
	if err != nil {
		debug.Log("midi", "port scan failed", "err", err)
		return
	}
	current := make(map[string]bool, len(names))
	for _, name := range names {
		current[name] = true
		if !w.seen[name] {
			w.emit(DeviceEvent{Type: DeviceAdded, Name: name})
		}
	}
	for name := range w.seen {
		if !current[name] {
			w.emit(DeviceEvent{Type: DeviceRemoved, Name: name})
		}
	}
	w.seen = current
}

func (w *Watcher) emit(ev DeviceEvent) {
	debug.Log("midi", "device event", "name", ev.Name, "added", ev.Type == DeviceAdded)
	select {
	case w.events <- ev:
	default:
	}
}
