// Package midi attaches external MIDI keyboards as an input source.
package midi

// NoteEvent is one key going down or up on an attached device. A
// note-on with velocity zero arrives as On=false, per the wire
// convention.
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	On       bool
}

// DeviceEventType distinguishes watcher notifications.
type DeviceEventType int

const (
	DeviceAdded DeviceEventType = iota
	DeviceRemoved
)

// DeviceEvent reports an input port arriving or leaving.
type DeviceEvent struct {
	Type DeviceEventType
	Name string
}
