// midiprobe is a small diagnostic for MIDI wiring: list ports, watch
// hot-plug events, monitor what a keyboard sends, and ping an output.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"openpiano/audio"
	"openpiano/keymap"
	"openpiano/midi"
)

func main() {
	defer midi.CloseDriver()

	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor(arg(2))
	case "note":
		sendNote(arg(2))
	case "poll":
		poll()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("openpiano MIDI probe")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list            - list MIDI ports")
	fmt.Println("  monitor [port]  - print notes arriving on an input port")
	fmt.Println("  note [port]     - send middle C to an output port")
	fmt.Println("  poll            - watch ports appear and disappear")
}

func arg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	ins, err := midi.InPortNames()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for i, name := range ins {
		fmt.Printf("  %d: %s\n", i, name)
	}

	fmt.Println("\n=== MIDI Output Ports ===")
	outs, err := midi.OutPortNames()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for i, name := range outs {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func monitor(port string) {
	in, err := midi.OpenInput(port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Monitoring %s. Ctrl+C to exit.\n", in.Name())

	for ev := range in.Events() {
		state := "off"
		if ev.On {
			state = "on "
		}
		fmt.Printf("  note %s %3d (%-3s) velocity %3d\n", state, ev.Note, keymap.NoteName(ev.Note), ev.Velocity)
	}
}

func sendNote(port string) {
	out, err := audio.NewMIDIOut(port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Sending middle C to %s\n", out.Name())

	if err := out.NoteOn(60, 100); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	time.Sleep(500 * time.Millisecond)
	out.NoteOff(60)
	out.Close()
	fmt.Println("Done")
}

func poll() {
	fmt.Println("Watching ports. Connect or disconnect a device to test. Ctrl+C to exit.")

	w := midi.NewWatcher()
	go w.Run(context.Background())

	for ev := range w.Events() {
		verb := "added:  "
		if ev.Type == midi.DeviceRemoved {
			verb = "removed:"
		}
		fmt.Printf("  %s %s\n", verb, ev.Name)
	}
}
