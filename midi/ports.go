package midi

import (
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const scanTimeout = 3 * time.Second

// InPortNames lists input port names. Enumeration can hang on a
// wedged rtmidi backend, so the scan runs under a timeout.
func InPortNames() ([]string, error) {
	return scanPorts(func() []string {
		ports := gomidi.GetInPorts()
		names := make([]string, len(ports))
		for i, p := range ports {
			names[i] = p.String()
		}
		return names
	})
}

// OutPortNames lists output port names under the same timeout.
func OutPortNames() ([]string, error) {
	return scanPorts(func() []string {
		ports := gomidi.GetOutPorts()
		names := make([]string, len(ports))
		for i, p := range ports {
			names[i] = p.String()
		}
		return names
	})
}

func scanPorts(list func() []string) ([]string, error) {
	ch := make(chan []string, 1)
	go func() { ch <- list() }()
	select {
	case names := <-ch:
		return names, nil
	case <-time.After(scanTimeout):
		return nil, fmt.Errorf("midi: port scan timed out")
	}
}

// findIn resolves a port by case-insensitive substring, or the first
// port when the name is empty.
func findIn(portName string) (drivers.In, error) {
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		return nil, fmt.Errorf("midi: no input ports")
	}
	if portName == "" {
		return ins[0], nil
	}
	for _, p := range ins {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(portName)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("midi: input %q not found", portName)
}

// CloseDriver tears down the shared rtmidi driver. Call once, on the
// way out of the process.
func CloseDriver() {
	gomidi.CloseDriver()
}
