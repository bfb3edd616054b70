package analytics

import (
	"fmt"
	"io"
)

// ConsoleEmitter writes events to an io.Writer instead of a network
// endpoint, for local development and for verifying what would be sent
// before enabling PosthogEmitter in CI.
type ConsoleEmitter struct {
	Out io.Writer
}

func (c ConsoleEmitter) Emit(event string, properties map[string]any) {
	if c.Out == nil {
		return
	}
	fmt.Fprintf(c.Out, "[analytics] %s %v\n", event, properties)
}

func (c ConsoleEmitter) Close() {}
