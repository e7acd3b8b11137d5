package app

import (
	"fmt"
	"io"

	"github.com/smokyabdulrahman/vakit/internal/countdown"
	"github.com/smokyabdulrahman/vakit/internal/display"
)

// TerminalObserver redraws a single countdown line on every tick and prints
// statuses on their own lines.
type TerminalObserver struct {
	W      io.Writer
	Layout string
	// Live rewrites the line in place; otherwise only slot changes print.
	Live bool
}

func (o *TerminalObserver) OnTick(t countdown.Tick) {
	if !o.Live && !t.SlotChanged {
		return
	}

	line := display.CountdownLine(t.Remaining, t.Target, t.OK, o.Layout)

	if o.Live {
		fmt.Fprintf(o.W, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(o.W, line)
}

func (o *TerminalObserver) OnStatus(s countdown.Status) {
	msg := s.Message
	if s.Err != nil {
		msg = display.Red(msg) + " " + display.Gray(s.Err.Error())
	}
	if o.Live {
		fmt.Fprintf(o.W, "\r\033[K%s\n", msg)
		return
	}
	fmt.Fprintln(o.W, msg)
}
