package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/smokyabdulrahman/vakit/internal/display"
)

// Console prints notifications as colored lines, e.g. on the terminal the
// daemon runs in.
type Console struct {
	W io.Writer
}

func (c Console) Notify(_ context.Context, n Notification) error {
	var line string
	switch n.Kind {
	case KindWarning:
		line = display.Yellow("⏰ " + n.Text())
	case KindFailure:
		line = display.Red("✗ " + n.Text())
	default:
		line = display.Dim(n.Text())
	}
	if _, err := fmt.Fprintf(c.W, "%s %s\n", display.Gray(n.CreatedAt.Format("15:04:05")), line); err != nil {
		return fmt.Errorf("console notify: %w", err)
	}
	return nil
}
