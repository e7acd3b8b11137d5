// Command vakit-tmux prints the next prayer for a status line. It reads the
// stored schedule and never touches the network; run `vakit run` or
// `vakit refresh` to keep the schedule current.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smokyabdulrahman/vakit/internal/config"
	"github.com/smokyabdulrahman/vakit/internal/display"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/spf13/pflag"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

type options struct {
	format     string
	timeFormat string
	configPath string
}

func main() {
	var opts options
	fs := pflag.NewFlagSet("vakit-tmux", pflag.ExitOnError)
	fs.StringVar(&opts.format, "format", prayer.FormatNameAndTime, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, countdown, or a custom Go template (e.g. '{{.Name}} in {{.Remaining}}'). Template fields: .Name, .ShortName, .Time, .Remaining, .Countdown, .Hours, .Minutes, .Seconds")
	fs.StringVar(&opts.timeFormat, "time-format", "", "Time format: 12h or 24h (default: from config)")
	fs.StringVar(&opts.configPath, "config", "", "Preferences file (default: ~/.config/vakit/preferences.json)")
	showVersion := fs.Bool("version", false, "Print version and exit")

	fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("vakit-tmux %s\n", version)
		return
	}

	if err := run(os.Stdout, opts, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run prints one status line for now. A missing or stale schedule prints the
// placeholder rather than failing, so the status bar stays quiet.
func run(w io.Writer, opts options, now time.Time) error {
	path := opts.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}

	timeFormat := cfg.TimeFormatOrDefault()
	if opts.timeFormat != "" {
		if opts.timeFormat != "12h" && opts.timeFormat != "24h" {
			return fmt.Errorf("invalid --time-format %q: must be \"12h\" or \"24h\"", opts.timeFormat)
		}
		timeFormat = opts.timeFormat
	}

	c, ok := prayer.ComputeForSchedule(cfg.PrayerTimes, now)
	if !ok {
		fmt.Fprint(w, display.Placeholder)
		return nil
	}

	fmt.Fprint(w, prayer.FormatOutput(c.Remaining, c.Target, opts.format, prayer.TimeLayout(timeFormat)))
	return nil
}
