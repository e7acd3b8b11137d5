package cli

import (
	"fmt"
	"time"

	"github.com/smokyabdulrahman/vakit/internal/api"
	"github.com/smokyabdulrahman/vakit/internal/config"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
	"github.com/smokyabdulrahman/vakit/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Global flags shared across all subcommands.
var (
	FlagStore      string
	FlagJSON       bool
	FlagTimeFormat string
	FlagCacheDir   string
	FlagEnvFile    string
	FlagOffline    bool
)

// State resolved in PersistentPreRunE and shared by the subcommand handlers.
var (
	loadedEnv    config.Env
	loadedConfig *config.Config
	backend      store.Backend
)

// nowFunc is the clock used by every command. Tests replace it.
var nowFunc = time.Now

// NewRootCmd creates the root command for the vakit CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "vakit",
		Short:   "Prayer time countdown",
		Long:    "Diyanet prayer times with a live countdown to the next prayer.\nSchedules are fetched a month at a time and kept in the preferences document.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return openSession(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeSession()
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(PrintVersion(version))

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagStore, "store", "", "Preferences store: file, file:<path>, sqlite:<path> or redis://... (default: the JSON file)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/vakit/)")
	pf.StringVar(&FlagEnvFile, "env-file", "", "Load VAKIT_* variables from this file (default: .env when present)")
	pf.BoolVar(&FlagOffline, "offline", false, "Never refresh the schedule over the network")

	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newCountriesCmd())
	rootCmd.AddCommand(newCitiesCmd())
	rootCmd.AddCommand(newDistrictsCmd())
	rootCmd.AddCommand(newSelectCmd())
	rootCmd.AddCommand(newLocateCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("vakit %s\n", version)
}

// openSession loads the environment, opens the store and reads the
// preferences document.
func openSession(cmd *cobra.Command) error {
	if FlagTimeFormat != "" && FlagTimeFormat != "12h" && FlagTimeFormat != "24h" {
		return fmt.Errorf("invalid --time-format %q: must be \"12h\" or \"24h\"", FlagTimeFormat)
	}

	var files []string
	if FlagEnvFile != "" {
		files = append(files, FlagEnvFile)
	}
	env, err := config.LoadEnv(files...)
	if err != nil {
		return err
	}
	loadedEnv = env

	spec := env.Store
	if flagWasSet(cmd, "store") {
		spec = FlagStore
	}
	b, err := store.Open(cmd.Context(), spec, nil)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	cfg, err := b.Load(cmd.Context())
	if err != nil {
		b.Close()
		return fmt.Errorf("failed to load config: %w", err)
	}

	backend = b
	loadedConfig = cfg
	return nil
}

func closeSession() error {
	if backend == nil {
		return nil
	}
	err := backend.Close()
	backend = nil
	return err
}

// saveConfig writes the loaded document back to the store.
func saveConfig(cmd *cobra.Command) error {
	return backend.Save(cmd.Context(), loadedConfig)
}

// timeLayout returns the Go layout for the effective time format:
// CLI flag > config file > default ("24h").
func timeLayout(cmd *cobra.Command) string {
	format := loadedConfig.TimeFormatOrDefault()
	if flagWasSet(cmd, "time-format") && FlagTimeFormat != "" {
		format = FlagTimeFormat
	}
	return prayer.TimeLayout(format)
}

// cacheDir applies the priority CLI flag > environment > config file.
func cacheDir(cmd *cobra.Command) string {
	switch {
	case flagWasSet(cmd, "cache-dir"):
		return FlagCacheDir
	case loadedEnv.CacheDir != "":
		return loadedEnv.CacheDir
	default:
		return loadedConfig.CacheDir
	}
}

// newClient returns an API client, pointed at VAKIT_API_URL when set.
func newClient() *api.Client {
	c := api.NewClient()
	if loadedEnv.APIURL != "" {
		c.BaseURL = loadedEnv.APIURL
	}
	return c
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(cmd *cobra.Command, name string) bool {
	return changed(cmd.Flags(), name) || changed(cmd.Root().PersistentFlags(), name)
}

func changed(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}
