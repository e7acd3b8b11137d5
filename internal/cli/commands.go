package cli

import (
	"fmt"
	"strings"

	"github.com/smokyabdulrahman/vakit/internal/config"
	"github.com/smokyabdulrahman/vakit/internal/store"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  vakit config set district_id 9541\n  vakit config set warning_minutes 10\n  vakit config set time_format 12h",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Restore all settings to defaults. The stored schedule and lookup lists are dropped too.",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print where the preferences are stored",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := loadedConfig

	if FlagJSON {
		data, err := cfg.Encode()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	fmt.Fprintf(out, "  Configuration (%s)\n\n", storeLocation())

	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		if val == "" {
			val = "(not set)"
		}
		fmt.Fprintf(out, "  %-16s %s\n", key, val)
	}

	fmt.Fprintf(out, "\n  %-16s %d days\n", "prayer_times", len(cfg.PrayerTimes))
	if keys := cfg.PrayerTimes.Keys(); len(keys) > 0 {
		fmt.Fprintf(out, "  %-16s %s to %s\n", "", keys[0], keys[len(keys)-1])
	}
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := loadedConfig.Set(key, value); err != nil {
		return err
	}
	if err := saveConfig(cmd); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet prints a single value.
func runConfigGet(cmd *cobra.Command, args []string) error {
	val, err := loadedConfig.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

// runConfigReset deletes the config file, or overwrites the document in
// other stores.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if f, ok := backend.(*store.File); ok {
		if err := config.ResetAt(f.Path); err != nil {
			return err
		}
	} else {
		defaults := config.Defaults()
		if err := backend.Save(cmd.Context(), &defaults); err != nil {
			return err
		}
	}

	defaults := config.Defaults()
	loadedConfig = &defaults
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), storeLocation())
	return nil
}

// storeLocation names where the document lives: a file path, or the store
// spec for the other backends.
func storeLocation() string {
	if f, ok := backend.(*store.File); ok {
		return f.Path
	}
	if loadedEnv.Store != "" && FlagStore == "" {
		return loadedEnv.Store
	}
	return FlagStore
}
