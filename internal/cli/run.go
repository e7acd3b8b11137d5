package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smokyabdulrahman/vakit/internal/app"
	"github.com/smokyabdulrahman/vakit/internal/display"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagHTTPAddr       string
	flagMQTTBroker     string
	flagMQTTTopic      string
	flagTelegramToken  string
	flagTelegramChatID int64
	flagQuiet          bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the live countdown",
		Long: "Run the countdown until interrupted. The schedule is refreshed when it no longer\n" +
			"covers today and tomorrow, and a warning is sent the configured number of minutes\n" +
			"before each prayer. Flags override the VAKIT_* environment variables.",
		Args: cobra.NoArgs,
		RunE: runDaemon,
	}

	f := cmd.Flags()
	f.StringVar(&flagHTTPAddr, "http", "", "Serve the status API on this address, e.g. 127.0.0.1:8137")
	f.StringVar(&flagMQTTBroker, "mqtt-broker", "", "Publish notifications to this MQTT broker, e.g. tcp://localhost:1883")
	f.StringVar(&flagMQTTTopic, "mqtt-topic", "", "MQTT topic (default: vakit/events)")
	f.StringVar(&flagTelegramToken, "telegram-token", "", "Telegram bot token for notifications")
	f.Int64Var(&flagTelegramChatID, "telegram-chat", 0, "Telegram chat id to notify")
	f.BoolVar(&flagQuiet, "quiet", false, "Do not draw the countdown line")

	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	env := loadedEnv
	if flagWasSet(cmd, "http") {
		env.HTTPAddr = flagHTTPAddr
	}
	if flagWasSet(cmd, "mqtt-broker") {
		env.MQTTBroker = flagMQTTBroker
	}
	if flagWasSet(cmd, "mqtt-topic") {
		env.MQTTTopic = flagMQTTTopic
	}
	if flagWasSet(cmd, "telegram-token") {
		env.TelegramToken = flagTelegramToken
	}
	if flagWasSet(cmd, "telegram-chat") {
		env.TelegramChatID = flagTelegramChatID
	}

	logger, err := app.NewLogger(env.Environment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	dc := app.DaemonConfig{
		Backend:        backend,
		Client:         newClient(),
		HTTPAddr:       env.HTTPAddr,
		MQTTBroker:     env.MQTTBroker,
		MQTTTopic:      env.MQTTTopic,
		TelegramToken:  env.TelegramToken,
		TelegramChatID: env.TelegramChatID,
		Console:        out,
		Logger:         logger,
	}
	if !flagQuiet {
		dc.Observer = &app.TerminalObserver{
			W:      out,
			Layout: timeLayout(cmd),
			Live:   out == os.Stdout && display.IsTerminal(os.Stdout),
		}
	}

	d, err := app.NewDaemon(ctx, dc)
	if err != nil {
		return err
	}
	if env.HTTPAddr != "" {
		logger.Info("status API enabled", zap.String("addr", env.HTTPAddr))
	}

	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("daemon failed: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
