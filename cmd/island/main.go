package main

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/island/pkg/client"
	"github.com/charlie0129/island/pkg/gui"
	"github.com/charlie0129/island/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = defaultSocketPath()
	configPath     = defaultConfigPath()
)

var apiClient *client.Client

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	gInstallation = "Installation:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
		gInstallation,
	}
)

// defaultSocketPath is per user so that several users can run their own
// daemon on a shared machine.
func defaultSocketPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("island-%d.sock", os.Getuid()))
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "island.json"
	}
	return filepath.Join(home, "Library", "Application Support", "island", "config.json")
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: island daemon is not running")
		fmt.Fprintln(os.Stderr, "Is the daemon running? Have you installed it with 'island install'?")
		fmt.Fprintf(os.Stderr, "  - The daemon is expected to listen on %s\n", unixSocketPath)
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - The daemon socket belongs to another user")
		fmt.Fprintln(os.Stderr, "  - Run the daemon with '--allow-non-root' or set allowNonRootAccess in its config to share it")
	}
}

func main() {
	// island does not need many threads.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}
	// AppKit and the menubar must run on the main thread.
	runtime.LockOSThread()

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "island",
		Short: "island shows charging and notification activity around the notch",
		Long: `island shows charging and notification activity around the notch.

A background daemon tracks the battery, incoming notifications and the notch
geometry of your displays, and publishes a single island state. The menubar
app, the "watch" command and third-party UIs render that state.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			// The daemon itself and the installer do not talk to a running daemon.
			switch cmd.Name() {
			case "daemon", "install", "uninstall", "version":
				return nil
			}

			if daemonVersion, err := apiClient.GetVersion(); err == nil {
				if clientVersion := version.Version; daemonVersion.Version != clientVersion {
					logrus.WithFields(logrus.Fields{
						"clientVersion": clientVersion,
						"daemonVersion": daemonVersion.Version,
					}).Warn("Version mismatch between client and daemon. Run 'island install' again to restart the daemon with this binary.")
				}
			} else if errors.Is(err, client.ErrNotFound) {
				logrus.Error("island daemon is too old to report its version.")
			}

			return nil
		},
	}

	if os.Getenv("ISLAND_RUN_GUI") != "" || path.Base(os.Args[0]) == "island-gui" {
		cmd.Run = func(_ *cobra.Command, _ []string) {
			gui.Run(unixSocketPath)
		}
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "island daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewNotchCommand(),
		NewModeCommand(),
		NewNotifyCommand(),
		NewWatchCommand(),
		NewPollIntervalCommand(),
		NewChargingPolicyCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
		gui.NewGUICommand(&unixSocketPath, gBasic),
	)

	return cmd
}
