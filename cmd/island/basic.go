package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/island/pkg/client"
	"github.com/charlie0129/island/pkg/events"
	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewNotchCommand() *cobra.Command {
	all := false

	cmd := &cobra.Command{
		Use:     "notch",
		Short:   "Show the notch of the main display",
		GroupID: gBasic,
		Long: `Show whether the main display has a notch, and where it is.

Use --all to list every display.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all {
				n, err := apiClient.GetNotch()
				if err != nil {
					return fmt.Errorf("failed to get notch info: %w", err)
				}
				cmd.Printf("Main display notch: %s\n", bold("%s", notchText(n)))
				return nil
			}

			screens, err := apiClient.GetAllNotches()
			if err != nil {
				return fmt.Errorf("failed to get notch info: %w", err)
			}
			if len(screens) == 0 {
				cmd.Println("No displays found.")
				return nil
			}
			for _, s := range screens {
				n := s.Info
				cmd.Printf("Display %d (%gx%g): %s\n", s.Index, s.Frame.Width, s.Frame.Height, bold("%s", notchText(&n)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show every display")

	return cmd
}

func NewModeCommand() *cobra.Command {
	names := make([]string, 0, len(island.Modes))
	for _, m := range island.Modes {
		names = append(names, string(m))
	}

	return &cobra.Command{
		Use:       "mode <" + strings.Join(names, "|") + ">",
		Short:     "Request an island mode",
		GroupID:   gBasic,
		ValidArgs: names,
		Long: `Request an island mode.

Modes other than idle fall back to idle after the mode hold time (modeHoldSeconds in the config) unless requested again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := island.ParseMode(args[0])
			if err != nil {
				return err
			}

			st, err := apiClient.SetMode(mode)
			if err != nil {
				return fmt.Errorf("failed to set mode: %w", err)
			}

			logrus.WithField("modeRequests", st.ModeRequests).Infof("island mode is now %s", st.Mode)
			return nil
		},
	}
}

func NewNotifyCommand() *cobra.Command {
	app := ""

	cmd := &cobra.Command{
		Use:     "notify <title> [body]",
		Short:   "Post a notification to the island",
		GroupID: gBasic,
		Long: `Post a notification to the island.

The island switches to notification mode and shows the title. Posts are rate limited by the daemon.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			body := ""
			if len(args) > 1 {
				body = args[1]
			}

			n, err := apiClient.PostNotification(app, args[0], body)
			if err != nil {
				var se *client.StatusError
				if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
					return fmt.Errorf("too many notifications, try again later")
				}
				return fmt.Errorf("failed to post notification: %w", err)
			}

			logrus.WithField("id", n.ID).Infof("notification posted")
			return nil
		},
	}

	cmd.Flags().StringVar(&app, "app", "island", "Name of the app the notification is from")

	return cmd
}

func NewWatchCommand() *cobra.Command {
	raw := false

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Stream island events",
		GroupID: gBasic,
		Long: `Stream island events until interrupted.

Each state change is printed as one line. Use --json to print raw events instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ch, err := apiClient.SubscribeEvents(ctx)
			if err != nil {
				return fmt.Errorf("failed to watch events: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for ev := range ch {
				if raw {
					if err := enc.Encode(ev); err != nil {
						return err
					}
					continue
				}
				line, err := eventLine(ev)
				if err != nil {
					logrus.WithError(err).Warnf("failed to decode %s event", ev.Name)
					continue
				}
				if line != "" {
					cmd.Println(line)
				}
			}

			if ctx.Err() == nil {
				return fmt.Errorf("daemon closed the event stream")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "json", false, "Print raw events as JSON lines")

	return cmd
}

// eventLine renders one event for the watch command. Events without a
// textual form render as "".
func eventLine(ev events.Event) (string, error) {
	switch ev.Name {
	case events.StateChanged:
		st, err := events.DecodeAs[island.Snapshot](ev)
		if err != nil {
			return "", err
		}
		line := fmt.Sprintf("%s  mode=%s battery=%d%% charging=%t",
			st.UpdatedAt.Local().Format("15:04:05"), st.Mode, st.BatteryLevel, st.IsCharging)
		if st.Notification != nil {
			line += fmt.Sprintf(" notification=%q", notificationText(st.Notification))
		}
		return line, nil
	case events.ModeChanged:
		mc, err := events.DecodeAs[events.ModeChangedEvent](ev)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("mode %s -> %s (request #%d)", mc.From, mc.To, mc.Count), nil
	default:
		return "", nil
	}
}
