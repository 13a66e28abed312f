package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/island/pkg/battery"
	"github.com/charlie0129/island/pkg/config"
	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/notch"
)

type statusData struct {
	state     *island.Snapshot
	notch     *notch.Info
	telemetry *battery.Telemetry
	config    *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	state, err := apiClient.GetState()
	if err != nil {
		return nil, fmt.Errorf("failed to get island state: %w", err)
	}

	n, err := apiClient.GetNotch()
	if err != nil {
		return nil, fmt.Errorf("failed to get notch info: %w", err)
	}

	telemetry, err := apiClient.GetTelemetry()
	if err != nil {
		return nil, fmt.Errorf("failed to get battery telemetry: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		state:     state,
		notch:     n,
		telemetry: telemetry,
		config:    conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of island",
		Long:    `Get island state, battery observer status, notch geometry and configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			printStatus(cmd.OutOrStdout(), data, time.Now())
			return nil
		},
	}
}

func printStatus(w io.Writer, data *statusData, now time.Time) {
	conf := config.NewFileFromConfig(data.config, "")
	st := data.state

	fmt.Fprintln(w, bold("Island:"))
	fmt.Fprintf(w, "  Mode: %s\n", modeText(st.Mode))
	if st.Notification != nil {
		fmt.Fprintf(w, "  Notification: %s\n", bold("%s", notificationText(st.Notification)))
	}
	fmt.Fprintf(w, "  Mode requests: %s\n", bold("%d", st.ModeRequests))
	fmt.Fprintf(w, "  Notch: %s\n", bold("%s", notchText(data.notch)))

	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("Battery:"))
	fmt.Fprintf(w, "  Level: %s\n", bold("%d%%", st.BatteryLevel))
	if st.IsCharging {
		fmt.Fprintf(w, "  State: %s\n", color.New(color.Bold, color.FgGreen).Sprint("charging"))
	} else {
		fmt.Fprintf(w, "  State: %s\n", bold("not charging"))
	}
	if st.PowerSource != "" {
		fmt.Fprintf(w, "  Power source: %s\n", bold("%s", st.PowerSource))
	}
	fmt.Fprintf(w, "  Last poll: %s\n", bold("%s", lastPollText(st.LastPoll, now)))
	if st.LastPollError != "" {
		fmt.Fprintf(w, "  Last error: %s\n", color.New(color.Bold, color.FgRed).Sprint(st.LastPollError))
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("Battery observer:"))
	t := data.telemetry
	fmt.Fprintf(w, "  Running: %s\n", bool2Text(t.Running))
	fmt.Fprintf(w, "  Backend: %s\n", bold("%s", t.Source))
	fmt.Fprintf(w, "  Interval: %s\n", bold("%s", t.Interval))
	fmt.Fprintf(w, "  Charging mode policy: %s\n", bold("%s", t.Policy))
	fmt.Fprintf(w, "  Polls recorded: %s\n", bold("%d", len(t.Polls)))
	if t.MissedPolls > 0 {
		fmt.Fprintf(w, "  Missed polls: %s (the system was probably asleep)\n", bold("%d", t.MissedPolls))
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("Configuration:"))
	fmt.Fprintf(w, "  Poll interval: %s\n", bold("%ds", conf.PollIntervalSeconds()))
	fmt.Fprintf(w, "  Notch policy: %s\n", bold("%s", conf.NotchPolicy()))
	fmt.Fprintf(w, "  Mode hold: %s\n", bold("%ds", conf.ModeHoldSeconds()))
	fmt.Fprintf(w, "  Desktop notifications: %s\n", bool2Text(conf.DesktopNotifications()))
	if s := conf.SimulatedNotificationSchedule(); s != "" {
		fmt.Fprintf(w, "  Simulated notification schedule: %s\n", bold("%s", s))
	}
	fmt.Fprintf(w, "  Allow other users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
}

func modeText(m island.Mode) string {
	switch m {
	case island.ModeBattery:
		return color.New(color.Bold, color.FgGreen).Sprint(m)
	case island.ModeNotification:
		return color.New(color.Bold, color.FgYellow).Sprint(m)
	case island.ModeExpanded:
		return color.New(color.Bold, color.FgCyan).Sprint(m)
	default:
		return bold("%s", m)
	}
}

func notificationText(n *island.Notification) string {
	if n.App == "" {
		return n.Title
	}
	return n.App + ": " + n.Title
}

func notchText(n *notch.Info) string {
	switch {
	case n == nil || !n.HasNotch:
		return "none"
	case n.Rect == nil:
		return "present, position unknown"
	default:
		return fmt.Sprintf("%gx%g at (%g, %g)", n.Rect.Width, n.Rect.Height, n.Rect.X, n.Rect.Y)
	}
}

func lastPollText(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	return humanize.RelTime(at, now, "ago", "from now")
}
