package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/island/pkg/daemon"
	"github.com/charlie0129/island/pkg/notch"
	"github.com/charlie0129/island/pkg/power"
	"github.com/charlie0129/island/pkg/version"
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	var (
		allowNonRoot bool
		screens      []string
		batteries    []string
		powerSource  string
	)

	cmd := &cobra.Command{
		Use:     "daemon",
		Hidden:  true,
		Short:   "Run island daemon in the foreground",
		GroupID: gAdvanced,
		Long: `Run island daemon in the foreground.

--screen replaces the system displays with fixed geometry, one flag per display, the first one being the main display. For example:

  island daemon --screen '{"frame":{"x":0,"y":0,"width":1512,"height":982},"topInset":32,"auxiliaryTopLeft":{"x":0,"y":950,"width":662,"height":32},"auxiliaryTopRight":{"x":850,"y":950,"width":662,"height":32}}'

--battery replaces the system power sources with a fixed description keyed like IOKit, one flag per power source. For example:

  island daemon --battery '{"Name":"InternalBattery-0","Type":"InternalBattery","Current Capacity":87,"Is Charging":true}'

--power-source overrides the powerSource config key (auto, iokit, battery, smc). It is ignored when --battery is given.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("island daemon starting")

			opts := daemon.Options{AllowNonRoot: allowNonRoot}

			if len(screens) > 0 {
				parsed := make([]notch.Screen, 0, len(screens))
				for _, s := range screens {
					scr, err := notch.ParseStaticScreen(s)
					if err != nil {
						return err
					}
					parsed = append(parsed, scr)
				}
				opts.Screens = notch.NewStaticProvider(parsed...)
			}

			if len(batteries) > 0 {
				descs := make([]power.Description, 0, len(batteries))
				for _, b := range batteries {
					d, err := power.ParseStaticDescription(b)
					if err != nil {
						return err
					}
					descs = append(descs, d)
				}
				opts.Power = power.NewStatic(descs...)
			} else if powerSource != "" {
				src, err := power.New(powerSource)
				if err != nil {
					return err
				}
				opts.Power = src
			}

			return daemon.Run(configPath, unixSocketPath, opts)
		},
	}

	f := cmd.Flags()

	f.BoolVar(&allowNonRoot, "allow-non-root", false,
		"Allow other users to access the daemon.")
	f.StringArrayVar(&screens, "screen", nil,
		"Use fixed display geometry (JSON) instead of the system displays. Repeatable.")
	f.StringArrayVar(&batteries, "battery", nil,
		"Use a fixed power source description (JSON) instead of the system power sources. Repeatable.")
	f.StringVar(&powerSource, "power-source", "",
		"Power source backend, overriding the config file.")

	return cmd
}
