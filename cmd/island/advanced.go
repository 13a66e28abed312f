package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/island/pkg/battery"
	"github.com/charlie0129/island/pkg/config"
)

func NewPollIntervalCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "poll-interval [seconds]",
		Short:   "Set how often the battery is polled",
		GroupID: gAdvanced,
		Long: fmt.Sprintf(`Set how often the battery is polled, in seconds.

This is a number from %d to %d. The battery is also polled right after the system wakes up, so long intervals do not delay the island after sleep.`,
			config.MinPollIntervalSeconds, config.MaxPollIntervalSeconds),
		RunE: func(_ *cobra.Command, args []string) error {
			seconds, err := parseIntArg(args, "poll interval")
			if err != nil {
				return err
			}
			if err := config.ValidatePollInterval(seconds); err != nil {
				return err
			}

			ret, err := apiClient.SetPollInterval(seconds)
			if err != nil {
				return fmt.Errorf("failed to set poll interval: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set poll interval to %ds", seconds)

			return nil
		},
	}
}

func NewChargingPolicyCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "charging-policy <" + string(battery.PolicyRisingEdge) + "|" + string(battery.PolicyEveryPoll) + ">",
		Short:     "Set when charging requests the battery mode",
		GroupID:   gAdvanced,
		ValidArgs: []string{string(battery.PolicyRisingEdge), string(battery.PolicyEveryPoll)},
		Long: `Set when charging requests the battery mode.

rising-edge: request the battery mode once, when the Mac starts charging (default).
every-poll: request the battery mode on every poll while charging, which keeps the island in battery mode as long as the Mac is plugged in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			policy, err := battery.ParsePolicy(args[0])
			if err != nil {
				return err
			}

			ret, err := apiClient.SetChargingPolicy(policy)
			if err != nil {
				return fmt.Errorf("failed to set charging policy: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set charging policy to %s", policy)

			return nil
		},
	}
}
