package gui

import (
	"context"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/island/pkg/client"
	"github.com/charlie0129/island/pkg/version"
)

func NewGUICommand(unixSocketPath *string, groupID string) *cobra.Command {
	return &cobra.Command{
		Use:     "gui",
		Short:   "Start the island menubar app",
		GroupID: groupID,
		Long: `Start the island menubar app.

The menubar app shows the island mode and battery level reported by the daemon, and updates as soon as the daemon publishes a change.`,
		Run: func(_ *cobra.Command, _ []string) {
			Run(*unixSocketPath)
		},
	}
}

// Run blocks until the menubar app quits.
func Run(unixSocketPath string) {
	logrus.WithField("version", version.Version).WithField("gitCommit", version.GitCommit).Info("island gui")

	api := client.NewClient(unixSocketPath)
	ctx, cancel := context.WithCancel(context.Background())

	systray.Run(func() {
		m := newMenu(api)
		go m.handleClicks(ctx)
		go m.watch(ctx)
	}, func() {
		cancel()
		logrus.Info("island gui exiting")
	})
}
