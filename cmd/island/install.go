package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/island/pkg/config"
	daemonutils "github.com/charlie0129/island/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install island (current user)",
		GroupID: gInstallation,
		Long: `Install island daemon as a launchd agent of the current user.

This makes island run in the background and automatically start when you log in.

By default, only you can access the daemon. Use --allow-non-root-access to let other users on this Mac query it too.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("other users are allowed to access the island daemon.")
			} else {
				logrus.Info("only the current user is allowed to access the island daemon.")
			}

			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			err = daemonutils.Install(daemonutils.AgentOptions{
				ConfigPath: configPath,
				SocketPath: unixSocketPath,
				LogLevel:   logLevel,
			})
			if err != nil {
				return fmt.Errorf("failed to install daemon: %v", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("`launchd' will use current binary (%s) at login so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run ``island install'' again.\n", exePath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow other users to access island daemon.")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall island (current user)",
		GroupID: gInstallation,
		Long: `Uninstall island daemon from launchd.

This stops island and removes it from launchd.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := daemonutils.Uninstall()
			if err != nil {
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			fmt.Println("successfully uninstalled")

			cmd.Printf("Your config is kept in %s, in case you want to use `island' again. If you want a complete uninstall, you can remove both config file and island itself manually.\n", configPath)

			return nil
		},
	}
}
