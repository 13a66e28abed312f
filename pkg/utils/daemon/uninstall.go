package daemon

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Uninstall unloads and removes the launch agent. A missing agent is not an
// error.
func Uninstall() error {
	plistPath, err := PlistPath()
	if err != nil {
		return err
	}

	// if the file doesn't exist, we don't need to remove it
	if _, err := os.Stat(plistPath); err != nil {
		if os.IsNotExist(err) {
			logrus.Infof("%s does not exist, nothing to uninstall", plistPath)
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", plistPath, err)
	}

	logrus.Infof("stopping island daemon")

	err = exec.Command("/bin/launchctl", "unload", plistPath).Run()
	if err != nil {
		return fmt.Errorf("failed to unload %s: %w", plistPath, err)
	}

	logrus.Infof("removing launch agent")

	err = os.Remove(plistPath)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", plistPath, err)
	}

	return nil
}
