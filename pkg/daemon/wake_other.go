//go:build !darwin || !cgo

package daemon

import "github.com/sirupsen/logrus"

func listenWakeNotifications(func()) error {
	logrus.Debug("system wake notifications are not available on this platform")
	return nil
}

func stopListeningWakeNotifications() {}
