//go:build darwin && cgo

package daemon

/*
#cgo LDFLAGS: -framework CoreFoundation -framework IOKit
#include "wake_darwin.h"
*/
import "C"

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	wakeMu      sync.Mutex
	wakeHandler func()
)

//export islandSystemHasPoweredOn
func islandSystemHasPoweredOn() {
	logrus.Debugln("received kIOMessageSystemHasPoweredOn notification, system has finished waking up")
	wakeMu.Lock()
	h := wakeHandler
	wakeMu.Unlock()
	if h != nil {
		// Do not block the run loop.
		go h()
	}
}

// listenWakeNotifications blocks, running a CFRunLoop on a locked OS thread,
// until stopListeningWakeNotifications is called.
func listenWakeNotifications(onWake func()) error {
	wakeMu.Lock()
	wakeHandler = onWake
	wakeMu.Unlock()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logrus.Info("registered and listening system wake notifications")
	if int(C.islandListenWakeNotifications()) != 0 {
		return fmt.Errorf("IORegisterForSystemPower failed")
	}
	return nil
}

func stopListeningWakeNotifications() {
	C.islandStopListeningWakeNotifications()
	logrus.Info("stopped listening system wake notifications")
}
