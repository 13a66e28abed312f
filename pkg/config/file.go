package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		PollIntervalSeconds:           ptr.To(60),
		ChargingModePolicy:            ptr.To("rising-edge"),
		NotchPolicy:                   ptr.To("strict"),
		PowerSource:                   ptr.To("auto"),
		ModeHoldSeconds:               ptr.To(5),
		DesktopNotifications:          ptr.To(false),
		NotificationSource:            ptr.To("simulated"),
		SimulatedNotificationSchedule: ptr.To(""),
		AllowNonRootAccess:            ptr.To(false),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk form. Unset fields take their defaults.
type RawFileConfig struct {
	PollIntervalSeconds           *int    `json:"pollIntervalSeconds,omitempty"`
	ChargingModePolicy            *string `json:"chargingModePolicy,omitempty"`
	NotchPolicy                   *string `json:"notchPolicy,omitempty"`
	PowerSource                   *string `json:"powerSource,omitempty"`
	ModeHoldSeconds               *int    `json:"modeHoldSeconds,omitempty"`
	DesktopNotifications          *bool   `json:"desktopNotifications,omitempty"`
	NotificationSource            *string `json:"notificationSource,omitempty"`
	SimulatedNotificationSchedule *string `json:"simulatedNotificationSchedule,omitempty"`
	AllowNonRootAccess            *bool   `json:"allowNonRootAccess,omitempty"`
}

// NewRawFileConfigFromConfig returns the effective values of c, with every
// field set.
func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		PollIntervalSeconds:           ptr.To(c.PollIntervalSeconds()),
		ChargingModePolicy:            ptr.To(c.ChargingModePolicy()),
		NotchPolicy:                   ptr.To(c.NotchPolicy()),
		PowerSource:                   ptr.To(c.PowerSource()),
		ModeHoldSeconds:               ptr.To(c.ModeHoldSeconds()),
		DesktopNotifications:          ptr.To(c.DesktopNotifications()),
		NotificationSource:            ptr.To(c.NotificationSource()),
		SimulatedNotificationSchedule: ptr.To(c.SimulatedNotificationSchedule()),
		AllowNonRootAccess:            ptr.To(c.AllowNonRootAccess()),
	}, nil
}

// Path returns the file the configuration is loaded from.
func (f *File) Path() string { return f.filepath }

func (f *File) raw() *RawFileConfig {
	if f.c == nil {
		panic("config is nil")
	}
	return f.c
}

func (f *File) PollIntervalSeconds() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().PollIntervalSeconds, *defaultFileConfig.PollIntervalSeconds)
}

func (f *File) ChargingModePolicy() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().ChargingModePolicy, *defaultFileConfig.ChargingModePolicy)
}

func (f *File) NotchPolicy() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().NotchPolicy, *defaultFileConfig.NotchPolicy)
}

func (f *File) PowerSource() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().PowerSource, *defaultFileConfig.PowerSource)
}

func (f *File) ModeHoldSeconds() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().ModeHoldSeconds, *defaultFileConfig.ModeHoldSeconds)
}

func (f *File) DesktopNotifications() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().DesktopNotifications, *defaultFileConfig.DesktopNotifications)
}

func (f *File) NotificationSource() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().NotificationSource, *defaultFileConfig.NotificationSource)
}

func (f *File) SimulatedNotificationSchedule() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().SimulatedNotificationSchedule, *defaultFileConfig.SimulatedNotificationSchedule)
}

func (f *File) AllowNonRootAccess() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ptr.Deref(f.raw().AllowNonRootAccess, *defaultFileConfig.AllowNonRootAccess)
}

func (f *File) SetPollIntervalSeconds(i int) {
	if err := ValidatePollInterval(i); err != nil {
		panic(err.Error())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().PollIntervalSeconds = &i
}

func (f *File) SetChargingModePolicy(s string) {
	if s != "rising-edge" && s != "every-poll" {
		panic("charging mode policy must be rising-edge or every-poll")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().ChargingModePolicy = &s
}

func (f *File) SetNotchPolicy(s string) {
	if s != "strict" && s != "inset" {
		panic("notch policy must be strict or inset")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().NotchPolicy = &s
}

func (f *File) SetPowerSource(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().PowerSource = &s
}

func (f *File) SetModeHoldSeconds(i int) {
	if i < 0 {
		panic("mode hold must not be negative")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().ModeHoldSeconds = &i
}

func (f *File) SetDesktopNotifications(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().DesktopNotifications = &b
}

func (f *File) SetNotificationSource(s string) {
	if s == "" {
		panic("notification source must not be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().NotificationSource = &s
}

func (f *File) SetSimulatedNotificationSchedule(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().SimulatedNotificationSchedule = &s
}

func (f *File) SetAllowNonRootAccess(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw().AllowNonRootAccess = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing file means defaults. Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// json.Decoder cannot tell an empty file from a truncated one.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create config directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"pollIntervalSeconds":           f.PollIntervalSeconds(),
		"chargingModePolicy":            f.ChargingModePolicy(),
		"notchPolicy":                   f.NotchPolicy(),
		"powerSource":                   f.PowerSource(),
		"modeHoldSeconds":               f.ModeHoldSeconds(),
		"desktopNotifications":          f.DesktopNotifications(),
		"notificationSource":            f.NotificationSource(),
		"simulatedNotificationSchedule": f.SimulatedNotificationSchedule(),
		"allowNonRootAccess":            f.AllowNonRootAccess(),
	}
}
