package client

import (
	"encoding/json"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/island/pkg/battery"
	"github.com/charlie0129/island/pkg/config"
	"github.com/charlie0129/island/pkg/island"
	"github.com/charlie0129/island/pkg/notch"
	"github.com/charlie0129/island/pkg/notify"
	"github.com/charlie0129/island/pkg/power"
	"github.com/charlie0129/island/pkg/version"
)

func getJSON[T any](c *Client, path, what string) (T, error) {
	var v T
	ret, err := c.Get(path)
	if err != nil {
		return v, pkgerrors.Wrapf(err, "failed to get %s", what)
	}
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return v, pkgerrors.Wrapf(err, "failed to unmarshal %s", what)
	}
	return v, nil
}

func (c *Client) GetState() (*island.Snapshot, error) {
	s, err := getJSON[island.Snapshot](c, "/state", "state")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetNotch() (*notch.Info, error) {
	info, err := getJSON[notch.Info](c, "/notch", "notch")
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) GetAllNotches() ([]notch.ScreenNotch, error) {
	return getJSON[[]notch.ScreenNotch](c, "/notch?all=1", "notches")
}

// GetBattery makes the daemon poll the power source immediately.
func (c *Client) GetBattery() ([]power.Snapshot, error) {
	return getJSON[[]power.Snapshot](c, "/battery", "battery status")
}

func (c *Client) GetTelemetry() (*battery.Telemetry, error) {
	t, err := getJSON[battery.Telemetry](c, "/telemetry", "telemetry")
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	conf, err := getJSON[config.RawFileConfig](c, "/config", "config")
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Client) GetVersion() (*version.Info, error) {
	v, err := getJSON[version.Info](c, "/version", "version")
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) SetMode(mode island.Mode) (*island.Snapshot, error) {
	payload, err := json.Marshal(string(mode))
	if err != nil {
		return nil, err
	}
	ret, err := c.Put("/mode", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to set mode")
	}
	var s island.Snapshot
	if err := json.Unmarshal([]byte(ret), &s); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal state")
	}
	return &s, nil
}

func (c *Client) PostNotification(app, title, body string) (*island.Notification, error) {
	payload, err := json.Marshal(notify.PostRequest{App: app, Title: title, Body: body})
	if err != nil {
		return nil, err
	}
	ret, err := c.Post("/notifications", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to post notification")
	}
	var n island.Notification
	if err := json.Unmarshal([]byte(ret), &n); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal notification")
	}
	return &n, nil
}

func (c *Client) SetPollInterval(seconds int) (string, error) {
	ret, err := c.Put("/poll-interval", strconv.Itoa(seconds))
	return unquote(ret), err
}

func (c *Client) SetChargingPolicy(p battery.Policy) (string, error) {
	payload, err := json.Marshal(string(p))
	if err != nil {
		return "", err
	}
	ret, err := c.Put("/charging-policy", string(payload))
	return unquote(ret), err
}
