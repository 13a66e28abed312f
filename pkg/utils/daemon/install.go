package daemon

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/hack"
)

// Label is the launchd label of the island agent.
const Label = "dev.island.daemon"

// AgentOptions are rendered into the launchd plist.
type AgentOptions struct {
	Label      string
	Executable string
	ConfigPath string
	SocketPath string
	LogLevel   string
	LogPath    string
}

var plistTemplate = template.Must(template.New("plist").Parse(hack.LaunchAgentPlistTemplate))

// PlistPath returns where the agent plist is installed for the current user.
func PlistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), nil
}

// RenderPlist renders the agent plist. Values are XML-escaped.
func RenderPlist(opts AgentOptions) (string, error) {
	if opts.Label == "" {
		opts.Label = Label
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "info"
	}
	if opts.LogPath == "" {
		opts.LogPath = "/tmp/island.log"
	}
	for _, p := range []*string{&opts.Label, &opts.Executable, &opts.ConfigPath, &opts.SocketPath, &opts.LogLevel, &opts.LogPath} {
		var b bytes.Buffer
		if err := xml.EscapeText(&b, []byte(*p)); err != nil {
			return "", err
		}
		*p = b.String()
	}

	var buf bytes.Buffer
	if err := plistTemplate.Execute(&buf, opts); err != nil {
		return "", fmt.Errorf("failed to render plist: %w", err)
	}
	return buf.String(), nil
}

// Install writes the launch agent for the current executable and loads it.
func Install(opts AgentOptions) error {
	// Get the path to the current executable
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get the path to the current executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the current executable: %w", err)
	}
	logrus.Infof("current executable path: %s", exePath)
	opts.Executable = exePath

	plist, err := RenderPlist(opts)
	if err != nil {
		return err
	}

	plistPath, err := PlistPath()
	if err != nil {
		return err
	}

	logrus.Infof("writing launch agent to %s", plistPath)

	err = os.MkdirAll(filepath.Dir(plistPath), 0755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(plistPath), err)
	}

	// warn if the file already exists
	if _, err = os.Stat(plistPath); err == nil {
		logrus.Warnf("%s already exists, overwriting", plistPath)
		_ = exec.Command("/bin/launchctl", "unload", plistPath).Run()
	}

	err = os.WriteFile(plistPath, []byte(plist), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", plistPath, err)
	}

	logrus.Infof("starting island daemon")

	err = exec.Command("/bin/launchctl", "load", plistPath).Run()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", plistPath, err)
	}

	return nil
}
