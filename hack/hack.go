// Package hack holds files embedded into the binary.
package hack

import _ "embed"

// LaunchAgentPlistTemplate is a text/template for the per-user launchd agent
// that runs the daemon.
//
//go:embed launchagent.plist.tmpl
var LaunchAgentPlistTemplate string
