package gui

const (
	quitTooltip = `Quit the island menubar app, but keep the island daemon running.

The daemon keeps polling the battery and accepting notifications. You can still inspect it with "island status" or "island watch".`
	simulateTooltip = `Post a simulated notification to the island. Posts are rate limited by the daemon.`
	offlineTitle    = "🚫 Offline"
)
