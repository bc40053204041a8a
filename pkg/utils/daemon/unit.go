package daemon

import "strings"

const unitTemplate = `[Unit]
Description=tally calculator daemon
After=network.target

[Service]
Type=simple
ExecStart=/path/to/tally daemon --config=/path/to/config --daemon-socket=/path/to/socket
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure

[Install]
WantedBy=multi-user.target
`

// UnitFile returns the systemd unit that runs exePath as the daemon.
func UnitFile(exePath, configPath, socketPath string) string {
	return strings.NewReplacer(
		"/path/to/tally", exePath,
		"/path/to/config", configPath,
		"/path/to/socket", socketPath,
	).Replace(unitTemplate)
}
