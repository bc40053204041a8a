package daemon

import (
	"strings"
	"testing"
)

func TestUnitFile(t *testing.T) {
	unit := UnitFile("/usr/local/bin/tally", "/etc/tally.json", "/run/tally.sock")

	want := "ExecStart=/usr/local/bin/tally daemon --config=/etc/tally.json --daemon-socket=/run/tally.sock\n"
	if !strings.Contains(unit, want) {
		t.Errorf("unit does not contain %q:\n%s", want, unit)
	}
	if strings.Contains(unit, "/path/to/") {
		t.Errorf("unit has unreplaced placeholders:\n%s", unit)
	}
	if !strings.Contains(unit, "ExecReload=/bin/kill -HUP $MAINPID") {
		t.Errorf("unit does not reload with SIGHUP:\n%s", unit)
	}
}
