package debug

import "testing"

func TestSetEnabled(t *testing.T) {
	orig := enabled
	defer SetEnabled(orig)

	SetEnabled(true)
	if !Enabled() {
		t.Error("SetEnabled(true) not reflected")
	}
	if logger == nil {
		t.Error("enabling must initialize the logger")
	}
	// Must not panic with the logger live.
	Log("test message %d", 1)
	Dump("val", struct{ X int }{1})
	LogEnterExit("op")()

	SetEnabled(false)
	if Enabled() {
		t.Error("SetEnabled(false) not reflected")
	}
	Log("suppressed")
}
