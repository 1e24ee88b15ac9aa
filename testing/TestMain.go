// Package testing puts the dashboard binaries into test mode. Blank-import it
// from a main package test so main() returns before touching the network.
package testing

import (
	"os"
	stdtesting "testing"

	"github.com/agrilens/dashboard/internal/app"
)

func init() {
	_ = os.Setenv(app.TestModeEnv, "true")
}

// TestMain runs m with test mode enabled.
func TestMain(m *stdtesting.M) {
	_ = os.Setenv(app.TestModeEnv, "true")
	app.RefreshTestMode()
	os.Exit(m.Run())
}
