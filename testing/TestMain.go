package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("LEDGER_TEST_MODE", "1")
		if os.Getenv("NOTIFY_ENABLED") == "" {
			_ = os.Setenv("NOTIFY_ENABLED", "false")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
