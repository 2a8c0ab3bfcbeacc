package timeouts_test

import (
	"testing"
	"time"

	"github.com/alumlink/alumlink/internal/app/system/timeouts"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()
	if timeouts.Ping() != timeouts.DefaultPing {
		t.Errorf("Ping() = %v, want %v", timeouts.Ping(), timeouts.DefaultPing)
	}
	if timeouts.Long() != timeouts.DefaultLong {
		t.Errorf("Long() = %v, want %v", timeouts.Long(), timeouts.DefaultLong)
	}
}

func TestConfigure_ZeroValuesIgnored(t *testing.T) {
	timeouts.Reset()
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Medium: 3 * time.Second})
	if timeouts.Medium() != 3*time.Second {
		t.Errorf("Medium() = %v, want 3s", timeouts.Medium())
	}
	// Unset fields keep their current values.
	if timeouts.Short() != timeouts.DefaultShort {
		t.Errorf("Short() = %v, want default %v", timeouts.Short(), timeouts.DefaultShort)
	}

	timeouts.Configure(timeouts.Config{})
	if timeouts.Medium() != 3*time.Second {
		t.Errorf("Medium() = %v, want the configured 3s to survive", timeouts.Medium())
	}
}
