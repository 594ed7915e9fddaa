package runs

import (
	"testing"
	"time"
)

func TestPollLimiterWindow(t *testing.T) {
	current := time.Now()
	limiter := newPollLimiter(time.Second, func() time.Time { return current })

	if !limiter.Allow("run-1", "1.2.3.4") {
		t.Fatal("first poll denied")
	}
	if limiter.Allow("run-1", "1.2.3.4") {
		t.Fatal("second poll inside window allowed")
	}
	if !limiter.Allow("run-1", "5.6.7.8") {
		t.Fatal("different client denied")
	}
	if !limiter.Allow("run-2", "1.2.3.4") {
		t.Fatal("different run denied")
	}

	current = current.Add(1100 * time.Millisecond)
	if !limiter.Allow("run-1", "1.2.3.4") {
		t.Fatal("poll after window denied")
	}
}

func TestPollLimiterNil(t *testing.T) {
	var limiter *pollLimiter
	if !limiter.Allow("run-1", "ip") {
		t.Fatal("nil limiter must allow")
	}
	if limiter.RetryAfterSeconds() != 1 {
		t.Errorf("RetryAfterSeconds = %d", limiter.RetryAfterSeconds())
	}
}
