package gallery

import (
	"testing"
	"time"
)

func TestDebouncerCommitsOnceAfterQuietPeriod(t *testing.T) {
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(300 * time.Millisecond)

	// a burst of keystrokes, each within the quiet period of the last
	d.Observe("s", base)
	d.Observe("su", base.Add(100*time.Millisecond))
	d.Observe("sun", base.Add(200*time.Millisecond))
	d.Observe("sunset", base.Add(250*time.Millisecond))

	if _, fired := d.Expire(base.Add(400 * time.Millisecond)); fired {
		t.Fatal("commit fired before the last keystroke's quiet period elapsed")
	}

	value, fired := d.Expire(base.Add(550 * time.Millisecond))
	if !fired {
		t.Fatal("commit did not fire after the quiet period")
	}
	if value != "sunset" {
		t.Errorf("committed %q, want the final value %q", value, "sunset")
	}

	// nothing further pending
	if _, fired := d.Expire(base.Add(time.Hour)); fired {
		t.Error("a second expiry fired without a new keystroke")
	}
}

func TestDebouncerTrimsCommittedValue(t *testing.T) {
	base := time.Now()
	d := NewDebouncer(300 * time.Millisecond)

	d.Observe("  beach  ", base)
	value, fired := d.Expire(base.Add(time.Second))
	if !fired {
		t.Fatal("commit did not fire")
	}
	if value != "beach" {
		t.Errorf("committed %q, want trimmed %q", value, "beach")
	}
	if d.Committed() != "beach" {
		t.Errorf("Committed() = %q, want %q", d.Committed(), "beach")
	}
}

func TestDebouncerRestart(t *testing.T) {
	base := time.Now()
	d := NewDebouncer(300 * time.Millisecond)

	d.Observe("a", base)
	// a late keystroke pushes the deadline out
	d.Observe("ab", base.Add(290*time.Millisecond))

	if _, fired := d.Expire(base.Add(310 * time.Millisecond)); fired {
		t.Fatal("original deadline fired after a restart")
	}
	if d.State() != DebouncePending {
		t.Fatalf("State() = %v, want pending", d.State())
	}
	if _, fired := d.Expire(base.Add(590 * time.Millisecond)); !fired {
		t.Fatal("restarted deadline did not fire")
	}
}

func TestDebouncerReset(t *testing.T) {
	base := time.Now()
	d := NewDebouncer(300 * time.Millisecond)

	d.Observe("query", base)
	d.Expire(base.Add(time.Second))
	d.Observe("more", base.Add(2*time.Second))
	d.Reset()

	if d.State() != DebounceIdle {
		t.Errorf("State() = %v, want idle", d.State())
	}
	if d.Committed() != "" {
		t.Errorf("Committed() = %q, want empty", d.Committed())
	}
	if _, fired := d.Expire(base.Add(time.Hour)); fired {
		t.Error("expiry fired after reset")
	}
}
