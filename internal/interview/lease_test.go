package interview

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestLeaseRenews(t *testing.T) {
	var n atomic.Int32
	l := newLease(5*time.Millisecond, func() { n.Add(1) })
	defer l.Stop()

	waitFor(t, "renewals", func() bool { return n.Load() >= 3 })
}

func TestLeaseStopIdempotent(t *testing.T) {
	l := newLease(time.Millisecond, func() {})
	l.Stop()
	l.Stop()
	l.Stop()
}

func TestLeaseNilSafe(t *testing.T) {
	var l *lease
	l.Stop() // must not panic

	if got := newLease(0, func() {}); got != nil {
		t.Error("zero interval should disable the lease")
	}
	if got := newLease(time.Second, nil); got != nil {
		t.Error("nil renew should disable the lease")
	}
}

func TestLeaseStopsRenewing(t *testing.T) {
	var n atomic.Int32
	l := newLease(2*time.Millisecond, func() { n.Add(1) })
	waitFor(t, "first renewal", func() bool { return n.Load() >= 1 })
	l.Stop()
	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	if n.Load() != after {
		t.Error("renew fired after Stop")
	}
}
