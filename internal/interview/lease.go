package interview

import (
	"sync"
	"time"
)

// lease models the restart-to-avoid-timeout workaround as a periodic
// renewal loop: every interval the renew callback fires, which pauses and
// restarts the recognition engine before the platform cuts it off. The
// interval is deployment-tuned, not authoritative.
type lease struct {
	interval time.Duration
	renew    func()

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newLease(interval time.Duration, renew func()) *lease {
	if interval <= 0 || renew == nil {
		return nil
	}
	l := &lease{
		interval: interval,
		renew:    renew,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *lease) run() {
	defer close(l.done)
	t := time.NewTicker(l.interval)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			l.renew()
		}
	}
}

// Stop is idempotent and waits for the loop to exit.
func (l *lease) Stop() {
	if l == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}
