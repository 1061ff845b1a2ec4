package lock

import (
	"context"
	"time"

	"github.com/mirkobrombin/go-latch/v1/metrics"
	"github.com/mirkobrombin/go-latch/v1/notify"
	"github.com/mirkobrombin/go-latch/v1/store"
)

type renewer struct {
	stopCh chan struct{}
	doneCh chan struct{}
}

// minRenewInterval floors the scheduler cadence. Sub-millisecond expiries
// would otherwise round the ticker interval down to zero.
const minRenewInterval = time.Millisecond

// startRenewal launches the renewal goroutine. The interval is two thirds of
// the expiry so at least one extension lands before the lease runs out even
// under scheduling jitter. Callers must hold l.mu.
func (l *Lock) startRenewal() *renewer {
	r := &renewer{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	interval := l.expiry * 2 / 3
	if interval < minRenewInterval {
		interval = minRenewInterval
	}
	go l.renewLoop(r, interval)
	return r
}

// stopRenewal stops the scheduler and waits for any in-flight extension to
// finish, so a release can never race a renewal into resurrecting the key.
func (l *Lock) stopRenewal() {
	l.mu.Lock()
	r := l.renew
	l.renew = nil
	l.mu.Unlock()
	if r != nil {
		close(r.stopCh)
		<-r.doneCh
	}
}

func (l *Lock) renewLoop(r *renewer, interval time.Duration) {
	defer close(r.doneCh)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			res, err := l.store.ExpireIfMatch(context.Background(), l.holderKey, l.ownerID, l.expiry)
			if err != nil {
				// Transient store trouble; the next tick retries while the
				// lease still lasts.
				continue
			}
			if res != store.Extended {
				l.lost(r)
				return
			}
			metrics.RenewalCounter.Inc()
			l.publish(context.Background(), notify.KindRenewed)
		}
	}
}

// lost records that the lock was taken over out-of-band and terminates the
// scheduler. Observers learn about it through the bus; the host process is
// never crashed.
func (l *Lock) lost(r *renewer) {
	l.mu.Lock()
	if l.renew == r {
		l.renew = nil
	}
	wasHeld := l.held
	l.held = false
	l.mu.Unlock()
	metrics.LostCounter.Inc()
	if wasHeld {
		metrics.HoldersGauge.Dec()
	}
	l.publish(context.Background(), notify.KindLost)
}
