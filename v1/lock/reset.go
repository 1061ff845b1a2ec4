package lock

import (
	"context"
	"strings"

	"github.com/mirkobrombin/go-latch/v1/metrics"
	"github.com/mirkobrombin/go-latch/v1/notify"
	"github.com/mirkobrombin/go-latch/v1/store"
)

// resetBatch bounds how many keys a single delete round trip carries.
const resetBatch = 100

// Reset forcefully deletes the holder and signal keys regardless of the
// current owner, then wakes any parked waiters so one of them wins
// immediately. Meant for crash recovery; safe to run concurrently with live
// acquisition traffic.
func (l *Lock) Reset(ctx context.Context) error {
	l.stopRenewal()
	if err := l.store.Delete(ctx, l.holderKey, l.signalKey); err != nil {
		return err
	}
	l.mu.Lock()
	wasHeld := l.held
	l.held = false
	l.mu.Unlock()
	if err := l.store.Signal(ctx, l.signalKey, "1", signalTTL); err != nil {
		return err
	}
	metrics.ResetCounter.Inc()
	if wasHeld {
		metrics.HoldersGauge.Dec()
	}
	l.publish(ctx, notify.KindReset)
	return nil
}

// ResetAll forcefully releases every lock in the store, waking waiters of
// each one. With no locks held it is a no-op that creates no keys. Meant
// for crash recovery at process startup.
func ResetAll(ctx context.Context, st store.Store) error {
	holders, err := st.Keys(ctx, holderPrefix+"*")
	if err != nil {
		return err
	}
	signals, err := st.Keys(ctx, signalPrefix+"*")
	if err != nil {
		return err
	}
	keys := append(append([]string(nil), holders...), signals...)
	for len(keys) > 0 {
		n := len(keys)
		if n > resetBatch {
			n = resetBatch
		}
		if err := st.Delete(ctx, keys[:n]...); err != nil {
			return err
		}
		keys = keys[n:]
	}
	for _, holder := range holders {
		name := strings.TrimPrefix(holder, holderPrefix)
		if err := st.Signal(ctx, signalPrefix+name, "1", signalTTL); err != nil {
			return err
		}
		metrics.ResetCounter.Inc()
	}
	return nil
}
