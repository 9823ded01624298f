package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Listener is the part of *pq.Listener used by ChangeHub.
type Listener interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
}

// NewListener connects a pq.Listener to Channel. Connection events are
// logged; the listener reconnects on its own.
func NewListener(dsn string, log *zap.Logger) (*pq.Listener, error) {
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Info("change listener connected")
		case pq.ListenerEventDisconnected:
			log.Warn("change listener disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			log.Info("change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Error("change listener connection attempt failed", zap.Error(err))
		}
	})
	if err := l.Listen(Channel); err != nil {
		l.Close()
		return nil, fmt.Errorf("listen %s: %w", Channel, err)
	}
	return l, nil
}

// ChangeHub fans collection change notifications out to subscribers.
type ChangeHub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func(context.Context)
	log  *zap.Logger
}

func NewChangeHub(log *zap.Logger) *ChangeHub {
	return &ChangeHub{subs: make(map[string]map[int]func(context.Context)), log: log}
}

// Subscribe registers fn for changes of collection and returns the function
// that removes it.
func (h *ChangeHub) Subscribe(collection string, fn func(context.Context)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]func(context.Context))
	}
	h.subs[collection][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[collection], id)
		})
	}
}

// Notify calls every subscriber of collection. An empty collection notifies
// all subscribers.
func (h *ChangeHub) Notify(ctx context.Context, collection string) {
	h.mu.Lock()
	var fns []func(context.Context)
	for name, subs := range h.subs {
		if collection != "" && name != collection {
			continue
		}
		for _, fn := range subs {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}

// Start consumes l in a goroutine until ctx is done or the notification
// channel is closed. A nil notification follows a reconnect, when changes may
// have been missed, and refreshes every collection. The connection is pinged
// every interval without traffic.
func (h *ChangeHub) Start(ctx context.Context, l Listener, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-l.NotificationChannel():
				if !ok {
					h.log.Warn("change listener closed")
					return
				}
				if n == nil {
					h.log.Info("refreshing all collections after reconnect")
					h.Notify(ctx, "")
					continue
				}
				h.log.Debug("collection changed", zap.String("collection", n.Extra))
				h.Notify(ctx, n.Extra)
			case <-ticker.C:
				if err := l.Ping(); err != nil {
					h.log.Error("failed to ping change listener", zap.Error(err))
				}
			}
		}
	}()
}
