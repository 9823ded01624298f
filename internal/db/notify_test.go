package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fakeListener struct {
	ch      chan *pq.Notification
	pingErr error
	pings   atomic.Int32
}

func (f *fakeListener) NotificationChannel() <-chan *pq.Notification { return f.ch }

func (f *fakeListener) Ping() error {
	f.pings.Add(1)
	return f.pingErr
}

// syncBuffer guards the log buffer written by the hub goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestChangeHub_SubscribeAndNotify(t *testing.T) {
	hub := NewChangeHub(zap.NewNop())
	var phones, sales int
	cancelPhones := hub.Subscribe("phones", func(context.Context) { phones++ })
	hub.Subscribe("sales", func(context.Context) { sales++ })

	hub.Notify(context.Background(), "phones")
	if phones != 1 || sales != 0 {
		t.Fatalf("after phones notify: phones=%d sales=%d", phones, sales)
	}

	hub.Notify(context.Background(), "")
	if phones != 2 || sales != 1 {
		t.Fatalf("after broadcast: phones=%d sales=%d", phones, sales)
	}

	cancelPhones()
	cancelPhones()
	hub.Notify(context.Background(), "phones")
	if phones != 2 {
		t.Errorf("cancelled subscriber called: phones=%d", phones)
	}
}

func TestChangeHub_StartDeliversNotifications(t *testing.T) {
	l := &fakeListener{ch: make(chan *pq.Notification, 4)}
	hub := NewChangeHub(zap.NewNop())

	var got atomic.Int32
	hub.Subscribe("accessories", func(context.Context) { got.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx, l, time.Hour)

	l.ch <- &pq.Notification{Channel: Channel, Extra: "accessories"}
	l.ch <- &pq.Notification{Channel: Channel, Extra: "phones"}
	l.ch <- nil
	waitFor(t, func() bool { return got.Load() == 2 })
}

func TestChangeHub_StartPingsAndLogsFailures(t *testing.T) {
	var buf syncBuffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.ErrorLevel,
	)
	l := &fakeListener{ch: make(chan *pq.Notification), pingErr: errors.New("conn lost")}
	hub := NewChangeHub(zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx, l, 10*time.Millisecond)

	waitFor(t, func() bool { return l.pings.Load() >= 2 })
	waitFor(t, func() bool { return strings.Contains(buf.String(), "failed to ping change listener") })
}

func TestChangeHub_StopsOnClosedChannel(t *testing.T) {
	l := &fakeListener{ch: make(chan *pq.Notification)}
	hub := NewChangeHub(zap.NewNop())
	hub.Start(context.Background(), l, time.Hour)
	close(l.ch)

	var called atomic.Bool
	hub.Subscribe("phones", func(context.Context) { called.Store(true) })
	time.Sleep(20 * time.Millisecond)
	if called.Load() {
		t.Error("subscriber called after the listener closed")
	}
}
