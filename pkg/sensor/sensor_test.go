package sensor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vjranagit/tempmon/pkg/types"
)

const sensorPage = `<html><body>
vlhkost / teplota: <b> 47.3 % 21.8 &deg;C </b>
</body></html>`

func TestParseReading(t *testing.T) {
	reading, err := ParseReading([]byte(sensorPage))
	require.NoError(t, err)
	assert.Equal(t, 21.8, reading.Temperature)
	assert.Equal(t, 47.3, reading.Humidity)
}

func TestParseReadingNoMatch(t *testing.T) {
	_, err := ParseReading([]byte("<html>maintenance mode</html>"))
	assert.Error(t, err)
}

type fakeStore struct {
	mu       sync.Mutex
	readings []types.Reading
	appended chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{appended: make(chan struct{}, 16)}
}

func (f *fakeStore) Append(temperature, humidity float64) {
	f.mu.Lock()
	f.readings = append(f.readings, types.Reading{Temperature: temperature, Humidity: humidity})
	f.mu.Unlock()
	select {
	case f.appended <- struct{}{}:
	default:
	}
}

func (f *fakeStore) snapshot() []types.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Reading(nil), f.readings...)
}

func TestPollerAppendsReadings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sensorPage))
	}))
	defer srv.Close()

	store := newFakeStore()
	p := NewPoller(srv.URL, 10*time.Millisecond, time.Second, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case <-store.appended:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never appended a reading")
	}
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)

	readings := store.snapshot()
	require.NotEmpty(t, readings)
	assert.Equal(t, 21.8, readings[0].Temperature)
	assert.Equal(t, 47.3, readings[0].Humidity)
}

func TestPollerSurvivesSensorErrors(t *testing.T) {
	var mu sync.Mutex
	failing := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sensorPage))
	}))
	defer srv.Close()

	store := newFakeStore()
	p := NewPoller(srv.URL, 10*time.Millisecond, time.Second, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	failing = false
	mu.Unlock()

	select {
	case <-store.appended:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not recover after sensor errors")
	}
}

func TestPollFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPoller(srv.URL, time.Second, time.Second, newFakeStore())
	_, err := p.poll(context.Background())
	assert.Error(t, err)
}
