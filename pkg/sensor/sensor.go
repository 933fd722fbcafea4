package sensor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/jpillora/backoff"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vjranagit/tempmon/pkg/types"
)

var (
	readingsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tempmon",
		Name:      "sensor_readings_total",
		Help:      "The total number of sensor readings appended to the store.",
	})
	pollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tempmon",
		Name:      "sensor_poll_errors_total",
		Help:      "The total number of failed sensor polls.",
	})
)

// readingPattern matches the sensor's status page, e.g.
// "teplota: <b> 47.3 % 21.8 &deg;C". Group 1 is humidity, group 2 is
// temperature.
var readingPattern = regexp.MustCompile(`teplota:\s*<b>\s*(\d+\.\d+)\s*%\s*(\d+\.\d+)\s*&deg;C`)

// Appender is the producer-facing surface of the sample store.
type Appender interface {
	Append(temperature, humidity float64)
}

// Poller periodically fetches the sensor's status page and appends the
// parsed reading to the store.
type Poller struct {
	url      string
	interval time.Duration
	store    Appender
	client   *http.Client
}

// NewPoller creates a poller that fetches url every interval, with a
// per-request timeout.
func NewPoller(url string, interval, timeout time.Duration, store Appender) *Poller {
	return &Poller{
		url:      url,
		interval: interval,
		store:    store,
		client:   &http.Client{Timeout: timeout},
	}
}

// Run polls until ctx is canceled. A failed poll backs off exponentially
// and never stops the loop; the store simply receives no reading for that
// tick.
func (p *Poller) Run(ctx context.Context) error {
	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    p.interval,
		Factor: 2,
		Jitter: true,
	}

	// Fire immediately so the store has a reading before the first tick.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		reading, err := p.poll(ctx)
		if err != nil {
			pollErrors.Inc()
			wait := b.Duration()
			log.WithError(err).WithField("retry_in", wait).Warn("sensor poll failed")
			timer.Reset(wait)
			continue
		}
		b.Reset()

		p.store.Append(reading.Temperature, reading.Humidity)
		readingsAppended.Inc()
		log.WithFields(log.Fields{
			"temperature": reading.Temperature,
			"humidity":    reading.Humidity,
		}).Debug("reading appended")

		timer.Reset(p.interval)
	}
}

// poll fetches and parses a single reading.
func (p *Poller) poll(ctx context.Context) (types.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return types.Reading{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return types.Reading{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Reading{}, fmt.Errorf("sensor returned status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Reading{}, err
	}
	return ParseReading(page)
}

// ParseReading extracts a reading from the sensor's status page.
func ParseReading(page []byte) (types.Reading, error) {
	m := readingPattern.FindSubmatch(page)
	if m == nil {
		return types.Reading{}, fmt.Errorf("no reading found in sensor page")
	}

	humidity, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return types.Reading{}, fmt.Errorf("failed to parse humidity: %w", err)
	}
	temperature, err := strconv.ParseFloat(string(m[2]), 64)
	if err != nil {
		return types.Reading{}, fmt.Errorf("failed to parse temperature: %w", err)
	}

	return types.Reading{
		Temperature: temperature,
		Humidity:    humidity,
	}, nil
}
