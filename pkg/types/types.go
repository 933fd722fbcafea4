package types

import "time"

// Sample is a single timestamped sensor reading. Samples are immutable
// once appended to a store.
type Sample struct {
	Timestamp   time.Time
	Temperature float64
	Humidity    float64
}

// Reading is a raw temperature/humidity pair parsed from the sensor page,
// before it is stamped and stored.
type Reading struct {
	Temperature float64
	Humidity    float64
}

// MinuteSeries is the result of a per-minute aggregation query.
//
// Temperatures holds one entry per minute of the observed data span,
// most-recent-minute first; a nil entry is a minute with no samples.
// LatestTime and OldestTime are the Unix timestamps (seconds) of the
// newest and oldest selected samples, nil when the window held no data.
type MinuteSeries struct {
	Temperatures    []*float64 `json:"temperatures"`
	LatestTime      *int64     `json:"latest_time"`
	OldestTime      *int64     `json:"oldest_time"`
	IntervalMinutes int        `json:"interval_minutes"`
	Count           int        `json:"count"`
}
