package storage

import "errors"

var (
	// ErrInvalidTimeRange is returned when a query's start is after its end.
	ErrInvalidTimeRange = errors.New("invalid time range: start is after end")

	// ErrNoData is returned by RangeFetch when a well-formed range holds no
	// samples. PerMinuteAverage never returns it: charting clients should
	// render "no data yet" rather than treat sensor silence as a fault.
	ErrNoData = errors.New("no data available in range")
)
