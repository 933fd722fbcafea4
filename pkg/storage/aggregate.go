package storage

import (
	"time"

	"github.com/vjranagit/tempmon/pkg/types"
)

// PerMinuteAverage buckets the samples in [from, to] on the absolute
// Unix-minute grid (timestamp / 60, never anchored to the query window, so
// overlapping queries agree on bucket contents) and returns the unweighted
// mean temperature per minute, most recent minute first.
//
// Exactly one entry is emitted for every minute between the oldest and the
// newest selected sample: minutes with no samples inside that span are
// nil, minutes outside it are never emitted. An empty selection is a
// success with Count 0 and nil times, not an error; only from > to fails.
func (s *Store) PerMinuteAverage(from, to time.Time) (*types.MinuteSeries, error) {
	if from.After(to) {
		return nil, ErrInvalidTimeRange
	}

	s.mu.RLock()
	selected := s.selectRange(from, to)
	s.mu.RUnlock()

	res := &types.MinuteSeries{
		Temperatures:    []*float64{},
		IntervalMinutes: 1,
	}
	if len(selected) == 0 {
		return res, nil
	}

	oldestTime := selected[0].Timestamp.Unix()
	latestTime := selected[len(selected)-1].Timestamp.Unix()
	oldestMinute := oldestTime / 60
	latestMinute := latestTime / 60

	n := int(latestMinute-oldestMinute) + 1
	sums := make([]float64, n)
	counts := make([]int, n)
	for _, smp := range selected {
		i := int(smp.Timestamp.Unix()/60 - oldestMinute)
		sums[i] += smp.Temperature
		counts[i]++
	}

	// Index 0 = latestMinute, walking down to oldestMinute.
	temps := make([]*float64, n)
	for i := 0; i < n; i++ {
		j := n - 1 - i
		if counts[j] > 0 {
			avg := sums[j] / float64(counts[j])
			temps[i] = &avg
		}
	}

	res.Temperatures = temps
	res.LatestTime = &latestTime
	res.OldestTime = &oldestTime
	res.Count = n
	return res, nil
}
