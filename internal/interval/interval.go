// Package interval partitions a time range into daily fetch windows.
//
// The Data-API's offset pagination returns stale pages once the cumulative
// offset grows past roughly a thousand records, so history is fetched one
// day at a time and each window is paginated from offset zero.
package interval

import "time"

// Day is the width of a generated interval.
const Day = 24 * time.Hour

// Interval is a half-open time window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts (seconds since epoch) falls inside the window.
func (iv Interval) Contains(ts int64) bool {
	t := time.Unix(ts, 0).UTC()
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Generate tiles [start, end) with one-day intervals in ascending order.
// The final interval may be shorter than a day. If start >= end the result
// is empty.
//
// Invariant: the union of the returned intervals equals [start, end) exactly,
// with no gaps and no overlaps.
func Generate(start, end time.Time) []Interval {
	start = start.UTC()
	end = end.UTC()

	if !start.Before(end) {
		return nil
	}

	intervals := make([]Interval, 0, int(end.Sub(start)/Day)+1)
	for cur := start; cur.Before(end); {
		next := cur.Add(Day)
		if next.After(end) {
			next = end
		}
		intervals = append(intervals, Interval{Start: cur, End: next})
		cur = next
	}

	return intervals
}
