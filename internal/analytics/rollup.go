package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Rollup is a grouped count and sum
type Rollup struct {
	Count int
	Sum   decimal.Decimal
}

func (r *Rollup) add(v decimal.Decimal) {
	r.Count++
	r.Sum = r.Sum.Add(v)
}

// KeyedRollup is a rollup labelled with its grouping key
type KeyedRollup struct {
	Key string
	Rollup
}

// StatusBreakdown is the result of GroupByStatus
type StatusBreakdown struct {
	// Rows holds one entry per canonical status, in canonical order, including empty ones.
	Rows []KeyedRollup
	// Canonical aggregates the records whose status is in the canonical set.
	Canonical Rollup
	// Overall aggregates every record, including off-canon statuses.
	Overall Rollup
}

// Row returns the rollup of a single status
func (b StatusBreakdown) Row(status string) Rollup {
	for _, row := range b.Rows {
		if row.Key == status {
			return row.Rollup
		}
	}
	return Rollup{}
}

// NonEmpty returns the rows holding at least one record
func (b StatusBreakdown) NonEmpty() []KeyedRollup {
	rows := make([]KeyedRollup, 0, len(b.Rows))
	for _, row := range b.Rows {
		if row.Count > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// BucketRollup is the aggregate of one trend bucket
type BucketRollup struct {
	Key string
	Rollup
}

// KeyFunc extracts a grouping key; an empty key excludes the record from the breakdown
type KeyFunc[T any] func(T) string

// ValueFunc extracts the amount summed by a rollup
type ValueFunc[T any] func(T) decimal.Decimal

// DateFunc extracts the instant a record is bucketed by; ok=false skips the record
type DateFunc[T any] func(T) (t time.Time, ok bool)

func valueOrZero[T any](valueOf ValueFunc[T], rec T) decimal.Decimal {
	if valueOf == nil {
		return decimal.Zero
	}
	return valueOf(rec)
}

// GroupByStatus folds records into one rollup per canonical status, in the given order.
// Records outside the canonical set are dropped from Rows but counted in Overall.
func GroupByStatus[T any](records []T, order []string, statusOf KeyFunc[T], valueOf ValueFunc[T]) StatusBreakdown {
	index := make(map[string]int, len(order))
	rows := make([]KeyedRollup, len(order))
	for i, status := range order {
		index[status] = i
		rows[i] = KeyedRollup{Key: status, Rollup: Rollup{Sum: decimal.Zero}}
	}

	out := StatusBreakdown{
		Canonical: Rollup{Sum: decimal.Zero},
		Overall:   Rollup{Sum: decimal.Zero},
	}
	for _, rec := range records {
		v := valueOrZero(valueOf, rec)
		out.Overall.add(v)
		i, ok := index[statusOf(rec)]
		if !ok {
			continue
		}
		rows[i].add(v)
		out.Canonical.add(v)
	}
	out.Rows = rows
	return out
}

// GroupByKey folds records into one rollup per non-empty key
func GroupByKey[T any](records []T, keyOf KeyFunc[T], valueOf ValueFunc[T]) map[string]Rollup {
	groups := make(map[string]Rollup)
	for _, rec := range records {
		key := keyOf(rec)
		if key == "" {
			continue
		}
		r, ok := groups[key]
		if !ok {
			r.Sum = decimal.Zero
		}
		r.add(valueOrZero(valueOf, rec))
		groups[key] = r
	}
	return groups
}

// GroupByChannel folds records by acquisition channel
func GroupByChannel[T any](records []T, channelOf KeyFunc[T], valueOf ValueFunc[T]) map[string]Rollup {
	return GroupByKey(records, channelOf, valueOf)
}

// GroupByPerson folds records by owning user id
func GroupByPerson[T any](records []T, personOf KeyFunc[T], valueOf ValueFunc[T]) map[string]Rollup {
	return GroupByKey(records, personOf, valueOf)
}

// GroupByMonth folds records into the trend buckets of a resolution.
// Every bucket is present in order, with a zero rollup when nothing fell into it.
// Bucket granularity follows the resolution, so week trends are daily.
func GroupByMonth[T any](records []T, buckets []Bucket, dateOf DateFunc[T], valueOf ValueFunc[T]) []BucketRollup {
	out := make([]BucketRollup, len(buckets))
	for i, b := range buckets {
		out[i] = BucketRollup{Key: b.Key, Rollup: Rollup{Sum: decimal.Zero}}
	}
	if len(buckets) == 0 {
		return out
	}

	for _, rec := range records {
		at, ok := dateOf(rec)
		if !ok {
			continue
		}
		i := sort.Search(len(buckets), func(i int) bool { return at.Before(buckets[i].End) })
		if i == len(buckets) || at.Before(buckets[i].Start) {
			continue
		}
		out[i].add(valueOrZero(valueOf, rec))
	}
	return out
}

// RankByCount orders grouped rollups by count desc, then key asc, keeping at most limit rows.
// A limit of zero or less keeps every row.
func RankByCount(groups map[string]Rollup, limit int) []KeyedRollup {
	rows := toRows(groups)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return truncate(rows, limit)
}

// RankBySum orders grouped rollups by sum desc, then count desc, then key asc
func RankBySum(groups map[string]Rollup, limit int) []KeyedRollup {
	rows := toRows(groups)
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Sum.Cmp(rows[j].Sum); c != 0 {
			return c > 0
		}
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return truncate(rows, limit)
}

func toRows(groups map[string]Rollup) []KeyedRollup {
	rows := make([]KeyedRollup, 0, len(groups))
	for key, r := range groups {
		rows = append(rows, KeyedRollup{Key: key, Rollup: r})
	}
	return rows
}

func truncate(rows []KeyedRollup, limit int) []KeyedRollup {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

// Total sums every rollup of a grouping
func Total(groups map[string]Rollup) Rollup {
	total := Rollup{Sum: decimal.Zero}
	for _, r := range groups {
		total.Count += r.Count
		total.Sum = total.Sum.Add(r.Sum)
	}
	return total
}
