package storage

import "sort"

// orderedRecords keeps records sorted by (CreatedAt, ID).
// Not thread-safe; MemoryStore guards it.
type orderedRecords struct {
	records []Record
}

func recordBefore(a, b Record) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// add inserts rec in order. Readings usually arrive in time order, so the
// common case is an append.
func (o *orderedRecords) add(rec Record) {
	n := len(o.records)
	if n == 0 || !recordBefore(rec, o.records[n-1]) {
		o.records = append(o.records, rec)
		return
	}

	idx := sort.Search(n, func(i int) bool {
		return recordBefore(rec, o.records[i])
	})
	o.records = append(o.records, Record{})
	copy(o.records[idx+1:], o.records[idx:])
	o.records[idx] = rec
}

// newest returns up to limit records, newest first
func (o *orderedRecords) newest(limit int) []Record {
	n := len(o.records)
	if limit > n {
		limit = n
	}
	out := make([]Record, limit)
	for i := 0; i < limit; i++ {
		out[i] = o.records[n-1-i]
	}
	return out
}

// trimOldest drops the k oldest records
func (o *orderedRecords) trimOldest(k int) {
	if k <= 0 {
		return
	}
	if k >= len(o.records) {
		o.records = o.records[:0]
		return
	}
	kept := make([]Record, len(o.records)-k)
	copy(kept, o.records[k:])
	o.records = kept
}

func (o *orderedRecords) len() int {
	return len(o.records)
}
