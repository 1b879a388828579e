package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ids(records []Record) []int64 {
	out := make([]int64, len(records))
	for i, rec := range records {
		out[i] = rec.ID
	}
	return out
}

func TestOrderedRecords_Add(t *testing.T) {
	var o orderedRecords
	at := func(id int64, sec int) Record {
		return Record{ID: id, Reading: reading(0, time.Duration(sec)*time.Second)}
	}

	o.add(at(1, 10))
	o.add(at(2, 30))
	o.add(at(3, 20))
	o.add(at(4, 0))
	o.add(at(5, 20))

	assert.Equal(t, []int64{4, 1, 3, 5, 2}, ids(o.records))
	assert.Equal(t, []int64{2, 5, 3}, ids(o.newest(3)))
	assert.Len(t, o.newest(100), 5)
}

func TestOrderedRecords_TrimOldest(t *testing.T) {
	var o orderedRecords
	for i := int64(1); i <= 4; i++ {
		o.add(Record{ID: i, Reading: reading(0, time.Duration(i)*time.Second)})
	}

	o.trimOldest(0)
	assert.Equal(t, 4, o.len())

	o.trimOldest(3)
	assert.Equal(t, []int64{4}, ids(o.records))

	o.trimOldest(10)
	assert.Equal(t, 0, o.len())
}
