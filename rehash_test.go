package dict

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/go-quicktest/qt"
)

func TestRehash_LookupsDuringRehash(t *testing.T) {
	d := newIntDict()
	for i := 0; i < 500; i++ {
		qt.Assert(t, qt.IsNil(d.Add(i, i)))
	}
	for d.Rehash(100) {
	}
	qt.Assert(t, qt.IsNil(d.Expand(4096)))
	for steps := 0; d.IsRehashing(); steps++ {
		qt.Assert(t, qt.Equals(d.Len(), 500))
		qt.Assert(t, qt.Equals(d.ht[0].used+d.ht[1].used, uint64(500)))
		for i := 0; i < 500; i += 37 {
			qt.Assert(t, qt.IsNotNil(d.Find(i)), qt.Commentf("key %d step %d", i, steps))
		}
		d.Rehash(1)
	}
	for i := 0; i < 500; i++ {
		v, ok := d.FetchValue(i)
		qt.Assert(t, qt.IsTrue(ok))
		qt.Assert(t, qt.Equals(v, i))
	}
	qt.Assert(t, qt.Equals(d.Slots(), 4096))
	qt.Assert(t, qt.Equals(d.rehashIdx, -1))
	qt.Assert(t, qt.Equals(d.ht[1].size, uint64(0)))
}

func TestRehash_InsertsGoToNewTable(t *testing.T) {
	d := newIntDict()
	next := fillUntilRehashing(t, d, 0)
	d.iterators++ // hold the rehash where it is
	old := d.ht[0].used
	for i := next; i < next+3; i++ {
		qt.Assert(t, qt.IsNil(d.Add(i, i)))
	}
	qt.Assert(t, qt.Equals(d.ht[0].used, old))
	d.iterators--
}

func TestRehash_BoundedEmptyVisits(t *testing.T) {
	d := newIntDict()
	for i := 0; i < 1000; i++ {
		qt.Assert(t, qt.IsNil(d.Add(i, i)))
	}
	for d.Rehash(100) {
	}
	for i := 10; i < 1000; i++ {
		qt.Assert(t, qt.IsNil(d.Delete(i)))
	}
	qt.Assert(t, qt.IsNil(d.Resize()))
	qt.Assert(t, qt.IsTrue(d.IsRehashing()))

	// ten entries spread over 1024 buckets: a one-bucket step must give
	// up after ten empty buckets
	for d.IsRehashing() {
		before := d.rehashIdx
		d.Rehash(1)
		if d.IsRehashing() {
			qt.Assert(t, qt.IsTrue(d.rehashIdx-before <= 11),
				qt.Commentf("moved from %d to %d", before, d.rehashIdx))
			qt.Assert(t, qt.IsTrue(d.rehashIdx > before))
		}
	}
	qt.Assert(t, qt.Equals(d.Len(), 10))
	qt.Assert(t, qt.Equals(d.Slots(), 16))
}

func TestRehash_PausedByIterators(t *testing.T) {
	d := newIntDict()
	fillUntilRehashing(t, d, 0)
	idx := d.rehashIdx

	it := d.SafeIterator()
	qt.Assert(t, qt.IsTrue(d.Rehash(100)))
	qt.Assert(t, qt.Equals(d.RehashFor(time.Second), 0))
	qt.Assert(t, qt.Equals(d.rehashIdx, idx))
	it.Release()

	qt.Assert(t, qt.IsFalse(d.Rehash(100)))
	qt.Assert(t, qt.IsFalse(d.IsRehashing()))
	qt.Assert(t, qt.IsFalse(d.Rehash(1)))
}

func TestRehash_RehashFor(t *testing.T) {
	d := newIntDict()
	for i := 0; i < 100_000; i++ {
		qt.Assert(t, qt.IsNil(d.Add(i, i)))
	}
	for d.Rehash(1000) {
	}
	qt.Assert(t, qt.IsNil(d.Expand(1 << 20)))

	moved := d.RehashFor(time.Minute)
	qt.Assert(t, qt.IsFalse(d.IsRehashing()))
	qt.Assert(t, qt.IsTrue(moved > 0))
	qt.Assert(t, qt.Equals(moved%rehashBatch, 0))
	qt.Assert(t, qt.Equals(d.Len(), 100_000))

	qt.Assert(t, qt.Equals(d.RehashFor(time.Minute), 0))
	qt.Assert(t, qt.Equals(d.RehashMilliseconds(10), 0))
}

func TestRehash_RehashForWithinOneBatch(t *testing.T) {
	d := newIntDict()
	fillUntilRehashing(t, d, 0)
	qt.Assert(t, qt.Equals(d.RehashFor(time.Minute), rehashBatch))
	qt.Assert(t, qt.IsFalse(d.IsRehashing()))

	d2 := newIntDict()
	fillUntilRehashing(t, d2, 0)
	qt.Assert(t, qt.Equals(ActiveRehash(time.Minute, d2), rehashBatch))
	qt.Assert(t, qt.IsFalse(d2.IsRehashing()))
}

func TestRehash_ActiveRehash(t *testing.T) {
	var dicts []*Dict[int, int]
	var rehashers []Rehasher
	for n := 0; n < 4; n++ {
		d := newIntDict()
		for i := 0; i < 10_000; i++ {
			qt.Assert(t, qt.IsNil(d.Add(i, i)))
		}
		for d.Rehash(1000) {
		}
		if n%2 == 0 {
			qt.Assert(t, qt.IsNil(d.Expand(1 << 16)))
		}
		dicts = append(dicts, d)
		rehashers = append(rehashers, d)
	}
	qt.Assert(t, qt.Equals(ActiveRehash(0, rehashers...), 0))

	moved := ActiveRehash(time.Minute, rehashers...)
	qt.Assert(t, qt.IsTrue(moved > 0))
	for _, d := range dicts {
		qt.Assert(t, qt.IsFalse(d.IsRehashing()))
		qt.Assert(t, qt.Equals(d.Len(), 10_000))
	}
	qt.Assert(t, qt.Equals(ActiveRehash(time.Minute, rehashers...), 0))
	qt.Assert(t, qt.Equals(ActiveRehash(time.Minute), 0))
}

func TestRehash_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := newIntDict(WithLogger(logger))
	fillUntilRehashing(t, d, 0)
	for d.Rehash(1) {
	}
	out := buf.String()
	qt.Assert(t, qt.StringContains(out, `msg="dict: rehash started" from=4 to=8 used=4`))
	qt.Assert(t, qt.StringContains(out, `msg="dict: rehash completed" size=8 used=5`))
}
