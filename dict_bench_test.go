package dict

import (
	"fmt"
	"testing"
)

var (
	benchDataSmall [8]string
	benchData      [128]string
	benchDataLarge [128 << 10]string
)

func init() {
	for i := range benchDataSmall {
		benchDataSmall[i] = fmt.Sprintf("%b", i)
	}
	for i := range benchData {
		benchData[i] = fmt.Sprintf("%b", i)
	}
	for i := range benchDataLarge {
		benchDataLarge[i] = fmt.Sprintf("%b", i)
	}
}

func BenchmarkDictFindSmall(b *testing.B) {
	benchmarkDictFind(b, benchDataSmall[:])
}

func BenchmarkDictFind(b *testing.B) {
	benchmarkDictFind(b, benchData[:])
}

func BenchmarkDictFindLarge(b *testing.B) {
	benchmarkDictFind(b, benchDataLarge[:])
}

func benchmarkDictFind(b *testing.B, data []string) {
	b.ReportAllocs()
	d := New[string, int](nil)
	for i := range data {
		_ = d.Add(data[i], i)
	}
	for d.Rehash(1000) {
	}
	b.ResetTimer()
	i := 0
	for n := 0; n < b.N; n++ {
		_ = d.Find(data[i])
		i++
		if i >= len(data) {
			i = 0
		}
	}
}

func BenchmarkDictAdd(b *testing.B) {
	benchmarkDictAdd(b, benchData[:])
}

func BenchmarkDictAddLarge(b *testing.B) {
	benchmarkDictAdd(b, benchDataLarge[:])
}

// benchmarkDictAdd fills a dict and empties it again, so the cost of
// incremental rehashing is included in every round.
func benchmarkDictAdd(b *testing.B, data []string) {
	b.ReportAllocs()
	d := New[string, int](nil)
	b.ResetTimer()
	i := 0
	for n := 0; n < b.N; n++ {
		_ = d.Add(data[i], i)
		i++
		if i >= len(data) {
			i = 0
			d.Empty(nil)
		}
	}
}

func BenchmarkDictReplaceInline(b *testing.B) {
	b.ReportAllocs()
	d := New[string, struct{}](nil)
	data := benchData[:]
	b.ResetTimer()
	i := 0
	for n := 0; n < b.N; n++ {
		e, _ := d.AddRaw(data[i])
		e.SetInt64(e.Int64() + 1)
		i++
		if i >= len(data) {
			i = 0
		}
	}
}

func BenchmarkDictScan(b *testing.B) {
	b.ReportAllocs()
	d := New[string, int](nil)
	for i, k := range benchDataLarge {
		_ = d.Add(k, i)
	}
	b.ResetTimer()
	var cursor uint64
	sum := 0
	for n := 0; n < b.N; n++ {
		cursor = d.Scan(cursor, func(e *Entry[string, int]) { sum += e.Value() })
	}
	_ = sum
}

func BenchmarkDictSomeKeys(b *testing.B) {
	b.ReportAllocs()
	d := New[string, int](nil)
	for i, k := range benchDataLarge {
		_ = d.Add(k, i)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = d.SomeKeys(16)
	}
}

func BenchmarkDictRandomKey(b *testing.B) {
	b.ReportAllocs()
	d := New[string, int](nil)
	for i, k := range benchDataLarge {
		_ = d.Add(k, i)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = d.RandomKey()
	}
}
