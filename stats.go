package dict

import (
	"fmt"
	"strings"
)

// statsVectLen is the number of chain-length histogram slots; the last
// slot counts every chain at least that long.
const statsVectLen = 50

// Stats returns statistics for the Dict. It walks every bucket, so it
// is an O(N) operation that should be used only for diagnostics or
// debugging purposes.
func (d *Dict[K, V]) Stats() *Stats {
	return &Stats{
		Len:       d.Len(),
		Slots:     d.Slots(),
		Rehashing: d.IsRehashing(),
		RehashIdx: d.rehashIdx,
		Iterators: d.iterators,
		Growths:   d.growths,
		Shrinks:   d.shrinks,
		HashSeed:  d.seed,
		MainTable: d.ht[0].stats(),
		AuxTable:  d.ht[1].stats(),
	}
}

func (t *table[K, V]) stats() TableStats {
	ts := TableStats{
		Size: int(t.size),
		Used: int(t.used),
	}
	totalChainLen := 0
	for _, he := range t.buckets {
		if he == nil {
			ts.ChainLenHistogram[0]++
			continue
		}
		ts.NonEmptyBuckets++
		chainLen := 0
		for e := he; e != nil; e = e.next {
			chainLen++
		}
		ts.ChainLenHistogram[min(chainLen, statsVectLen-1)]++
		ts.MaxChainLen = max(ts.MaxChainLen, chainLen)
		totalChainLen += chainLen
	}
	if ts.NonEmptyBuckets > 0 {
		ts.AvgChainLen = float64(totalChainLen) / float64(ts.NonEmptyBuckets)
	}
	return ts
}

// Stats is Dict statistics.
//
// Warning: statistics are intended to be used for diagnostic purposes,
// not for production code. Breaking changes may be introduced into this
// struct even between minor releases.
type Stats struct {
	// Len is the number of entries in both tables.
	Len int
	// Slots is the number of buckets in both tables.
	Slots int
	// Rehashing reports whether a rehash is in progress; RehashIdx is
	// the next old-table bucket to migrate, or -1.
	Rehashing bool
	RehashIdx int
	// Iterators is the number of open safe iterators and scans.
	Iterators int
	// Growths is the number of rehashes into a larger table.
	Growths uint32
	// Shrinks is the number of rehashes into a smaller table.
	Shrinks uint32
	// HashSeed is the seed the dict hashes keys with.
	HashSeed uint64
	// MainTable describes the table entries live in, or migrate from.
	MainTable TableStats
	// AuxTable describes the rehash target; it is empty when not
	// rehashing.
	AuxTable TableStats
}

// TableStats describes one of the two tables of a Dict.
type TableStats struct {
	Size            int
	Used            int
	NonEmptyBuckets int
	MaxChainLen     int
	AvgChainLen     float64
	// ChainLenHistogram[n] is the number of buckets whose chain has n
	// entries; the last slot also counts longer chains.
	ChainLenHistogram [statsVectLen]int
}

// ToString returns string representation of dict stats.
func (s *Stats) ToString() string {
	var sb strings.Builder
	sb.WriteString("Stats{\n")
	sb.WriteString(fmt.Sprintf("Len:        %d\n", s.Len))
	sb.WriteString(fmt.Sprintf("Slots:      %d\n", s.Slots))
	sb.WriteString(fmt.Sprintf("Rehashing:  %t\n", s.Rehashing))
	sb.WriteString(fmt.Sprintf("RehashIdx:  %d\n", s.RehashIdx))
	sb.WriteString(fmt.Sprintf("Iterators:  %d\n", s.Iterators))
	sb.WriteString(fmt.Sprintf("Growths:    %d\n", s.Growths))
	sb.WriteString(fmt.Sprintf("Shrinks:    %d\n", s.Shrinks))
	s.MainTable.writeTo(&sb, "main")
	if s.Rehashing {
		s.AuxTable.writeTo(&sb, "rehashing target")
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (ts *TableStats) writeTo(sb *strings.Builder, name string) {
	if ts.Used == 0 {
		sb.WriteString(fmt.Sprintf("-- %s table: no stats available for empty table\n", name))
		return
	}
	sb.WriteString(fmt.Sprintf("-- %s table stats:\n", name))
	sb.WriteString(fmt.Sprintf(" table size: %d\n", ts.Size))
	sb.WriteString(fmt.Sprintf(" number of elements: %d\n", ts.Used))
	sb.WriteString(fmt.Sprintf(" different slots: %d\n", ts.NonEmptyBuckets))
	sb.WriteString(fmt.Sprintf(" max chain length: %d\n", ts.MaxChainLen))
	sb.WriteString(fmt.Sprintf(" avg chain length (counted): %.02f\n", ts.AvgChainLen))
	sb.WriteString(fmt.Sprintf(" avg chain length (computed): %.02f\n",
		float64(ts.Used)/float64(ts.NonEmptyBuckets)))
	sb.WriteString(" Chain length distribution:\n")
	for i, n := range ts.ChainLenHistogram {
		if n == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("   %s: %d (%.02f%%)\n",
			chainLabel(i), n, float64(n)/float64(ts.Size)*100))
	}
}

func chainLabel(i int) string {
	if i == statsVectLen-1 {
		return fmt.Sprintf(">= %d", i)
	}
	return fmt.Sprintf("%d", i)
}
