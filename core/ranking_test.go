package core

import (
	"reflect"
	"testing"
)

func TestClickCountMapMerge(t *testing.T) {
	m := make(ClickCountMap)
	m.MergeEntries([]RankingEntry{
		{Member: "N1", Score: 50},
		{Member: "N2", Score: 30},
	})
	m.MergeEntries([]RankingEntry{
		{Member: "N1", Score: 20},
	})
	m.Merge(ClickCountMap{"N3": 5})

	if m["N1"] != 70 || m["N2"] != 30 || m["N3"] != 5 {
		t.Errorf("unexpected counts: %v", m)
	}
	if got := m.Total(); got != 105 {
		t.Errorf("Total() = %d, want 105", got)
	}
}

func TestClickCountMapSorted(t *testing.T) {
	m := ClickCountMap{"N3": 10, "N1": 30, "N2": 30, "N4": 5}

	got := m.Sorted()
	want := []RankingEntry{
		{Member: "N1", Score: 30}, // 并列按 ID 升序
		{Member: "N2", Score: 30},
		{Member: "N3", Score: 10},
		{Member: "N4", Score: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
}
