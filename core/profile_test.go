package core

import (
	"reflect"
	"testing"
)

func TestInterestProfileTopK(t *testing.T) {
	p := InterestProfile{
		"sports":        0.9,
		"tech":          0.4,
		"entertainment": 0.4,
		"finance":       0.1,
		"politics":      -0.3, // 负权重不是兴趣信号
		"weather":       0,
	}

	got := p.TopK(3)
	want := []CategoryWeight{
		{Category: "sports", Weight: 0.9},
		{Category: "entertainment", Weight: 0.4}, // 并列按类别名升序
		{Category: "tech", Weight: 0.4},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopK(3) = %v, want %v", got, want)
	}
}

func TestInterestProfileTopKSmallProfile(t *testing.T) {
	p := InterestProfile{"sports": 0.5}
	if got := p.TopK(5); len(got) != 1 {
		t.Errorf("got %d entries, want 1", len(got))
	}
	if got := (InterestProfile{}).TopK(5); len(got) != 0 {
		t.Errorf("empty profile: got %d entries, want 0", len(got))
	}
	if got := (InterestProfile{"politics": -1}).TopK(5); len(got) != 0 {
		t.Errorf("all-negative profile: got %d entries, want 0", len(got))
	}
}
