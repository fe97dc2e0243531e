package dsl

import (
	"testing"

	"github.com/rushteam/newsbi/core"
)

var attr = core.NewsAttributes{
	NewsID:         "N1",
	Category:       "sports",
	Topic:          "soccer",
	HeadlineLength: 42,
	BodyLength:     2000,
}

func TestCompileAttributePredicate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"topic_eq", `news.topic == "soccer"`, true},
		{"topic_ne", `news.topic == "ai"`, false},
		{"length_range", `news.headline_length >= 40 && news.headline_length <= 50`, true},
		{"or", `news.category == "tech" || news.body_length < 3000`, true},
		{"contains", `news.topic.contains("soc")`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := CompileAttributePredicate(tt.expr)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := pred.Match(attr)
			if err != nil {
				t.Fatalf("match: %v", err)
			}
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileEmptyExpr(t *testing.T) {
	pred, err := CompileAttributePredicate("")
	if err != nil || pred != nil {
		t.Fatalf("empty expr: pred=%v err=%v", pred, err)
	}
	// nil 谓词放行一切
	if ok, _ := pred.Match(attr); !ok {
		t.Error("nil predicate must match everything")
	}
}

func TestCompileInvalidExpr(t *testing.T) {
	_, err := CompileAttributePredicate("news.topic ==")
	if !core.IsInvalidInput(err) {
		t.Errorf("want INVALID_INPUT, got %v", err)
	}
}

func TestNonBooleanExpr(t *testing.T) {
	pred, err := CompileAttributePredicate("news.headline_length + 1")
	if err != nil {
		// 编译期拒绝也可接受
		if !core.IsInvalidInput(err) {
			t.Errorf("want INVALID_INPUT, got %v", err)
		}
		return
	}
	if _, err := pred.Match(attr); !core.IsInvalidInput(err) {
		t.Errorf("non-boolean result: want INVALID_INPUT, got %v", err)
	}
}
