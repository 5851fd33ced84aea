package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{" 2.50 ", 2.5, true},
		{"¥ 8", 8, true},
		{".5", 0.5, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestSafeAmount(t *testing.T) {
	cases := []struct {
		in  float64
		out float64
	}{
		{10, 10},
		{0, 0},
		{-5, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tc := range cases {
		if got := SafeAmount(tc.in); got != tc.out {
			t.Fatalf("SafeAmount(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestRound1(t *testing.T) {
	if got := Round1(33.333); got != 33.3 {
		t.Fatalf("Round1 = %v", got)
	}
	if got := Round1(66.66); got != 66.7 {
		t.Fatalf("Round1 = %v", got)
	}
}
