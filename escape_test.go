package mandel

import (
	"math"
	"testing"
)

func TestEscapeCount_OutsideRadiusEscapesImmediately(t *testing.T) {
	for _, maxIter := range []int{1, 2, 20, 1000} {
		if got := EscapeCount(complex(3, 0), maxIter); got != 0 {
			t.Errorf("EscapeCount(3+0i, %d) = %d, want 0", maxIter, got)
		}
		if got := EscapeCount(complex(-2, -1), maxIter); got != 0 {
			t.Errorf("EscapeCount(-2-1i, %d) = %d, want 0", maxIter, got)
		}
	}
}

func TestEscapeCount_OriginNeverEscapes(t *testing.T) {
	for _, maxIter := range []int{1, 7, 20, 40, 5000} {
		if got := EscapeCount(0, maxIter); got != maxIter {
			t.Errorf("EscapeCount(0, %d) = %d, want %d", maxIter, got, maxIter)
		}
	}
}

func TestEscapeCount_PeriodTwoPoint(t *testing.T) {
	// -1 -> 0 -> -1 -> ...
	for _, maxIter := range []int{1, 2, 3, 100, 10000} {
		if got := EscapeCount(complex(-1, 0), maxIter); got != maxIter {
			t.Errorf("EscapeCount(-1, %d) = %d, want %d", maxIter, got, maxIter)
		}
	}
}

func TestEscapeCount_RadiusBoundaryIsNotEscape(t *testing.T) {
	// |2| is not > 2; 2 -> 6 escapes at step 1.
	if got := EscapeCount(complex(2, 0), 10); got != 1 {
		t.Errorf("EscapeCount(2, 10) = %d, want 1", got)
	}
	// -2 -> 2 -> 2 ... stays on the boundary forever.
	if got := EscapeCount(complex(-2, 0), 50); got != 50 {
		t.Errorf("EscapeCount(-2, 50) = %d, want 50", got)
	}
}

func TestEscapeCount_Monotonic(t *testing.T) {
	points := []complex128{
		complex(0.3, 0.5),
		complex(-0.75, 0.1),
		complex(0.26, 0),
		complex(-1.77, 0.01),
		complex(1.9, 0),
	}
	for _, c := range points {
		prev := 0
		for maxIter := 1; maxIter <= 512; maxIter++ {
			got := EscapeCount(c, maxIter)
			if got < prev {
				t.Fatalf("EscapeCount(%v, %d) = %d, smaller than %d at a lower cap", c, maxIter, got, prev)
			}
			if got > maxIter {
				t.Fatalf("EscapeCount(%v, %d) = %d, exceeds cap", c, maxIter, got)
			}
			prev = got
		}
	}
}

func TestEscapeCount_EscapeIterationIndependentOfCap(t *testing.T) {
	// 1.9 -> 5.51 escapes at step 1.
	c := complex(1.9, 0)
	if got := EscapeCount(c, 1); got != 1 {
		t.Errorf("EscapeCount(1.9, 1) = %d, want 1", got)
	}
	for _, maxIter := range []int{2, 10, 100} {
		if got := EscapeCount(c, maxIter); got != 1 {
			t.Errorf("EscapeCount(1.9, %d) = %d, want 1", maxIter, got)
		}
	}
}

func TestEscapeCount_NonFinite(t *testing.T) {
	tests := []struct {
		name string
		c    complex128
		want int
	}{
		{"inf", complex(math.Inf(1), 0), 0},
		{"neg inf imag", complex(0, math.Inf(-1)), 0},
		{"huge", complex(1e200, 1e200), 0},
		{"nan", complex(math.NaN(), 0), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeCount(tt.c, 30); got != tt.want {
				t.Errorf("EscapeCount(%v, 30) = %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

func TestEscapeCount_NonPositiveCap(t *testing.T) {
	for _, maxIter := range []int{0, -1, -5} {
		if got := EscapeCount(0, maxIter); got != 0 {
			t.Errorf("EscapeCount(0, %d) = %d, want 0", maxIter, got)
		}
		if got := (Evaluator{Radius: 4}).Count(complex(3, 0), maxIter); got != 0 {
			t.Errorf("Evaluator.Count(3, %d) = %d, want 0", maxIter, got)
		}
	}
}

func TestEvaluator_Radius(t *testing.T) {
	var zero Evaluator
	if got := zero.Count(complex(3, 0), 10); got != 0 {
		t.Errorf("zero Evaluator Count(3) = %d, want 0", got)
	}

	wide := Evaluator{Radius: 10}
	// 3 -> 12 escapes radius 10 at step 1.
	if got := wide.Count(complex(3, 0), 10); got != 1 {
		t.Errorf("Evaluator{10}.Count(3) = %d, want 1", got)
	}

	for _, c := range []complex128{complex(0.3, 0.5), complex(-0.1, 0.9), 0} {
		if a, b := (Evaluator{Radius: 2}).Count(c, 200), EscapeCount(c, 200); a != b {
			t.Errorf("Evaluator{2}.Count(%v) = %d, EscapeCount = %d", c, a, b)
		}
	}
}

func BenchmarkEscapeCount_Inside(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = EscapeCount(complex(-0.1, 0.1), 1000)
	}
}

func BenchmarkEscapeCount_Boundary(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = EscapeCount(complex(-0.7436, 0.1318), 1000)
	}
}
