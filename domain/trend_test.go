package domain

import (
	"math"
	"testing"
)

func TestEvalPoly(t *testing.T) {
	// 1 + 2x + 3x^2 at x=2 -> 1 + 4 + 12 = 17
	got := evalPoly([]float64{1, 2, 3}, 2)
	if got != 17 {
		t.Errorf("expected 17, got %v", got)
	}
}

func TestGaussianSolve(t *testing.T) {
	// x + y = 3, 2x - y = 0 -> x=1, y=2
	a := [][]float64{{1, 1}, {2, -1}}
	b := []float64{3, 0}

	x, ok := gaussianSolve(a, b)
	if !ok {
		t.Fatalf("expected solvable system")
	}
	if math.Abs(x[0]-1) > 1e-9 || math.Abs(x[1]-2) > 1e-9 {
		t.Errorf("expected [1, 2], got %v", x)
	}
}

func TestGaussianSolveSingular(t *testing.T) {
	a := [][]float64{{1, 1}, {2, 2}}
	b := []float64{1, 2}

	_, ok := gaussianSolve(a, b)
	if ok {
		t.Errorf("expected singular system to fail")
	}
}

func TestPolyfitOLSRecoversExactLine(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{1, 3, 5, 7, 9} // y = 1 + 2x

	coeffs, ok := polyfitOLS(xs, ys, 1)
	if !ok {
		t.Fatalf("expected a fit")
	}
	if math.Abs(coeffs[0]-1) > 1e-6 || math.Abs(coeffs[1]-2) > 1e-6 {
		t.Errorf("expected [1, 2], got %v", coeffs)
	}
}

func TestPolyfitOLSTooFewPoints(t *testing.T) {
	_, ok := polyfitOLS([]float64{0, 1}, []float64{1, 2}, 3)
	if ok {
		t.Errorf("expected failure fitting degree 3 from 2 points")
	}
}

func TestFitTrend(t *testing.T) {
	t.Run("fixed_degree_channel_fitted", func(t *testing.T) {
		smoothed := make(Series, 10)
		for i := range smoothed {
			x := float64(i * 10)
			smoothed[i] = Point{
				Power: x,
				VO2:   f64(1000 + 5*x + 0.01*x*x),
			}
		}
		out := FitTrend(smoothed, DefaultConfig())
		for _, p := range out {
			if p.VO2 == nil {
				t.Errorf("expected vo2 trend fitted at power %v", p.Power)
			}
		}
	})

	t.Run("skips_channel_with_too_few_points", func(t *testing.T) {
		smoothed := Series{
			{Power: 0, FatOx: f64(0.3)},
			{Power: 10, FatOx: nil},
			{Power: 20, FatOx: nil},
		}
		out := FitTrend(smoothed, DefaultConfig())
		for _, p := range out {
			if p.FatOx != nil {
				t.Errorf("expected fat_ox left nil with fewer than 3 non-null points")
			}
		}
	})

	t.Run("empty_input", func(t *testing.T) {
		out := FitTrend(nil, DefaultConfig())
		if len(out) != 0 {
			t.Errorf("expected empty output, got %d", len(out))
		}
	})
}

func TestSelectDegreeLOOCV(t *testing.T) {
	xs := make([]float64, 12)
	ys := make([]float64, 12)
	for i := range xs {
		xs[i] = float64(i * 10)
		ys[i] = 2 + 3*xs[i] // purely linear
	}
	degree := selectDegreeLOOCV(xs, ys)
	if degree < 1 || degree > 4 {
		t.Fatalf("expected degree in [1,4], got %d", degree)
	}
}
