package logging

import "testing"

func TestProgressSamplerDefaults(t *testing.T) {
	for _, size := range []float64{0, -1, 150} {
		if s := NewProgressSampler(10, size); s.bucketSize != 5 {
			t.Fatalf("bucket size %v: got %v, want 5", size, s.bucketSize)
		}
	}
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(100, 25)
	var reported []int
	for done := 1; done <= 100; done++ {
		if _, ok := s.Tick(done); ok {
			reported = append(reported, done)
		}
	}
	want := []int{1, 25, 50, 75, 100}
	if len(reported) != len(want) {
		t.Fatalf("reported %v, want %v", reported, want)
	}
	for i := range want {
		if reported[i] != want[i] {
			t.Fatalf("reported %v, want %v", reported, want)
		}
	}
	if _, ok := s.Tick(100); ok {
		t.Fatal("final row reported twice")
	}
}

func TestProgressSamplerReportsLastRowOfOddTotals(t *testing.T) {
	s := NewProgressSampler(3, 50)
	var got []bool
	for done := 1; done <= 3; done++ {
		_, ok := s.Tick(done)
		got = append(got, ok)
	}
	// 33% opens bucket 0, 66% opens bucket 1, 100% is the final row.
	if !got[0] || !got[1] || !got[2] {
		t.Fatalf("reports = %v, want all true", got)
	}
}

func TestProgressSamplerWithoutRows(t *testing.T) {
	var nilSampler *ProgressSampler
	if _, ok := nilSampler.Tick(1); ok {
		t.Fatal("nil sampler reported")
	}
	if percent, ok := NewProgressSampler(0, 10).Tick(0); ok || percent != -1 {
		t.Fatalf("empty pass = %v/%v, want -1/false", percent, ok)
	}
}
