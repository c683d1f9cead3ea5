package utils

import (
	"math"
	"sync"
	"testing"
)

func TestNewRandSource(t *testing.T) {
	rng := NewRandSource(12345)
	if rng.Seed() != 12345 {
		t.Errorf("expected seed 12345, got %d", rng.Seed())
	}

	// Zero seed should be replaced with a time-based seed
	if NewRandSource(0).Seed() == 0 {
		t.Error("expected zero seed to be replaced")
	}
}

func TestRandSourceFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	for i := 0; i < 100; i++ {
		val := rng.Float64()
		if val < 0 || val >= 1.0 {
			t.Errorf("Float64() returned value outside [0, 1): %f", val)
		}
	}
}

func TestRandSourceIntRange(t *testing.T) {
	rng := NewRandSource(12345)
	seen := make(map[int]bool)

	for i := 0; i < 1000; i++ {
		val := rng.IntRange(1, 9)
		if val < 1 || val > 9 {
			t.Fatalf("IntRange(1, 9) returned %d", val)
		}
		seen[val] = true
	}
	if len(seen) != 9 {
		t.Errorf("expected all 9 values to appear, saw %d", len(seen))
	}

	if got := rng.IntRange(4, 4); got != 4 {
		t.Errorf("IntRange(4, 4) = %d", got)
	}
}

func TestRandSourceBernoulliBool(t *testing.T) {
	rng := NewRandSource(12345)
	p := 0.7

	trueCount := 0
	trials := 1000
	for i := 0; i < trials; i++ {
		if rng.BernoulliBool(p) {
			trueCount++
		}
	}

	proportion := float64(trueCount) / float64(trials)
	if math.Abs(proportion-p) > 0.1 {
		t.Errorf("Bernoulli bool proportion %f not close to expected %f", proportion, p)
	}

	if rng.BernoulliBool(0) {
		t.Error("BernoulliBool(0) should never be true")
	}
}

func TestRandSourceUniformFloat64(t *testing.T) {
	rng := NewRandSource(12345)
	min := 0.1
	max := 1.0

	for i := 0; i < 100; i++ {
		val := rng.UniformFloat64(min, max)
		if val < min || val >= max {
			t.Errorf("UniformFloat64(%f, %f) returned value outside range: %f", min, max, val)
		}
	}
}

func TestDeterministicBehavior(t *testing.T) {
	rng1 := NewRandSource(999)
	rng2 := NewRandSource(999)

	for i := 0; i < 10; i++ {
		val1 := rng1.Float64()
		val2 := rng2.Float64()
		if val1 != val2 {
			t.Errorf("Same seed should produce same sequence: %f != %f", val1, val2)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	rng := NewRandSource(12345)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = rng.Float64()
				_ = rng.IntRange(1, 9)
				_ = rng.UniformFloat64(0, 10)
			}
		}()
	}
	wg.Wait()
}
