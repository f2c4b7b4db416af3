package cpu

import (
	"sync"
	"testing"
)

func TestDetector_NoErrorPath(t *testing.T) {
	d := NewDetector()
	feats := d.Detect()
	// Detection never fails; unsupported hosts degrade to a stub brand
	// with all capability flags false
	if feats.Brand == "" {
		t.Error("brand must never be empty")
	}
	if len(feats.Brand) > maxBrandLen {
		t.Errorf("brand %q exceeds %d characters", feats.Brand, maxBrandLen)
	}
}

func TestDetector_ComputeOnce(t *testing.T) {
	d := NewDetector()

	// Race many first-callers; every one must observe the identical result
	const goroutines = 16
	results := make([]Features, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = d.Detect()
		}(i)
	}
	wg.Wait()

	first := results[0]
	for i, r := range results {
		if r != first {
			t.Fatalf("goroutine %d saw %+v, first saw %+v", i, r, first)
		}
	}
}

func TestDetector_AccessorsConsistent(t *testing.T) {
	d := NewDetector()
	feats := d.Detect()
	if d.HasAES() != feats.HasAES || d.HasAVX2() != feats.HasAVX2 ||
		d.HasAVX512F() != feats.HasAVX512F || d.HasBMI2() != feats.HasBMI2 {
		t.Error("accessor methods disagree with the Features snapshot")
	}
	if d.Brand() != feats.Brand {
		t.Error("Brand() disagrees with the Features snapshot")
	}
}

func TestLogicalCores(t *testing.T) {
	if n := LogicalCores(); n < 1 {
		t.Errorf("LogicalCores() = %d, want at least 1", n)
	}
}
