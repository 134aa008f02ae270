package utils

import (
	"testing"
	"time"
)

func TestPacerEnforcesInterval(t *testing.T) {
	p := NewPacer(30 * time.Millisecond)

	start := time.Now()
	p.Wait()
	p.Wait()
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("second Wait returned after %v, want >= 30ms", elapsed)
	}
}

func TestPacerDisabled(t *testing.T) {
	p := NewPacer(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		p.Wait()
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("disabled pacer should not sleep, took %v", elapsed)
	}
}
