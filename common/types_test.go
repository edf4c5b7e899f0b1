package common

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestCoalesceReturnsFirstNonZero(t *testing.T) {
	if got := Coalesce(0, 0, 7, 3); got != 7 {
		t.Errorf("Coalesce(0, 0, 7, 3) = %d, want 7", got)
	}
	var unset wgpu.AddressMode
	if got := Coalesce(unset, wgpu.AddressModeClampToEdge); got != wgpu.AddressModeClampToEdge {
		t.Errorf("zero address mode did not fall through, got %v", got)
	}
}

func TestCoalesceAllZero(t *testing.T) {
	if got := Coalesce(0.0, 0.0); got != 0 {
		t.Errorf("Coalesce of all zeros = %v, want 0", got)
	}
}
