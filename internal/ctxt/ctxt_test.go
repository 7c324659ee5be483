// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package ctxt

import (
	"testing"

	_ "github.com/driftforge/frame/driver/wgpu"
)

func TestLoad(t *testing.T) {
	if err := Load(""); err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	defer Unload()

	if Driver() == nil {
		t.Error("Load: Driver is nil after successful load")
	}
	if GPU() == nil {
		t.Error("Load: GPU is nil after successful load")
	} else if *Limits() != GPU().Limits() {
		t.Error("Load: Limits does not match GPU.Limits")
	}
}

func TestLoadNotFound(t *testing.T) {
	if err := Load("nonexistent-driver-name"); err == nil {
		t.Error("Load: expected error for nonexistent driver name")
	}
}
