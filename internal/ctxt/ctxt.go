// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package ctxt provides the GPU driver used by the graph package.
package ctxt

import (
	"errors"
	"strings"

	"github.com/driftforge/frame/driver"
)

var (
	drv    driver.Driver
	gpu    driver.GPU
	limits driver.Limits
)

var errNoDriver = errors.New("ctxt: driver not found")

// Load attempts to load any driver whose name contains the provided
// name string. It is case-sensitive. If name is the empty string, all
// registered drivers are considered.
// It assumes that the package is uninitialized (or that Unload was
// called) and replaces the active driver/GPU on success, also caching
// the result of gpu.Limits().
func Load(name string) error {
	drivers := driver.Drivers()
	err := errNoDriver
	for i := range drivers {
		if !strings.Contains(drivers[i].Name(), name) {
			continue
		}
		var u driver.GPU
		if u, err = drivers[i].Open(); err != nil {
			continue
		}
		drv = drivers[i]
		gpu = u
		limits = gpu.Limits()
		return nil
	}
	return err
}

// Unload closes the active driver, if any, and clears the package's
// state so Load can be called again.
func Unload() {
	if drv != nil {
		drv.Close()
	}
	drv = nil
	gpu = nil
	limits = driver.Limits{}
}

// Driver returns the active driver.Driver.
func Driver() driver.Driver { return drv }

// GPU returns the active driver.GPU.
func GPU() driver.GPU { return gpu }

// Limits returns the driver.Limits of the active GPU.
// The returned pointer must not be modified by the caller.
func Limits() *driver.Limits { return &limits }
