// Package graph implements the Frame Graph: a declarative per-frame
// DAG of render passes and the GPU resources they read and write.
package graph

import (
	"errors"
	"fmt"
)

const errPrefix = "graph: "

// ErrConfig means a pass or resource was declared in a way that
// cannot be compiled: a duplicate set/binding index, an attachment
// index out of range, a nil resource in a binding, or a missing
// shader stage for the pipeline type a pass requires.
// It is detected at add time or at Compile and is fatal to startup.
var ErrConfig = errors.New(errPrefix + "configuration error")

// ErrTopology means Compile found a cycle in the declared passes and
// resources, or a node whose in-degree never reached zero.
// It is fatal to startup.
var ErrTopology = errors.New(errPrefix + "topology error")

// ErrAllocation means a GPU memory, image or view creation failed, or
// an asset file used as a resource's initial value could not be read
// or decoded. It is fatal at startup and aborts the current frame at
// runtime.
var ErrAllocation = errors.New(errPrefix + "allocation error")

// ErrDevice means a GPU call returned a fatal code, or the device was
// lost. It is always fatal.
var ErrDevice = errors.New(errPrefix + "device error")

// ErrSwapchainStale means an image acquisition returned out-of-date or
// suboptimal. It is non-fatal: the Frame Data coordinator recovers by
// rebuilding the swapchain and dropping the current frame.
var ErrSwapchainStale = errors.New(errPrefix + "swapchain stale")

func configErrf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, a...))
}

func topologyErrf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrTopology, fmt.Sprintf(format, a...))
}

func allocErrf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrAllocation, fmt.Sprintf(format, a...))
}

func deviceErrf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrDevice, fmt.Sprintf(format, a...))
}
