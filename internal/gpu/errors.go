package gpu

import "errors"

var (
	// ErrDeviceCreation means no requested feature level could be created.
	ErrDeviceCreation = errors.New("gpu: device creation failed")
	// ErrSwapChainCreation means the surface is invalid or the present model
	// is unsupported.
	ErrSwapChainCreation = errors.New("gpu: swap chain creation failed")
	// ErrResourceInUse means a resize was attempted while a view over a back
	// buffer was still alive.
	ErrResourceInUse = errors.New("gpu: resource in use")
	// ErrUnsupportedLevel means the driver rejected a feature level.
	ErrUnsupportedLevel = errors.New("gpu: feature level not supported")
	// ErrNoAdapter means no hardware driver is available.
	ErrNoAdapter = errors.New("gpu: no hardware adapter")
	// ErrInvalidTransition means an operation is not allowed in the current
	// chain state.
	ErrInvalidTransition = errors.New("gpu: invalid state transition")
	// ErrReleased means the object was already released.
	ErrReleased = errors.New("gpu: released")
	// ErrDeviceLost means the driver removed or reset the device.
	ErrDeviceLost = errors.New("gpu: device lost")
)
