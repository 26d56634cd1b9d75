// Package graphics creates and owns the process's GPU device.
package graphics

import (
	"errors"
	"fmt"

	"corewindow/internal/gpu"
)

// Device owns the driver device and its immediate context.
// Exactly one exists per process and it outlives every chain bound to it.
type Device struct {
	dev      gpu.Device
	ctx      gpu.Context
	level    gpu.FeatureLevel
	flags    gpu.CreateFlags
	released bool
}

// Create creates a hardware device at the first of levels the driver accepts.
// BGRA support is always requested; the debug layer only when debug is set.
func Create(drv gpu.Driver, levels []gpu.FeatureLevel, debug bool) (*Device, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no feature levels requested", gpu.ErrDeviceCreation)
	}

	flags := gpu.CreateBGRASupport
	if debug {
		flags |= gpu.CreateDebug
	}

	log := gpu.Logger()
	for _, level := range levels {
		dev, err := drv.CreateDevice(gpu.DeviceDesc{
			Driver: gpu.DriverHardware,
			Level:  level,
			Flags:  flags,
		})
		if errors.Is(err, gpu.ErrUnsupportedLevel) {
			log.Debug("feature level rejected", "level", level)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", gpu.ErrDeviceCreation, err)
		}

		log.Info("device created", "level", level, "debug", debug)
		return &Device{
			dev:   dev,
			ctx:   dev.ImmediateContext(),
			level: level,
			flags: flags,
		}, nil
	}
	return nil, fmt.Errorf("%w: none of %v supported", gpu.ErrDeviceCreation, levels)
}

// Level is the feature level the device was created at.
func (d *Device) Level() gpu.FeatureLevel { return d.level }

// Flags are the creation flags the device was created with.
func (d *Device) Flags() gpu.CreateFlags { return d.flags }

// Context returns the immediate context. It is valid until Release.
func (d *Device) Context() gpu.Context { return d.ctx }

// Handle returns the driver device, for swap chain creation.
func (d *Device) Handle() gpu.Device { return d.dev }

// Released reports whether Release has been called.
func (d *Device) Released() bool { return d.released }

// Release frees the driver device. Only the first call has an effect.
func (d *Device) Release() {
	if d.released {
		gpu.Logger().Warn("device released twice")
		return
	}
	d.released = true
	d.dev.Release()
	d.ctx = nil
	gpu.Logger().Info("device released")
}
