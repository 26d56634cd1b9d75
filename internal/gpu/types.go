package gpu

import "fmt"

// FeatureLevel names a bundle of GPU capabilities a driver may support.
// Higher values mean more capability.
type FeatureLevel uint32

const (
	Level11_0 FeatureLevel = 0xb000
	Level11_1 FeatureLevel = 0xb100
)

// DefaultFeatureLevels is the preference order used when none is configured,
// highest capability first.
var DefaultFeatureLevels = []FeatureLevel{Level11_1, Level11_0}

func (l FeatureLevel) String() string {
	return fmt.Sprintf("%d.%d", l>>12, (l>>8)&0xf)
}

// ParseFeatureLevel parses the "major.minor" form produced by String.
func ParseFeatureLevel(s string) (FeatureLevel, error) {
	var major, minor uint32
	if _, err := fmt.Sscanf(s, "%d.%d", &major, &minor); err != nil {
		return 0, fmt.Errorf("invalid feature level %q: %w", s, err)
	}
	if major > 0xf || minor > 0xf {
		return 0, fmt.Errorf("invalid feature level %q", s)
	}
	return FeatureLevel(major<<12 | minor<<8), nil
}

// CreateFlags controls device creation.
type CreateFlags uint32

const (
	// CreateBGRASupport allows 2D-compatible (BGRA) surface formats. Always set.
	CreateBGRASupport CreateFlags = 1 << iota
	// CreateDebug enables the driver debug layer.
	CreateDebug
)

func (f CreateFlags) Has(flag CreateFlags) bool { return f&flag == flag }

// DriverType selects the kind of driver backing a device. Only hardware
// drivers are used; there is no software fallback.
type DriverType int

const (
	DriverHardware DriverType = iota
)

// DeviceDesc is one device creation attempt at a single feature level.
type DeviceDesc struct {
	Driver DriverType
	Level  FeatureLevel
	Flags  CreateFlags
}

// Format is a swap chain pixel format.
type Format int

const (
	FormatUnknown Format = iota
	FormatBGRA8Unorm
)

func (f Format) String() string {
	switch f {
	case FormatBGRA8Unorm:
		return "BGRA8Unorm"
	default:
		return "Unknown"
	}
}

// SwapEffect is the presentation model of a swap chain.
type SwapEffect int

const (
	SwapEffectFlipSequential SwapEffect = iota
)

// Fixed presentation parameters.
const (
	BufferCount         = 2
	SampleCount         = 1
	MaxFrameLatency     = 1
	PresentSyncInterval = 1
)

// SwapChainDesc describes a swap chain. A zero Width or Height means the
// size is taken from the surface's current client area.
type SwapChainDesc struct {
	Width       int
	Height      int
	Format      Format
	BufferCount int
	SampleCount int
	SwapEffect  SwapEffect
}

// DefaultSwapChainDesc returns the description every chain is created with.
func DefaultSwapChainDesc() SwapChainDesc {
	return SwapChainDesc{
		Format:      FormatBGRA8Unorm,
		BufferCount: BufferCount,
		SampleCount: SampleCount,
		SwapEffect:  SwapEffectFlipSequential,
	}
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// Viewport is the rasterizer region, in pixels, with a depth range.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// ViewportFor returns the viewport covering a whole width x height buffer.
func ViewportFor(width, height int) Viewport {
	return Viewport{
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}
