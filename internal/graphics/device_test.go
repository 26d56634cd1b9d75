package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corewindow/internal/gpu"
	"corewindow/internal/gpu/gputest"
)

func TestCreate_FallsBackToSupportedLevel(t *testing.T) {
	drv := gputest.NewDriver(gpu.Level11_0)

	dev, err := Create(drv, []gpu.FeatureLevel{gpu.Level11_1, gpu.Level11_0}, false)
	require.NoError(t, err)

	assert.Equal(t, gpu.Level11_0, dev.Level())
	assert.Equal(t, []string{"CreateDevice(11.1)", "CreateDevice(11.0)"}, drv.Log.Calls())
}

func TestCreate_PrefersFirstLevel(t *testing.T) {
	drv := gputest.NewDriver(gpu.Level11_0, gpu.Level11_1)

	dev, err := Create(drv, gpu.DefaultFeatureLevels, false)
	require.NoError(t, err)

	assert.Equal(t, gpu.Level11_1, dev.Level())
	assert.Len(t, drv.Log.Calls(), 1)
}

func TestCreate_NoSupportedLevel(t *testing.T) {
	drv := gputest.NewDriver(gpu.FeatureLevel(0xa000))

	dev, err := Create(drv, gpu.DefaultFeatureLevels, false)
	assert.Nil(t, dev)
	assert.ErrorIs(t, err, gpu.ErrDeviceCreation)
	assert.Empty(t, drv.Devices())
}

func TestCreate_DriverUnavailable(t *testing.T) {
	drv := gputest.NewDriver(gpu.Level11_0)
	drv.Unavailable = true

	_, err := Create(drv, gpu.DefaultFeatureLevels, false)
	assert.ErrorIs(t, err, gpu.ErrDeviceCreation)
	assert.ErrorIs(t, err, gpu.ErrNoAdapter)
	assert.Equal(t, []string{"CreateDevice(11.1)"}, drv.Log.Calls(), "no retry after driver failure")
}

func TestCreate_EmptyLevels(t *testing.T) {
	_, err := Create(gputest.NewDriver(gpu.Level11_0), nil, false)
	assert.ErrorIs(t, err, gpu.ErrDeviceCreation)
}

func TestCreate_Flags(t *testing.T) {
	drv := gputest.NewDriver(gpu.Level11_0)

	dev, err := Create(drv, []gpu.FeatureLevel{gpu.Level11_0}, false)
	require.NoError(t, err)
	assert.True(t, dev.Flags().Has(gpu.CreateBGRASupport))
	assert.False(t, dev.Flags().Has(gpu.CreateDebug))

	dev, err = Create(drv, []gpu.FeatureLevel{gpu.Level11_0}, true)
	require.NoError(t, err)
	assert.True(t, dev.Flags().Has(gpu.CreateBGRASupport|gpu.CreateDebug))
	assert.Equal(t, dev.Flags(), drv.Devices()[1].Flags)
}

func TestDevice_ContextAndRelease(t *testing.T) {
	drv := gputest.NewDriver(gpu.Level11_0)
	dev, err := Create(drv, []gpu.FeatureLevel{gpu.Level11_0}, false)
	require.NoError(t, err)

	assert.Same(t, drv.Devices()[0].Ctx(), dev.Context())
	assert.Same(t, drv.Devices()[0], dev.Handle())

	dev.Release()
	dev.Release()
	assert.True(t, dev.Released())
	assert.Nil(t, dev.Context())

	released := 0
	for _, c := range drv.Log.Calls() {
		if c == "ReleaseDevice" {
			released++
		}
	}
	assert.Equal(t, 1, released)
}
