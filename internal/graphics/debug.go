//go:build !release

package graphics

// DebugBuild enables the driver debug layer by default. Build with
// -tags release to turn it off.
const DebugBuild = true
