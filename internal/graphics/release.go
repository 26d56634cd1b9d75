//go:build release

package graphics

const DebugBuild = false
