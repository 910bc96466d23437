//go:build !wpe_release
// +build !wpe_release

package wpe

// releaseBuild is false unless built with -tags wpe_release.
const releaseBuild = false
