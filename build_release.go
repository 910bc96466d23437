//go:build wpe_release
// +build wpe_release

package wpe

// releaseBuild disables the WPE_BACKEND_LIBRARY override.
const releaseBuild = true
