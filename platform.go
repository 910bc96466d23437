package wpe

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// PlatformInfo holds platform-specific information
type PlatformInfo struct {
	OS             string
	Arch           string
	Extension      string
	Prefix         string
	SupportsAVX    bool
	SupportsAVX2   bool
	SupportsAVX512 bool
}

// DetectPlatform detects the current platform and the CPU features that
// decide which prebuilt backend variant can run on it.
func DetectPlatform() *PlatformInfo {
	prefix, ext := libraryAffixes(runtime.GOOS)
	info := &PlatformInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Extension: ext,
		Prefix:    prefix,
	}
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "386" {
		info.SupportsAVX = cpuid.CPU.Supports(cpuid.AVX)
		info.SupportsAVX2 = cpuid.CPU.Supports(cpuid.AVX2)
		info.SupportsAVX512 = cpuid.CPU.Supports(cpuid.AVX512F)
	}
	return info
}

func libraryAffixes(goos string) (prefix, extension string) {
	switch goos {
	case "darwin":
		return "lib", ".dylib"
	case "windows":
		return "", ".dll"
	default: // Linux and other ELF platforms
		return "lib", ".so"
	}
}

// LibraryName returns the platform-specific file name of the library base
// for the given OS, e.g. libWPEBackend-fdo.so or WPEBackend-fdo.dll.
func LibraryName(goos, base string) string {
	prefix, extension := libraryAffixes(goos)
	return prefix + base + extension
}

// DefaultLibraryName returns the file name of the default backend for goos.
func DefaultLibraryName(goos string) string {
	return LibraryName(goos, DefaultBackendBase)
}
