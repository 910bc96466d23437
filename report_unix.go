//go:build !windows
// +build !windows

package wpe

// showMessageBox is a no-op: stderr is the diagnostic channel here.
func showMessageBox(string) {}

// describeOSError returns the loader's own text; purego already carries the
// dlerror message.
func describeOSError(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
