//go:build windows
// +build windows

package wpe

import (
	"errors"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

func showMessageBox(msg string) {
	text, err := windows.UTF16PtrFromString(msg)
	if err != nil {
		return
	}
	caption, _ := windows.UTF16PtrFromString("Error")
	_, _ = windows.MessageBox(0, text, caption, windows.MB_ICONERROR|windows.MB_OK)
}

// describeOSError turns the last-error code carried by err into the system
// message text. The buffer lives on the stack for the duration of the call.
func describeOSError(err error) string {
	if err == nil {
		return "unknown error"
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) || errno == 0 {
		return err.Error()
	}
	var buf [MaxReportLen]uint16
	flags := uint32(windows.FORMAT_MESSAGE_FROM_SYSTEM | windows.FORMAT_MESSAGE_IGNORE_INSERTS)
	n, ferr := windows.FormatMessage(flags, 0, uint32(errno), 0, buf[:], nil)
	if ferr != nil || n == 0 {
		return err.Error()
	}
	return strings.TrimRight(windows.UTF16ToString(buf[:n]), "\r\n")
}
