package wpe

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestReportf(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, WithMessageBox(false))
	r.Reportf("wpe: could not load %s: %s\n", "Default backend library", "not found")
	assert.Equal(t, "wpe: could not load Default backend library: not found\n", buf.String())
}

func TestReportfTruncates(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, WithMessageBox(false))

	r.Reportf("%s", strings.Repeat("x", 2*MaxReportLen))
	assert.Len(t, buf.String(), MaxReportLen)

	buf.Reset()
	// A two-byte rune straddling the limit is dropped whole.
	r.Reportf("%s%s", strings.Repeat("x", MaxReportLen-1), "é")
	assert.Len(t, buf.String(), MaxReportLen-1)
	assert.True(t, utf8.ValidString(buf.String()))
}

func TestOpenErrorMessage(t *testing.T) {
	err := &OpenError{
		Path:    "libWPEBackend-default.so",
		Context: "Default backend library",
		Err:     errors.New("cannot open shared object file"),
	}
	assert.Equal(t, "wpe: could not load Default backend library (libWPEBackend-default.so): cannot open shared object file", err.Error())

	fe := fatal(err)
	assert.True(t, IsFatal(fe))
	assert.ErrorIs(t, fe, err.Err)
	assert.False(t, IsFatal(err))
}
