package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitLog(t *testing.T) {
	t.Cleanup(func() { SetLogSink(nil) })

	var got []string
	SetLogSink(func(domain string, level int, message string) {
		got = append(got, domain+":"+message)
		assert.Equal(t, LogLevelWarning, level)
	})
	emitLog("VIPS", LogLevelWarning, "truncated file")
	assert.Equal(t, []string{"VIPS:truncated file"}, got)

	SetLogSink(nil)
	emitLog("VIPS", LogLevelWarning, "dropped")
	assert.Len(t, got, 1)
}
