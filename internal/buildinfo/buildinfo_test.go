package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	origV, origD := Version, BuildDate
	t.Cleanup(func() { Version, BuildDate = origV, origD })

	Version, BuildDate = "1.0.0", "2026-10-01"

	var buf bytes.Buffer
	PrintBuildData(&buf)

	assert.Contains(t, buf.String(), "Build version: 1.0.0")
	assert.Contains(t, buf.String(), "Build date: 2026-10-01")
	assert.Contains(t, buf.String(), "Build commit: N/A")
}
