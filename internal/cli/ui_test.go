package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/celltower/pkg/declutter"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestPrintStats(t *testing.T) {
	buf := captureStdout(t)
	printStats(declutter.Stats{Sites: 4, Anchors: 2, ShiftedDown: 1, ShiftedRight: 1, MaxGroupSize: 3}, false)

	out := buf.String()
	for _, want := range []string{"4 sites", "2 anchors", "1 down", "1 right", "largest group 3", iconFresh} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	printStats(declutter.Stats{Sites: 1, Anchors: 1, MaxGroupSize: 1}, true)
	out = buf.String()
	assert.Contains(t, out, iconCached)
	assert.NotContains(t, out, "down")
	assert.NotContains(t, out, "largest group")
}

func TestStatusLines(t *testing.T) {
	buf := captureStdout(t)
	printSuccess("wrote %d files", 2)
	printFile("celltowers.html")
	printKeyValue("map", "http://localhost:8080/")

	out := buf.String()
	assert.Contains(t, out, "wrote 2 files")
	assert.Contains(t, out, "celltowers.html")
	assert.Contains(t, out, "http://localhost:8080/")
}
