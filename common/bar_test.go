package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar(&buf, "Downloading a.mp4", 512*1024, 1024*1024)
	assert.Contains(t, buf.String(), "50.00%")
	assert.Contains(t, buf.String(), "512 KiB/1.0 MiB")

	b.Add(512 * 1024)
	assert.Contains(t, buf.String(), "100.00%")

	b.Close()
	b.Close()
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestBarNilWriter(t *testing.T) {
	b := NewBar(nil, "x", 0, 10)
	b.Add(5)
	b.Close()
}
