package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPassword(t *testing.T) {
	cases := map[string]string{
		"docker run -e ENTRUSTED_DOC_PASSWD=hunter2 -e FOO=bar image": "docker run -e ENTRUSTED_DOC_PASSWD=**** -e FOO=bar image",
		"docker run -e ENTRUSTED_DOC_PASSWD=hunter2":                  "docker run -e ENTRUSTED_DOC_PASSWD=****",
		"docker run --rm image":                                      "docker run --rm image",
	}
	for input, want := range cases {
		assert.Equal(t, want, maskPassword(input))
	}
}

func TestParsePlainProgressLine(t *testing.T) {
	pct, msg, ok := parsePlainProgressLine("42% rendering page 3 of 10")
	assert.True(t, ok)
	assert.Equal(t, 42, pct)
	assert.Equal(t, "rendering page 3 of 10", msg)

	_, _, ok = parsePlainProgressLine("garbage line with no percent marker")
	assert.False(t, ok)
}

func TestParseJSONProgressLine(t *testing.T) {
	pct, msg, ok := parseJSONProgressLine(`{"percent_complete": 55, "data": "performing OCR on page 2"}`)
	assert.True(t, ok)
	assert.Equal(t, 55, pct)
	assert.Equal(t, "performing OCR on page 2", msg)

	_, _, ok = parseJSONProgressLine("not json")
	assert.False(t, ok)
}

func TestClassifyExit(t *testing.T) {
	assert.Contains(t, classifyExit(137), "memory usage")
	assert.Contains(t, classifyExit(139), "memory-access fault")
	assert.Equal(t, "conversion failed", classifyExit(1))
}
