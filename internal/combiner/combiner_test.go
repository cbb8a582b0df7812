package combiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineRejectsEmptyPageList(t *testing.T) {
	err := Combine(nil, "/tmp/out.pdf", "")
	assert.Error(t, err)
}
