//go:build !statsview

package statsview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStubIsInert(t *testing.T) {
	var out bytes.Buffer
	Launch(&out)
	assert.False(t, Available())
	assert.Zero(t, out.Len())
}
