package super

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-fslog/common"
)

func TestLayout(t *testing.T) {
	fs := MkFsSuper(1000)
	assert.Equal(t, fs.LogStart, fs.LogHdrBlock())
	assert.Equal(t, fs.LogStart+1, fs.LogDataStart())
	assert.Equal(t, fs.LogStart+common.Bnum(common.LogBlocks), fs.DataStart())
	assert.Equal(t, uint64(1000), fs.MaxBnum())
}

func TestTooSmallPanics(t *testing.T) {
	assert.Panics(t, func() { MkFsSuper(common.LogBlocks) })
}
