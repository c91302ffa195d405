package fslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/common"
)

func TestHdrFitsOneBlock(t *testing.T) {
	assert.LessOrEqual(t, common.HdrMeta+8*common.LogSize, uint64(disk.BlockSize))
	assert.LessOrEqual(t, common.LogSize, common.HdrAddrs)
}

func TestHdrEncDec(t *testing.T) {
	h := mkHdr()
	assert.NoError(t, h.addAddr(3))
	assert.NoError(t, h.addAddr(7))

	h2 := decHdr(encHdr(h))
	assert.Equal(t, uint64(2), h2.count())
	assert.Equal(t, h.addrs, h2.addrs)
}

func TestHdrDecEmpty(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	h := decHdr(blk)
	assert.Equal(t, uint64(0), h.count())
}

func TestHdrCapacity(t *testing.T) {
	h := mkHdr()
	for i := uint64(0); i < common.LogSize; i++ {
		assert.NoError(t, h.addAddr(100+i))
	}
	assert.Equal(t, ErrLogFull, h.addAddr(999))
	assert.Equal(t, common.LogSize, h.count())
}

func TestHdrPosForAddr(t *testing.T) {
	h := mkHdr()
	assert.NoError(t, h.addAddr(5))
	assert.NoError(t, h.addAddr(9))

	pos, ok := h.posForAddr(9)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), pos)

	_, ok = h.posForAddr(11)
	assert.False(t, ok)
}
