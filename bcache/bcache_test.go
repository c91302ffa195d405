package bcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tchajed/goose/machine/disk"
)

func mkBlock(b byte) disk.Block {
	block := make(disk.Block, disk.BlockSize)
	for i := range block {
		block[i] = b
	}
	return block
}

func TestReadThrough(t *testing.T) {
	d := disk.NewMemDisk(100)
	d.Write(3, mkBlock(3))
	bc := MkBcache(d)

	b := bc.Bread(3)
	assert.Equal(t, mkBlock(3), b.Data)

	// handles for the same block are shared
	b2 := bc.Bread(3)
	assert.Same(t, b, b2)
	bc.Brelse(b2)
	bc.Brelse(b)
}

func TestWriteBack(t *testing.T) {
	d := disk.NewMemDisk(100)
	bc := MkBcache(d)

	b := bc.Bread(4)
	copy(b.Data, mkBlock(7))
	assert.Equal(t, mkBlock(0), d.Read(4), "dirty buffer written early")
	bc.WriteBack(b)
	assert.Equal(t, mkBlock(7), d.Read(4))
	bc.Brelse(b)
}

func TestPinPreventsEviction(t *testing.T) {
	d := disk.NewMemDisk(2 * NBuf)
	bc := MkBcache(d)

	// dirty block 5 in the cache only, pin it, and drop the reference
	b := bc.Bread(5)
	copy(b.Data, mkBlock(9))
	bc.Pin(b)
	bc.Brelse(b)

	// churn through enough blocks to force evictions
	for bn := NBuf; bn < 2*NBuf; bn++ {
		x := bc.Bread(bn)
		bc.Brelse(x)
	}

	// the pinned buffer survived with its dirty contents
	b2 := bc.Bread(5)
	assert.Same(t, b, b2)
	assert.Equal(t, mkBlock(9), b2.Data)
	bc.Unpin(b2)
	bc.Brelse(b2)
}

func TestUnpinUnpinnedPanics(t *testing.T) {
	d := disk.NewMemDisk(100)
	bc := MkBcache(d)

	b := bc.Bread(1)
	assert.Panics(t, func() { bc.Unpin(b) })
	bc.Brelse(b)
}

func TestBrelseUnreferencedPanics(t *testing.T) {
	d := disk.NewMemDisk(100)
	bc := MkBcache(d)

	b := bc.Bread(1)
	bc.Brelse(b)
	assert.Panics(t, func() { bc.Brelse(b) })
}
