package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	// MaxOpBlocks is the most blocks a single operation may dirty.
	MaxOpBlocks uint64 = 10

	// LogSize is the capacity of one transaction, in blocks. It is also
	// the number of data slots in the log region.
	LogSize uint64 = 3 * MaxOpBlocks

	// LogBlocks is the size of the on-disk log region: one header block
	// plus LogSize data slots.
	LogBlocks uint64 = LogSize + 1

	HdrMeta = uint64(8) // space for the header's count field
	// HdrAddrs is how many block numbers fit in the header block after
	// the count field.
	HdrAddrs = (disk.BlockSize - HdrMeta) / 8
)

type Bnum = uint64

const NullBnum Bnum = 0
