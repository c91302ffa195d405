package super

import (
	"github.com/pkg/errors"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/bcache"
	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/util"
)

// FsSuper describes the disk layout: block 0 is the superblock, the
// log region occupies [LogStart, LogStart+LogBlocks), and everything
// after it is data.
type FsSuper struct {
	Disk      *bcache.Bcache
	Size      uint64
	LogStart  common.Bnum
	LogBlocks uint64 // header block + data slots
}

func mkFsSuper(d disk.Disk, sz uint64) *FsSuper {
	if sz < 1+common.LogBlocks {
		panic("mkFsSuper: disk too small for log region")
	}
	bc := bcache.MkBcache(d)
	return &FsSuper{
		Disk:      bc,
		Size:      sz,
		LogStart:  1,
		LogBlocks: common.LogBlocks,
	}
}

func MkFsSuper(sz uint64) *FsSuper {
	util.DPrintf(1, "MkFsSuper: create mem disk\n")
	return mkFsSuper(disk.NewMemDisk(sz), sz)
}

func MkFsSuperFile(sz uint64, name string) (*FsSuper, error) {
	util.DPrintf(1, "MkFsSuperFile: open file disk %s\n", name)
	file, err := disk.NewFileDisk(name, sz)
	if err != nil {
		return nil, errors.Wrapf(err, "open file disk %s", name)
	}
	return mkFsSuper(file, sz), nil
}

// MkFsSuperDisk wraps an existing device, e.g. to remount after a
// crash.
func MkFsSuperDisk(d disk.Disk) *FsSuper {
	return mkFsSuper(d, d.Size())
}

// LogHdrBlock is where the log header lives.
func (fs *FsSuper) LogHdrBlock() common.Bnum {
	return fs.LogStart
}

// LogDataStart is the first of the log's data slots.
func (fs *FsSuper) LogDataStart() common.Bnum {
	return fs.LogStart + 1
}

// DataStart is the first block past the log region.
func (fs *FsSuper) DataStart() common.Bnum {
	return fs.LogStart + common.Bnum(fs.LogBlocks)
}

func (fs *FsSuper) MaxBnum() common.Bnum {
	return common.Bnum(fs.Size)
}
