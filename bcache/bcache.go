// Package bcache is a reference-counted block buffer cache.
//
// Bread returns a shared handle for a disk block, reading it from the
// device on a miss. A handle stays in the cache while it is referenced
// or pinned; Pin/Unpin let a client (the transaction log) keep a dirty
// block resident until it has been made durable. WriteBack writes a
// handle's current contents to the device synchronously.
//
// The cache's lock protects only the map and the reference counts.
// Coordinating concurrent mutation of a buffer's contents is the
// caller's business.
package bcache

import (
	"sync"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/util"
)

// NBuf is how many blocks the cache holds before it must evict.
const NBuf uint64 = 512

type Buf struct {
	Bnum common.Bnum
	Data disk.Block
}

type entry struct {
	buf  *Buf
	refs uint32
	pins uint32
}

type Bcache struct {
	mu      *sync.Mutex
	d       disk.Disk
	entries map[common.Bnum]*entry
}

func MkBcache(d disk.Disk) *Bcache {
	return &Bcache{
		mu:      new(sync.Mutex),
		d:       d,
		entries: make(map[common.Bnum]*entry),
	}
}

// evict drops one unreferenced, unpinned entry. Assumes bc.mu held.
func (bc *Bcache) evict() {
	for bn, e := range bc.entries {
		if e.refs == 0 && e.pins == 0 {
			util.DPrintf(5, "bcache: evict %d\n", bn)
			delete(bc.entries, bn)
			return
		}
	}
	panic("bcache: all buffers busy")
}

// Bread returns a referenced handle for block bn, reading through to
// the device on a miss. Handles for the same block are shared.
func (bc *Bcache) Bread(bn common.Bnum) *Buf {
	bc.mu.Lock()
	e, ok := bc.entries[bn]
	if !ok {
		if uint64(len(bc.entries)) >= NBuf {
			bc.evict()
		}
		e = &entry{buf: &Buf{Bnum: bn, Data: bc.d.Read(bn)}}
		bc.entries[bn] = e
	}
	e.refs += 1
	bc.mu.Unlock()
	return e.buf
}

func (bc *Bcache) lookup(b *Buf) *entry {
	e, ok := bc.entries[b.Bnum]
	if !ok || e.buf != b {
		panic("bcache: stale buffer handle")
	}
	return e
}

// Brelse releases a reference taken by Bread.
func (bc *Bcache) Brelse(b *Buf) {
	bc.mu.Lock()
	e := bc.lookup(b)
	if e.refs == 0 {
		panic("bcache: release of unreferenced buffer")
	}
	e.refs -= 1
	bc.mu.Unlock()
}

// Pin makes b ineligible for eviction until a matching Unpin.
func (bc *Bcache) Pin(b *Buf) {
	bc.mu.Lock()
	e := bc.lookup(b)
	e.pins += 1
	bc.mu.Unlock()
}

func (bc *Bcache) Unpin(b *Buf) {
	bc.mu.Lock()
	e := bc.lookup(b)
	if e.pins == 0 {
		panic("bcache: unpin of unpinned buffer")
	}
	e.pins -= 1
	bc.mu.Unlock()
}

// WriteBack synchronously writes b's current contents to the device.
func (bc *Bcache) WriteBack(b *Buf) {
	bc.d.Write(b.Bnum, b.Data)
}

func (bc *Bcache) Size() uint64 {
	return bc.d.Size()
}

func (bc *Bcache) Barrier() {
	bc.d.Barrier()
}
