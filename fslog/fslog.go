// Package fslog is the filesystem's write-ahead transaction log.
//
// A transaction batches the block writes of every operation active at
// the same moment. An operation brackets itself with Begin/End and
// registers each cache block it dirties with Write. The log commits
// when the last active operation ends: logged blocks are copied into
// the log region, the header is written (the commit point), the
// blocks are installed to their home locations, and the header is
// erased. A crash before the header write loses the whole batch; a
// crash after it is repaired at mount time by replaying the log.
//
// A single block write is assumed to reach the device atomically.
package fslog

import (
	"sync"
	"time"

	"github.com/goose-lang/std"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/bcache"
	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/super"
	"github.com/mit-pdos/go-fslog/util"
	"github.com/mit-pdos/go-fslog/util/stats"
)

type opStats struct {
	begin    stats.Op
	write    stats.Op
	absorb   stats.Op
	commit   stats.Op
	recovery stats.Op
}

type FsLog struct {
	mu    *sync.Mutex
	cond  *sync.Cond // signals freed log space and commit completion
	super *super.FsSuper
	bc    *bcache.Bcache
	start common.Bnum // log header block
	size  uint64      // log region length, header included

	// protected by mu
	outstanding uint64 // operations between Begin and End
	committing  bool
	h           *hdr

	stats opStats
}

// MkFsLog mounts the log and replays any transaction that committed
// but was not fully installed before a crash.
func MkFsLog(sup *super.FsSuper) *FsLog {
	if common.HdrMeta+8*common.LogSize > disk.BlockSize {
		panic("MkFsLog: log header does not fit in one block")
	}
	if sup.LogBlocks < 2 {
		panic("MkFsLog: log region too small")
	}
	mu := new(sync.Mutex)
	l := &FsLog{
		mu:    mu,
		cond:  sync.NewCond(mu),
		super: sup,
		bc:    sup.Disk,
		start: sup.LogStart,
		size:  sup.LogBlocks,
		h:     mkHdr(),
	}
	l.recoverFromLog()
	util.DPrintf(1, "MkFsLog: log [%d,%d)\n", l.start, uint64(l.start)+l.size)
	return l
}

// wouldOverflow is the admission bound for nops concurrent
// operations. Deliberately conservative: an operation's
// already-registered writes are not subtracted from its reservation.
func (l *FsLog) wouldOverflow(nops uint64) bool {
	reserved := nops * common.MaxOpBlocks
	if !std.SumNoOverflow(l.h.count(), reserved) {
		return true
	}
	return l.h.count()+reserved > common.LogSize
}

// Begin admits one operation. It blocks while a commit is in progress
// or while admitting one more operation could exhaust the log.
func (l *FsLog) Begin() {
	start := time.Now()
	l.mu.Lock()
	for {
		if l.committing {
			l.cond.Wait()
			continue
		}
		if l.wouldOverflow(l.outstanding + 1) {
			// this op might exhaust the log; wait for a commit
			l.cond.Wait()
			continue
		}
		l.outstanding += 1
		break
	}
	l.mu.Unlock()
	l.stats.begin.Record(start)
}

// End retires one operation. The last operation out runs the commit.
func (l *FsLog) End() {
	var doCommit = false
	l.mu.Lock()
	if l.outstanding == 0 {
		panic("End: no operation in progress")
	}
	l.outstanding -= 1
	if l.committing {
		panic("End: commit already in progress")
	}
	if l.outstanding == 0 {
		doCommit = true
		l.committing = true
	} else {
		// a waiter in Begin may fit now; its reservation shrank
		l.cond.Broadcast()
	}
	l.mu.Unlock()

	if doCommit {
		// commit does device I/O; never hold mu across it
		l.commit()
		l.mu.Lock()
		l.committing = false
		l.cond.Broadcast()
		l.mu.Unlock()
	}
}

// Write records a dirtied buffer in the open transaction. A block
// registered twice keeps its one slot (absorption); commit reads the
// buffer's live cache contents, so the latest write wins. The caller
// must be between Begin and End and must have finished mutating
// b.Data.
func (l *FsLog) Write(b *bcache.Buf) {
	start := time.Now()
	var absorbed = false
	l.mu.Lock()
	if l.h.count() >= common.LogSize || l.h.count() >= l.size-1 {
		panic("Write: transaction too big")
	}
	if l.outstanding < 1 {
		panic("Write: outside of an operation")
	}
	_, ok := l.h.posForAddr(b.Bnum)
	if ok {
		util.DPrintf(5, "Write: absorb %d\n", b.Bnum)
		absorbed = true
	} else {
		// hold the block in the cache until it is installed
		l.bc.Pin(b)
		if err := l.h.addAddr(b.Bnum); err != nil {
			panic(err)
		}
		util.DPrintf(5, "Write: add %d pos %d\n", b.Bnum, l.h.count()-1)
	}
	l.mu.Unlock()
	if absorbed {
		l.stats.absorb.Record(start)
	} else {
		l.stats.write.Record(start)
	}
}

func (l *FsLog) Stats() string {
	return stats.FormatTable(
		[]string{"begin", "write", "absorb", "commit", "recovery"},
		[]stats.Op{l.stats.begin, l.stats.write, l.stats.absorb,
			l.stats.commit, l.stats.recovery})
}
