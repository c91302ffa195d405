package fslog

import (
	"time"

	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/util"
)

// logSlot is the on-disk home of header entry i.
func (l *FsLog) logSlot(i uint64) common.Bnum {
	return l.start + 1 + i
}

// writeLog copies the live cache contents of every logged block into
// its log slot.
func (l *FsLog) writeLog() {
	for i, bn := range l.h.addrs {
		from := l.bc.Bread(bn)
		to := l.bc.Bread(l.logSlot(uint64(i)))
		copy(to.Data, from.Data)
		l.bc.WriteBack(to)
		l.bc.Brelse(to)
		l.bc.Brelse(from)
		util.DPrintf(5, "writeLog: %d to slot %d\n", bn, i)
	}
}

// writeHdr makes the in-memory header durable.
func (l *FsLog) writeHdr() {
	b := l.bc.Bread(l.start)
	copy(b.Data, encHdr(l.h))
	l.bc.WriteBack(b)
	l.bc.Brelse(b)
}

// installTxn copies every log slot to its home block. A normal commit
// drops the home block's pin; recovery has no pins to drop.
func (l *FsLog) installTxn(recovering bool) {
	for i, bn := range l.h.addrs {
		lbuf := l.bc.Bread(l.logSlot(uint64(i)))
		dbuf := l.bc.Bread(bn)
		copy(dbuf.Data, lbuf.Data)
		l.bc.WriteBack(dbuf)
		if !recovering {
			l.bc.Unpin(dbuf)
		}
		l.bc.Brelse(lbuf)
		l.bc.Brelse(dbuf)
		util.DPrintf(5, "installTxn: slot %d to %d\n", i, bn)
	}
}

// commit runs the four durable phases in order, flushing each before
// the next: write-log, write-header (the commit point), install,
// erase-header. A crash before the header write leaves every home
// block untouched; a crash after it is replayed by recovery.
//
// commit runs with committing set and outstanding == 0, so it owns
// l.h and the log region without holding mu.
func (l *FsLog) commit() {
	start := time.Now()
	if l.h.count() == 0 {
		return
	}
	util.DPrintf(1, "commit: %d blocks\n", l.h.count())
	l.writeLog()
	l.bc.Barrier()
	l.writeHdr() // the commit point
	l.bc.Barrier()
	l.installTxn(false)
	l.bc.Barrier()
	l.h.clear()
	l.writeHdr() // erase the transaction
	l.bc.Barrier()
	l.stats.commit.Record(start)
}
