package fslog

import (
	"time"

	"github.com/mit-pdos/go-fslog/util"
)

func (l *FsLog) readHdr() *hdr {
	b := l.bc.Bread(l.start)
	h := decHdr(b.Data)
	l.bc.Brelse(b)
	return h
}

// recoverFromLog replays a transaction that committed but was not
// fully installed, then clears the on-disk header. It runs once at
// mount time, before any operation is admitted, and is idempotent: a
// second run sees an empty header and only rewrites it.
func (l *FsLog) recoverFromLog() {
	start := time.Now()
	l.h = l.readHdr()
	if l.h.count() > 0 {
		util.DPrintf(1, "recoverFromLog: replay %d blocks\n", l.h.count())
	}
	l.installTxn(true)
	l.h.clear()
	l.writeHdr()
	l.bc.Barrier()
	l.stats.recovery.Record(start)
}
