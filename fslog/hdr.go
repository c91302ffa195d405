package fslog

import (
	"github.com/pkg/errors"
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fslog/common"
)

// ErrLogFull reports that a transaction has used every log slot.
var ErrLogFull = errors.New("transaction exceeds log capacity")

// hdr is the log header: the home block numbers of the open (or
// committing) transaction, in insertion order. Entry i's logged copy
// lives in log data slot i.
type hdr struct {
	addrs []common.Bnum
}

func mkHdr() *hdr {
	return &hdr{}
}

func (h *hdr) count() uint64 {
	return uint64(len(h.addrs))
}

// posForAddr finds bn's slot. Linear scan; the header is small.
func (h *hdr) posForAddr(bn common.Bnum) (uint64, bool) {
	for i, a := range h.addrs {
		if a == bn {
			return uint64(i), true
		}
	}
	return 0, false
}

func (h *hdr) addAddr(bn common.Bnum) error {
	if h.count() >= common.LogSize {
		return ErrLogFull
	}
	h.addrs = append(h.addrs, bn)
	return nil
}

func (h *hdr) clear() {
	h.addrs = h.addrs[:0]
}

func encHdr(h *hdr) disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt(h.count())
	addrs := make([]uint64, common.LogSize)
	copy(addrs, h.addrs)
	enc.PutInts(addrs)
	return enc.Finish()
}

func decHdr(blk disk.Block) *hdr {
	dec := marshal.NewDec(blk)
	n := dec.GetInt()
	if n > common.LogSize {
		panic("decHdr: count exceeds log capacity")
	}
	addrs := dec.GetInts(common.LogSize)
	return &hdr{addrs: addrs[:n]}
}
