package badgerdb

import "encoding/binary"

// Key prefixes.
const (
	bookPrefix     = "book:"
	conflictPrefix = "conflict:"
	counterKey     = "meta:counter"
	conflictSeqKey = "meta:conflict_seq"
)

func encodeUint(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func decodeUint(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}
