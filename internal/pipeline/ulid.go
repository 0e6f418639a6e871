package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 48 bits of millisecond timestamp then 80 bits of
// randomness, Crockford base32 encoded into 26 characters. IDs minted in
// the same millisecond carry an increasing sequence so they sort in
// creation order.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func generateULID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	ulidMu.Lock()
	ts := uint64(now.UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}
	seq := lastSeq
	ulidMu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ts<<16)
	_, _ = rand.Read(b[8:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeULID(b)
}

// encodeULID writes the 128 bits five at a time, most significant first.
// The leading character carries the two padding bits.
func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// ULIDTime recovers the timestamp of an ID, or false when id is not a ULID.
func ULIDTime(id string) (time.Time, bool) {
	if len(id) != 26 {
		return time.Time{}, false
	}
	var ms uint64
	for i := 0; i < 10; i++ {
		v := decodeCrockford(id[i])
		if v < 0 {
			return time.Time{}, false
		}
		ms = ms<<5 | uint64(v)
	}
	// The first 10 characters hold 50 bits: the timestamp plus the two
	// padding bits on top.
	return time.UnixMilli(int64(ms & (1<<48 - 1))), true
}

func decodeCrockford(c byte) int {
	for i := 0; i < len(crockford); i++ {
		if crockford[i] == c {
			return i
		}
	}
	return -1
}
