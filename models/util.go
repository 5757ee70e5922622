package models

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"
)

// snowflake generates unique 64-bit IDs: 41 bits of milliseconds since a
// custom epoch, 10 bits of node, 12 bits of sequence. Single-process use.
type snowflake struct {
	epoch  int64
	nodeID int64
	lastMs int64
	seq    int64
	mu     sync.Mutex
}

var idGen = &snowflake{
	epoch:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
	nodeID: 1,
}

func (s *snowflake) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixMilli()
	if now == s.lastMs {
		s.seq = (s.seq + 1) & 0xFFF
		if s.seq == 0 { // sequence rollover, wait next ms
			for now <= s.lastMs {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.seq = 0
	}
	s.lastMs = now
	ts := (now - s.epoch) & ((1 << 41) - 1)
	return (ts << (10 + 12)) | (s.nodeID << 12) | s.seq
}

// NewID generates an identifier for administrative rows (roles, grants,
// activity entries): a snowflake encoded as a hyphenless UUIDv4-shaped
// 32-char hex string. The mapping is reversible via DecodeID.
func NewID() string {
	return encodeID(uint64(idGen.next()))
}

// encodeID packs a 64-bit snowflake into UUIDv4 layout: high 16 bits into
// bytes 4-5, low 48 bits into bytes 10-15, version/variant bits preserved.
func encodeID(id uint64) string {
	var b [16]byte
	binary.BigEndian.PutUint16(b[4:6], uint16(id>>48))
	lo := id & 0x0000FFFFFFFFFFFF
	for i := 0; i < 6; i++ {
		b[15-i] = byte(lo >> (8 * i))
	}

	b[6] = (b[6] & 0x0F) | 0x40
	b[8] = (b[8] & 0x3F) | 0x80

	return fmt.Sprintf("%08x%04x%04x%04x%012x",
		binary.BigEndian.Uint32(b[0:4]),
		binary.BigEndian.Uint16(b[4:6]),
		binary.BigEndian.Uint16(b[6:8]),
		binary.BigEndian.Uint16(b[8:10]),
		b[10:16],
	)
}

// DecodeID recovers the snowflake from an ID produced by NewID. Accepts
// hyphenated and unhyphenated forms.
func DecodeID(id string) (uint64, error) {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) != 32 {
		return 0, fmt.Errorf("invalid id length: %d", len(s))
	}
	var b [16]byte
	for i := 0; i < 16; i++ {
		var v uint64
		if _, err := fmt.Sscanf(s[i*2:(i+1)*2], "%02x", &v); err != nil {
			return 0, fmt.Errorf("invalid hex at byte %d", i)
		}
		b[i] = byte(v)
	}
	hi := uint64(binary.BigEndian.Uint16(b[4:6]))
	var lo uint64
	for i := 10; i < 16; i++ {
		lo = lo<<8 | uint64(b[i])
	}
	return hi<<48 | lo, nil
}
