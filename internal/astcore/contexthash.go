package astcore

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// ContextHash is the 128-bit identifier that persists across runs and is
// unaffected by pure whitespace edits, since positions are not hashed. It
// is derived from the node's structural context rather than its run-local
// NodeID. Identifier names reach it through the structural hash, so a
// rename changes it.
type ContextHash [16]byte

func (c ContextHash) String() string {
	const hex = "0123456789abcdef"
	out := make([]byte, 32)
	for i, b := range c {
		out[i*2] = hex[b>>4]
		out[i*2+1] = hex[b&0xf]
	}
	return string(out)
}

// ComputeContextHash derives the stable context hash from parent kind,
// sibling count, nesting depth, and the normalized structural hash of
// children. The parsers pass the node's CanonicalHash as
// normalizedChildrenHash, with identifier names hashed verbatim.
func ComputeContextHash(parentKind NodeKind, siblingCount, nestingDepth int, normalizedChildrenHash CanonicalHash) ContextHash {
	h, _ := blake2b.New(16, nil)
	var buf [8]byte
	buf[0] = byte(parentKind)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(siblingCount))
	h.Write(buf[:5])
	binary.LittleEndian.PutUint32(buf[:4], uint32(nestingDepth))
	h.Write(buf[:4])
	binary.LittleEndian.PutUint64(buf[:8], uint64(normalizedChildrenHash))
	h.Write(buf[:8])

	var out ContextHash
	copy(out[:], h.Sum(nil))
	return out
}
