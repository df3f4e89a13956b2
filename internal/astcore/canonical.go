package astcore

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// CanonicalHash is the structural-equality hash used by the hash-cons table.
// Two subtrees with equal CanonicalHash are structurally identical, with
// identifier names compared verbatim: the language parsers do not apply
// AlphaRename, so subtrees differing only in identifier names hash apart.
type CanonicalHash uint64

// payloadParticipates reports whether a node's payload contributes to its
// canonical hash. Import targets, callee references, literal values and
// identifier names participate, and so does comment text: two comments with
// different text never merge into one node, while comments with identical
// text share one.
func payloadParticipates(k NodeKind) bool {
	switch k {
	case KindImport, KindCall, KindLiteral, KindIdentifier, KindComment:
		return true
	default:
		return false
	}
}

// Canonical computes the canonical hash of a node given its already-hashed
// children: kind, flags, and ordered children's canonical hashes, with
// payload folded in only for kinds where it is semantically relevant.
// Identifier payloads are hashed as given; AlphaRename is available to turn
// a name into a positional placeholder, but the parsers pass names verbatim.
func Canonical(kind NodeKind, flags Flags, payload Payload, children []CanonicalHash) CanonicalHash {
	h := xxhash.New()
	var buf [10]byte
	buf[0] = byte(kind)
	binary.LittleEndian.PutUint16(buf[1:3], uint16(flags))
	h.Write(buf[:3])

	if payloadParticipates(kind) {
		h.Write([]byte(payload.Name))
		h.Write([]byte{0})
		h.Write([]byte(payload.CalleeRef))
		h.Write([]byte{0})
		h.Write([]byte(payload.ImportTarget))
		h.Write([]byte{0})
		h.Write([]byte(payload.LiteralValue))
		h.Write([]byte{0})
		h.Write([]byte(payload.CommentText))
	}

	for _, c := range children {
		binary.LittleEndian.PutUint64(buf[:8], uint64(c))
		h.Write(buf[:8])
	}
	return CanonicalHash(h.Sum64())
}

// AlphaRename replaces an Identifier payload's Name with a positional
// placeholder, the transformation required before two subtrees can be
// compared for structural (Type-2 clone) equality.
func AlphaRename(name string, position int) string {
	return "$" + itoa(position)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
