package astcore

// NodeID is a dense 32-bit index valid only within one analysis run.
type NodeID uint32

// Unresolved is the sentinel target for Call edges whose callee could not
// be resolved against the reference graph's symbol tables.
const Unresolved NodeID = 0xFFFFFFFF

// Span locates a node in its source file by byte offsets and line/column.
type Span struct {
	StartByte uint32
	EndByte   uint32
	StartLine uint32
	StartCol  uint32
	EndLine   uint32
	EndCol    uint32
}

// Payload carries the kind-discriminated inline fields a node needs.
// Implementations without native sum types represent discriminated unions
// as records with exhaustiveness checked at match sites — callers
// switch on Node.Kind and read only the fields that kind populates.
type Payload struct {
	Name         string // Function/Method/Class/Trait/Field/Parameter/Identifier
	Signature    string // Function/Method
	CalleeRef    string // Call: textual reference to the callee, pre-resolution
	ImportTarget string // Import: the imported module/package path
	LiteralValue string // Literal
	CommentText  string // Comment
	GatingCond   string // non-empty when this node sits behind conditional compilation
	Receiver     string // Method: receiver type name
	AssignTarget string // KindOther tagged "assign": the assigned identifier, when it is a single plain name
}

// Node is the single Unified AST node representation used across all
// languages.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Flags    Flags
	Parent   NodeID
	Children []NodeID
	Span     Span
	File     FileId
	Lang     Language
	Payload  Payload

	// ContextHash is the 128-bit identity stable across runs, computed
	// lazily once the node's children are frozen.
	ContextHash ContextHash
}

// HasParent reports whether Node has a real (non-root) parent.
func (n Node) HasParent() bool { return n.Parent != Unresolved }
