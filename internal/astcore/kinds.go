package astcore

// NodeKind is the closed set of Unified AST node kinds. Every language
// parser maps its native grammar onto this enumeration; no NodeKind is ever
// added downstream of C2.
type NodeKind uint8

const (
	KindModule NodeKind = iota
	KindFunction
	KindMethod
	KindClass
	KindTrait
	KindField
	KindParameter
	KindBlock
	KindCall
	KindImport
	KindLiteral
	KindIdentifier
	KindAttribute
	KindComment
	KindOther
)

func (k NodeKind) String() string {
	switch k {
	case KindModule:
		return "Module"
	case KindFunction:
		return "Function"
	case KindMethod:
		return "Method"
	case KindClass:
		return "Class"
	case KindTrait:
		return "Trait"
	case KindField:
		return "Field"
	case KindParameter:
		return "Parameter"
	case KindBlock:
		return "Block"
	case KindCall:
		return "Call"
	case KindImport:
		return "Import"
	case KindLiteral:
		return "Literal"
	case KindIdentifier:
		return "Identifier"
	case KindAttribute:
		return "Attribute"
	case KindComment:
		return "Comment"
	default:
		return "Other"
	}
}

// Flags is a bitset of per-node boolean attributes.
type Flags uint16

const (
	FlagIsTest Flags = 1 << iota
	FlagIsExported
	FlagIsAsync
	FlagIsGeneric
	FlagHasMacroOrigin
	FlagIsGenerated
	FlagForeignExport
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Language is the closed set of source languages C2 can parse.
type Language uint8

const (
	LangUnknown Language = iota
	LangGo
	LangPython
	LangRust
	LangTypeScript
	LangJavaScript
	LangC
	LangCPP
	LangKotlin
)

func (l Language) String() string {
	switch l {
	case LangGo:
		return "go"
	case LangPython:
		return "python"
	case LangRust:
		return "rust"
	case LangTypeScript:
		return "typescript"
	case LangJavaScript:
		return "javascript"
	case LangC:
		return "c"
	case LangCPP:
		return "cpp"
	case LangKotlin:
		return "kotlin"
	default:
		return "unknown"
	}
}
