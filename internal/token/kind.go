package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// IntLit is an integer literal; the text is kept verbatim.
	IntLit
	// FloatLit is a floating point literal.
	FloatLit
	// StringLit is a "..." literal including quotes.
	StringLit
	// CharLit is a '...' literal including quotes.
	CharLit
	// Directive is a whole preprocessor line (#include, #define, ...).
	Directive

	KwStruct   // struct
	KwUnion    // union
	KwEnum     // enum
	KwTypedef  // typedef
	KwVoid     // void
	KwInt      // int
	KwChar     // char
	KwFloat    // float
	KwDouble   // double
	KwLong     // long
	KwShort    // short
	KwUnsigned // unsigned
	KwSigned   // signed
	KwConst    // const
	KwVolatile // volatile
	KwStatic   // static
	KwExtern   // extern
	KwInline   // inline
	KwReturn   // return
	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwDo       // do
	KwFor      // for
	KwBreak    // break
	KwContinue // continue
	KwSizeof   // sizeof

	LBrace   // {
	RBrace   // }
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	Lt       // <
	Gt       // >
	LtEq     // <=
	GtEq     // >=
	EqEq     // ==
	BangEq   // !=
	Semicolon
	Comma
	Dot
	Ellipsis // ...
	Arrow    // ->
	Assign   // =
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Question
	Colon
	AndAnd // &&
	OrOr   // ||
	Shl    // <<
	Shr    // >>
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	AmpAssign
	PipeAssign
	CaretAssign
	ShlAssign
	ShrAssign
	PlusPlus   // ++
	MinusMinus // --

	kindCount
)

var kindNames = [kindCount]string{
	Invalid:       "Invalid",
	EOF:           "EOF",
	Ident:         "Ident",
	IntLit:        "IntLit",
	FloatLit:      "FloatLit",
	StringLit:     "StringLit",
	CharLit:       "CharLit",
	Directive:     "Directive",
	KwStruct:      "KwStruct",
	KwUnion:       "KwUnion",
	KwEnum:        "KwEnum",
	KwTypedef:     "KwTypedef",
	KwVoid:        "KwVoid",
	KwInt:         "KwInt",
	KwChar:        "KwChar",
	KwFloat:       "KwFloat",
	KwDouble:      "KwDouble",
	KwLong:        "KwLong",
	KwShort:       "KwShort",
	KwUnsigned:    "KwUnsigned",
	KwSigned:      "KwSigned",
	KwConst:       "KwConst",
	KwVolatile:    "KwVolatile",
	KwStatic:      "KwStatic",
	KwExtern:      "KwExtern",
	KwInline:      "KwInline",
	KwReturn:      "KwReturn",
	KwIf:          "KwIf",
	KwElse:        "KwElse",
	KwWhile:       "KwWhile",
	KwDo:          "KwDo",
	KwFor:         "KwFor",
	KwBreak:       "KwBreak",
	KwContinue:    "KwContinue",
	KwSizeof:      "KwSizeof",
	LBrace:        "LBrace",
	RBrace:        "RBrace",
	LParen:        "LParen",
	RParen:        "RParen",
	LBracket:      "LBracket",
	RBracket:      "RBracket",
	Lt:            "Lt",
	Gt:            "Gt",
	LtEq:          "LtEq",
	GtEq:          "GtEq",
	EqEq:          "EqEq",
	BangEq:        "BangEq",
	Semicolon:     "Semicolon",
	Comma:         "Comma",
	Dot:           "Dot",
	Ellipsis:      "Ellipsis",
	Arrow:         "Arrow",
	Assign:        "Assign",
	Plus:          "Plus",
	Minus:         "Minus",
	Star:          "Star",
	Slash:         "Slash",
	Percent:       "Percent",
	Amp:           "Amp",
	Pipe:          "Pipe",
	Caret:         "Caret",
	Tilde:         "Tilde",
	Bang:          "Bang",
	Question:      "Question",
	Colon:         "Colon",
	AndAnd:        "AndAnd",
	OrOr:          "OrOr",
	Shl:           "Shl",
	Shr:           "Shr",
	PlusAssign:    "PlusAssign",
	MinusAssign:   "MinusAssign",
	StarAssign:    "StarAssign",
	SlashAssign:   "SlashAssign",
	PercentAssign: "PercentAssign",
	AmpAssign:     "AmpAssign",
	PipeAssign:    "PipeAssign",
	CaretAssign:   "CaretAssign",
	ShlAssign:     "ShlAssign",
	ShrAssign:     "ShrAssign",
	PlusPlus:      "PlusPlus",
	MinusMinus:    "MinusMinus",
}

var kindText = map[Kind]string{
	LBrace: "{", RBrace: "}", LParen: "(", RParen: ")", LBracket: "[", RBracket: "]",
	Lt: "<", Gt: ">", LtEq: "<=", GtEq: ">=", EqEq: "==", BangEq: "!=",
	Semicolon: ";", Comma: ",", Dot: ".", Ellipsis: "...", Arrow: "->", Assign: "=",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", Bang: "!", Question: "?", Colon: ":",
	AndAnd: "&&", OrOr: "||", Shl: "<<", Shr: ">>",
	PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=", SlashAssign: "/=",
	PercentAssign: "%=", AmpAssign: "&=", PipeAssign: "|=", CaretAssign: "^=",
	ShlAssign: "<<=", ShrAssign: ">>=", PlusPlus: "++", MinusMinus: "--",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Text returns the source spelling of an operator or punctuation kind, or "" for others.
func (k Kind) Text() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	for word, kw := range keywords {
		if kw == k {
			return word
		}
	}
	return ""
}

// IsAssign reports whether k is '=' or a compound assignment operator.
func (k Kind) IsAssign() bool {
	switch k {
	case Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign,
		AmpAssign, PipeAssign, CaretAssign, ShlAssign, ShrAssign:
		return true
	default:
		return false
	}
}

// IsTypeKeyword reports whether k can start or continue a C base type name.
func (k Kind) IsTypeKeyword() bool {
	switch k {
	case KwVoid, KwInt, KwChar, KwFloat, KwDouble, KwLong, KwShort, KwUnsigned, KwSigned:
		return true
	default:
		return false
	}
}

// IsQualifier reports whether k is a type qualifier kept in the type name.
func (k Kind) IsQualifier() bool {
	return k == KwConst || k == KwVolatile
}

// IsStorage reports whether k is a storage-class or function specifier.
func (k Kind) IsStorage() bool {
	return k == KwStatic || k == KwExtern || k == KwInline
}
