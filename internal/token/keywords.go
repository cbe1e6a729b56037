package token

var keywords = map[string]Kind{
	"struct":   KwStruct,
	"union":    KwUnion,
	"enum":     KwEnum,
	"typedef":  KwTypedef,
	"void":     KwVoid,
	"int":      KwInt,
	"char":     KwChar,
	"float":    KwFloat,
	"double":   KwDouble,
	"long":     KwLong,
	"short":    KwShort,
	"unsigned": KwUnsigned,
	"signed":   KwSigned,
	"const":    KwConst,
	"volatile": KwVolatile,
	"static":   KwStatic,
	"extern":   KwExtern,
	"inline":   KwInline,
	"return":   KwReturn,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"do":       KwDo,
	"for":      KwFor,
	"break":    KwBreak,
	"continue": KwContinue,
	"sizeof":   KwSizeof,
}

// LookupKeyword reports whether ident is a keyword and returns its Kind.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
