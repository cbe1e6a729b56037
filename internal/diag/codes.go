package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005
	LexUnterminatedChar         Code = 1006
	LexEmptyChar                Code = 1007

	// Синтаксические
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynUnclosedParen        Code = 2002
	SynUnclosedBrace        Code = 2003
	SynUnclosedBracket      Code = 2004
	SynUnclosedAngleBracket Code = 2005
	SynExpectSemicolon      Code = 2006
	SynExpectIdentifier     Code = 2007
	SynExpectType           Code = 2008
	SynExpectExpression     Code = 2009
	SynExpectRightBracket   Code = 2010
	SynUnexpectedTopLevel   Code = 2011
	SynTooDeep              Code = 2012
	SynDuplicateTypeParam   Code = 2013
	SynEmptyTypeParams      Code = 2014

	// Мономорфизация
	MonoInfo                  Code = 4000
	MonoNotGeneric            Code = 4001
	MonoArityMismatch         Code = 4002
	MonoDanglingInstantiation Code = 4003
	MonoDepthExceeded         Code = 4004
	MonoMangleCollision       Code = 4005

	IOLoadFileError  Code = 5001
	IOWriteFileError Code = 5002

	ProjInfo            Code = 6000
	ProjInvalidManifest Code = 6001

	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Invalid numeric literal",
		LexTokenTooLong:             "Token too long",
		LexUnterminatedChar:         "Unterminated character literal",
		LexEmptyChar:                "Empty character literal",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynUnclosedParen:            "Unclosed parenthesis",
		SynUnclosedBrace:            "Unclosed brace",
		SynUnclosedBracket:          "Unclosed bracket",
		SynUnclosedAngleBracket:     "Unclosed angle bracket",
		SynExpectSemicolon:          "Expected semicolon",
		SynExpectIdentifier:         "Expected identifier",
		SynExpectType:               "Expected type",
		SynExpectExpression:         "Expected expression",
		SynExpectRightBracket:       "Expected ']'",
		SynUnexpectedTopLevel:       "Unexpected top-level construct",
		SynTooDeep:                  "Nesting too deep",
		SynDuplicateTypeParam:       "Duplicate type parameter",
		SynEmptyTypeParams:          "Empty type parameter list",
		MonoInfo:                    "Monomorphization information",
		MonoNotGeneric:              "Type arguments on a non-generic declaration",
		MonoArityMismatch:           "Type argument count mismatch",
		MonoDanglingInstantiation:   "Instantiation without declaration",
		MonoDepthExceeded:           "Instantiation depth exceeded",
		MonoMangleCollision:         "Mangled name collision",
		IOLoadFileError:             "I/O load file error",
		IOWriteFileError:            "I/O write file error",
		ProjInfo:                    "Project information",
		ProjInvalidManifest:         "Invalid project manifest",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MONO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
