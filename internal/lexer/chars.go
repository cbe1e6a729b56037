package lexer

import (
	"strconv"
	"unicode/utf8"
)

type charClass uint8

const (
	classIdentStart charClass = 1 << iota // A-Z a-z _
	classDigit                            // 0-9
	classHexLetter                        // a-f A-F
	classSpace                            // horizontal whitespace, no '\n'
)

var asciiClass = func() (t [utf8.RuneSelf]charClass) {
	for c := 'a'; c <= 'z'; c++ {
		t[c] |= classIdentStart
		t[c-'a'+'A'] |= classIdentStart
	}
	t['_'] |= classIdentStart
	for c := '0'; c <= '9'; c++ {
		t[c] |= classDigit
	}
	for c := 'a'; c <= 'f'; c++ {
		t[c] |= classHexLetter
		t[c-'a'+'A'] |= classHexLetter
	}
	for _, c := range " \t\r\f\v" {
		t[c] |= classSpace
	}
	return t
}()

func hasClass(b byte, c charClass) bool {
	return b < utf8.RuneSelf && asciiClass[b]&c != 0
}

// Идентификаторы SafeC те же, что в C: только ASCII.
func isIdentStartByte(b byte) bool    { return hasClass(b, classIdentStart) }
func isIdentContinueByte(b byte) bool { return hasClass(b, classIdentStart|classDigit) }
func isDec(b byte) bool               { return hasClass(b, classDigit) }
func isHex(b byte) bool               { return hasClass(b, classDigit|classHexLetter) }
func isSpace(b byte) bool             { return hasClass(b, classSpace) }

// runeLen is the byte length of the UTF-8 sequence at the cursor; invalid
// bytes count as one.
func (lx *Lexer) runeLen() uint32 {
	if lx.cursor.EOF() {
		return 0
	}
	if lx.cursor.Peek() < utf8.RuneSelf {
		return 1
	}
	_, size := utf8.DecodeRune(lx.cursor.Rest())
	if size <= 1 {
		return 1
	}
	return uint32(size) //nolint:gosec // size <= utf8.UTFMax
}

// isNumberAfterDot handles ".5".
func (lx *Lexer) isNumberAfterDot() bool {
	return lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1))
}

func quoteText(s string) string {
	return strconv.QuoteToASCII(s)
}
