package evaluator

import (
	"strings"

	"github.com/maximbogatyrev/reindexer/domain"
)

type tokenType int

const (
	tokenEnd tokenType = iota
	tokenNumber
	tokenName
	tokenString
	tokenSymbol
)

type token struct {
	typ  tokenType
	text string
	pos  int
}

// tokenizer splits an arithmetic expression into numbers, dotted names,
// quoted strings and one-character symbols. The double-pipe concatenation
// operator is the single two-character token.
type tokenizer struct {
	src string
	pos int
}

func newTokenizer(src string) *tokenizer {
	return &tokenizer{src: src}
}

func (t *tokenizer) errorf(pos int, msg string) error {
	return domain.ErrExprSyntax{Msg: msg, Pos: pos}
}

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.src) && (t.src[t.pos] == ' ' || t.src[t.pos] == '\t' || t.src[t.pos] == '\n') {
		t.pos++
	}
}

// peek returns the next token without consuming it.
func (t *tokenizer) peek() token {
	save := t.pos
	tok := t.next()
	t.pos = save
	return tok
}

// next consumes and returns the next token.
func (t *tokenizer) next() token {
	t.skipSpace()
	if t.pos >= len(t.src) {
		return token{typ: tokenEnd, pos: t.pos}
	}
	start := t.pos
	c := t.src[t.pos]
	switch {
	case c >= '0' && c <= '9':
		for t.pos < len(t.src) && (isDigit(t.src[t.pos]) || t.src[t.pos] == '.') {
			t.pos++
		}
		return token{typ: tokenNumber, text: t.src[start:t.pos], pos: start}
	case isNameStart(c):
		for t.pos < len(t.src) && isNamePart(t.src[t.pos]) {
			t.pos++
		}
		return token{typ: tokenName, text: t.src[start:t.pos], pos: start}
	case c == '\'' || c == '"':
		t.pos++
		end := strings.IndexByte(t.src[t.pos:], c)
		if end < 0 {
			t.pos = len(t.src)
			return token{typ: tokenString, text: t.src[start+1:], pos: start}
		}
		text := t.src[t.pos : t.pos+end]
		t.pos += end + 1
		return token{typ: tokenString, text: text, pos: start}
	case c == '|' && t.pos+1 < len(t.src) && t.src[t.pos+1] == '|':
		t.pos += 2
		return token{typ: tokenSymbol, text: "||", pos: start}
	}
	t.pos++
	return token{typ: tokenSymbol, text: t.src[start:t.pos], pos: start}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || isDigit(c) || c == '.'
}
