// Copyright © 2026 The Loom Authors under an MIT-style license.

// Package parse has a lexer and parser for the surface syntax of
// generator function bodies: an R-flavored expression language with
// if/else, repeat, while, for, break, next, yield, and return.
package parse

import (
	"strings"

	"github.com/loom-lang/loom/loc"
)

// Lexer tokenizes source text.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position (after current char)
	ch           byte // current char under examination
	line         int
	column       int
	// depth counts open parentheses; newlines inside them
	// are plain whitespace, not statement separators.
	depth int
}

// NewLexer returns a Lexer over the given source text.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) loc() loc.Loc {
	return loc.Loc{Line: l.line, Col: l.column}
}

// skipSpace skips whitespace and comments. Newlines are skipped only
// inside parentheses; elsewhere they are tokens of their own.
func (l *Lexer) skipSpace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\n' && l.depth > 0:
			l.readChar()
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipSpace()

	tok := Token{Loc: l.loc()}
	switch l.ch {
	case 0:
		tok.Type = TOKEN_EOF
		return tok
	case '\n':
		tok.Type = TOKEN_NEWLINE
		// A run of newlines is one separator.
		for l.ch == '\n' && l.depth == 0 {
			l.readChar()
			l.skipSpace()
		}
		return tok
	case '(':
		l.depth++
		tok.Type, tok.Value = TOKEN_LPAREN, "("
	case ')':
		if l.depth > 0 {
			l.depth--
		}
		tok.Type, tok.Value = TOKEN_RPAREN, ")"
	case '{':
		tok.Type, tok.Value = TOKEN_LBRACE, "{"
	case '}':
		tok.Type, tok.Value = TOKEN_RBRACE, "}"
	case ',':
		tok.Type, tok.Value = TOKEN_COMMA, ","
	case ';':
		tok.Type, tok.Value = TOKEN_SEMICOLON, ";"
	case '+':
		tok.Type, tok.Value = TOKEN_PLUS, "+"
	case '-':
		tok.Type, tok.Value = TOKEN_MINUS, "-"
	case '*':
		tok.Type, tok.Value = TOKEN_STAR, "*"
	case '/':
		tok.Type, tok.Value = TOKEN_SLASH, "/"
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Value = TOKEN_EQ, "=="
		} else {
			tok.Type, tok.Value = TOKEN_ILLEGAL, "="
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Value = TOKEN_NE, "!="
		} else {
			tok.Type, tok.Value = TOKEN_NOT, "!"
		}
	case '<':
		switch l.peekChar() {
		case '-':
			l.readChar()
			tok.Type, tok.Value = TOKEN_ASSIGN, "<-"
		case '=':
			l.readChar()
			tok.Type, tok.Value = TOKEN_LE, "<="
		default:
			tok.Type, tok.Value = TOKEN_LT, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Value = TOKEN_GE, ">="
		} else {
			tok.Type, tok.Value = TOKEN_GT, ">"
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok.Type, tok.Value = TOKEN_AND, "&&"
		} else {
			tok.Type, tok.Value = TOKEN_ILLEGAL, "&"
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok.Type, tok.Value = TOKEN_OR, "||"
		} else {
			tok.Type, tok.Value = TOKEN_ILLEGAL, "|"
		}
	case '"':
		return l.readString(tok)
	default:
		switch {
		case isDigit(l.ch):
			return l.readNumber(tok)
		case isIdentStart(l.ch):
			return l.readIdent(tok)
		default:
			tok.Type, tok.Value = TOKEN_ILLEGAL, string(l.ch)
		}
	}
	l.readChar()
	return tok
}

func (l *Lexer) readString(tok Token) Token {
	var s strings.Builder
	l.readChar() // opening quote
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			tok.Type, tok.Value = TOKEN_ILLEGAL, "unterminated string"
			return tok
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				s.WriteByte('\n')
			case 't':
				s.WriteByte('\t')
			case '"':
				s.WriteByte('"')
			case '\\':
				s.WriteByte('\\')
			default:
				tok.Type = TOKEN_ILLEGAL
				tok.Value = "bad escape \\" + string(l.ch)
				return tok
			}
		} else {
			s.WriteByte(l.ch)
		}
		l.readChar()
	}
	l.readChar() // closing quote
	tok.Type, tok.Value = TOKEN_STRING, s.String()
	return tok
}

func (l *Lexer) readNumber(tok Token) Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	tok.Type = TOKEN_INT
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		tok.Type = TOKEN_FLOAT
	}
	tok.Value = l.input[start:l.position]
	return tok
}

func (l *Lexer) readIdent(tok Token) Token {
	start := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	tok.Value = l.input[start:l.position]
	if t, ok := keywords[tok.Value]; ok {
		tok.Type = t
	} else {
		tok.Type = TOKEN_IDENT
	}
	return tok
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '.'
}
