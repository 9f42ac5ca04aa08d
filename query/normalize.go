// normalize.go - Relaxed shell-style JSON to strict extended JSON

package query

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/pkg/errors"
)

var spacedOperator = regexp.MustCompile(`\$\s+`)

// Format removes the whitespace that string interpolation tends to leave
// after a $ sign, so "$ set" becomes "$set".
func Format(s string) string {
	return spacedOperator.ReplaceAllString(s, "$")
}

// Normalize rewrites the relaxed syntax accepted by the mongo shell into
// extended JSON the driver can parse. It quotes bare keys and values, turns
// single-quoted strings into double-quoted ones, and expands ObjectId,
// ISODate, NumberLong, NumberInt, NumberDecimal and /regex/ literals.
func Normalize(s string) (string, error) {
	n := normalizer{src: s}
	if err := n.run(); err != nil {
		return "", errors.Wrapf(err, "normalize %q", s)
	}
	return n.out.String(), nil
}

type normalizer struct {
	src  string
	pos  int
	out  strings.Builder
	last byte // last significant byte written
}

func (n *normalizer) emit(s string) {
	n.out.WriteString(s)
	for i := len(s) - 1; i >= 0; i-- {
		if !isSpace(s[i]) {
			n.last = s[i]
			return
		}
	}
}

func (n *normalizer) run() error {
	for n.pos < len(n.src) {
		c := n.src[n.pos]
		switch {
		case c == '"' || c == '\'':
			str, err := n.readString(c)
			if err != nil {
				return err
			}
			n.emit(quote(str))
		case c == '/' && (n.last == ':' || n.last == '[' || n.last == ','):
			if err := n.readRegex(); err != nil {
				return err
			}
		case c == '-' || isDigit(c):
			start := n.pos
			for n.pos < len(n.src) && isNumberPart(n.src[n.pos]) {
				n.pos++
			}
			n.emit(n.src[start:n.pos])
		case isIdentStart(c):
			if err := n.readIdent(); err != nil {
				return err
			}
		default:
			n.out.WriteByte(c)
			if !isSpace(c) {
				n.last = c
			}
			n.pos++
		}
	}
	return nil
}

// readString consumes a quoted string and returns its decoded content.
func (n *normalizer) readString(q byte) (string, error) {
	start := n.pos
	n.pos++
	var b strings.Builder
	for n.pos < len(n.src) {
		c := n.src[n.pos]
		switch c {
		case q:
			n.pos++
			return b.String(), nil
		case '\\':
			if n.pos+1 >= len(n.src) {
				return "", errors.Errorf("unterminated escape at %d", n.pos)
			}
			r, width, err := unescape(n.src[n.pos+1:])
			if err != nil {
				return "", errors.Wrapf(err, "escape at %d", n.pos)
			}
			b.WriteRune(r)
			n.pos += 1 + width
		default:
			b.WriteByte(c)
			n.pos++
		}
	}
	return "", errors.Errorf("unterminated string at %d", start)
}

// unescape decodes the escape sequence following a backslash.
func unescape(rest string) (rune, int, error) {
	switch rest[0] {
	case 'n':
		return '\n', 1, nil
	case 't':
		return '\t', 1, nil
	case 'r':
		return '\r', 1, nil
	case 'b':
		return '\b', 1, nil
	case 'f':
		return '\f', 1, nil
	case 'u':
		if len(rest) < 5 {
			return 0, 0, errors.New("short unicode escape")
		}
		v, err := strconv.ParseUint(rest[1:5], 16, 32)
		if err != nil {
			return 0, 0, err
		}
		r := rune(v)
		// a high surrogate pairs with a following \uXXXX low surrogate
		if utf16.IsSurrogate(r) && len(rest) >= 11 && rest[5:7] == `\u` {
			if lo, err := strconv.ParseUint(rest[7:11], 16, 32); err == nil {
				if pair := utf16.DecodeRune(r, rune(lo)); pair != unicode.ReplacementChar {
					return pair, 11, nil
				}
			}
		}
		return r, 5, nil
	}
	return rune(rest[0]), 1, nil
}

func (n *normalizer) readRegex() error {
	start := n.pos
	n.pos++
	var pattern strings.Builder
	for {
		if n.pos >= len(n.src) {
			return errors.Errorf("unterminated regex at %d", start)
		}
		c := n.src[n.pos]
		if c == '\\' && n.pos+1 < len(n.src) {
			pattern.WriteByte(c)
			pattern.WriteByte(n.src[n.pos+1])
			n.pos += 2
			continue
		}
		n.pos++
		if c == '/' {
			break
		}
		pattern.WriteByte(c)
	}
	flagStart := n.pos
	for n.pos < len(n.src) && isLetter(n.src[n.pos]) {
		n.pos++
	}
	flags := []byte(n.src[flagStart:n.pos])
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })

	n.emit(`{"$regularExpression":{"pattern":` + quote(pattern.String()) + `,"options":` + quote(string(flags)) + `}}`)
	return nil
}

func (n *normalizer) readIdent() error {
	start := n.pos
	for n.pos < len(n.src) {
		c := n.src[n.pos]
		if c == '[' && n.src[n.pos-1] == '$' {
			// positional operators $[] and $[id]
			end := strings.IndexByte(n.src[n.pos:], ']')
			if end < 0 {
				return errors.Errorf("unterminated positional operator at %d", n.pos)
			}
			n.pos += end + 1
			continue
		}
		if !isIdentPart(c) {
			break
		}
		n.pos++
	}
	ident := n.src[start:n.pos]

	switch ident {
	case "true", "false", "null":
		n.emit(ident)
		return nil
	}

	open := n.pos
	for open < len(n.src) && isSpace(n.src[open]) {
		open++
	}
	if open < len(n.src) && n.src[open] == '(' {
		wrap, ok := constructors[ident]
		if !ok {
			return errors.Errorf("unknown constructor %s at %d", ident, start)
		}
		n.pos = open + 1
		arg, err := n.readArg()
		if err != nil {
			return err
		}
		n.emit(`{"` + wrap + `":` + quote(arg) + `}`)
		return nil
	}

	n.emit(quote(ident))
	return nil
}

var constructors = map[string]string{
	"ObjectId":      "$oid",
	"ISODate":       "$date",
	"NumberLong":    "$numberLong",
	"NumberInt":     "$numberInt",
	"NumberDecimal": "$numberDecimal",
}

// readArg consumes a single constructor argument and the closing paren.
func (n *normalizer) readArg() (string, error) {
	n.skipSpace()
	if n.pos >= len(n.src) {
		return "", errors.New("unterminated constructor")
	}
	var arg string
	if c := n.src[n.pos]; c == '"' || c == '\'' {
		s, err := n.readString(c)
		if err != nil {
			return "", err
		}
		arg = s
	} else {
		start := n.pos
		for n.pos < len(n.src) && n.src[n.pos] != ')' && !isSpace(n.src[n.pos]) {
			n.pos++
		}
		arg = n.src[start:n.pos]
	}
	n.skipSpace()
	if n.pos >= len(n.src) || n.src[n.pos] != ')' {
		return "", errors.Errorf("expected ) at %d", n.pos)
	}
	n.pos++
	return arg, nil
}

func (n *normalizer) skipSpace() {
	for n.pos < len(n.src) && isSpace(n.src[n.pos]) {
		n.pos++
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isIdentStart(c byte) bool { return isLetter(c) || c == '_' || c == '$' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) || c == '.' }

func isNumberPart(c byte) bool {
	return isDigit(c) || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E'
}
