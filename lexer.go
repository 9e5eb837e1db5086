// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xmldom

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/triemap"
)

type lexError string

// Error implements error interface, returns itself since it's already a string.
func (err lexError) Error() string {
	return string(err)
}

const (
	// ErrLex wraps every tokenization failure, whatever the malformed
	// construct. A failed Token call kills the stream: later calls keep
	// returning the same error and a fresh Lexer must be constructed to
	// start over.
	ErrLex lexError = "xml lex error"

	// errUnexpectedChar is the reason attached when a rune appears where
	// the grammar does not allow it.
	errUnexpectedChar lexError = "unexpected char"
)

// Lexer scans an immutable text buffer into Tokens, one call at a time.
//
// The cursor only moves forward, with at most one rune of lookahead.
// Iterating Token until io.EOF yields the finite token sequence of the
// input; the sequence is not restartable mid-stream.
type Lexer struct {
	input string
	pos   int
	row   int
	col   int

	// err is sticky: once the stream ends or fails, every later Token call
	// returns the same result.
	err error

	attrs attrList
	names triemap.RuneSliceMap
}

// NewLexer instantiates a Lexer over the given XML text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Token decodes the next token from the current position.
//
// It returns io.EOF once the input is exhausted, and an error wrapping
// ErrLex on any malformed construct.
func (l *Lexer) Token() (Token, error) {
	if l.err != nil {
		return nil, l.err
	}
	t, err := l.token()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: %v at row: %d col: %d", ErrLex, err, l.row+1, l.col)
		}
		l.err = err
		return nil, err
	}
	return t, nil
}

func (l *Lexer) token() (Token, error) {
	if l.pos >= len(l.input) {
		return nil, io.EOF
	}
	rest := l.input[l.pos:]
	switch {
	case strings.HasPrefix(rest, "<?xml"):
		return l.declaration()
	case strings.HasPrefix(rest, "<!DOCTYPE"):
		return l.doctype()
	case strings.HasPrefix(rest, "<!--"):
		return l.comment()
	case strings.HasPrefix(rest, "<![CDATA["):
		return l.cdata()
	case strings.HasPrefix(rest, "<?"):
		return l.procInst()
	case strings.HasPrefix(rest, "</"):
		return l.closeTag()
	case rest[0] == '<':
		return l.startTag()
	}
	return l.charData()
}

// unexpectedChar is a utility function to attach the rune to the
// errUnexpectedChar reason.
func unexpectedChar(r rune) error {
	return fmt.Errorf("%w %q", errUnexpectedChar, r)
}

// checkUnexpectedEOF is a helper function to catch an EOF and transform it
// to UnexpectedEOF when it happens mid-way through a construct.
func checkUnexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// next consumes one rune and updates col/row positions for better error
// messaging.
func (l *Lexer) next() (rune, error) {
	if l.pos >= len(l.input) {
		return 0, io.EOF
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	if r == '\n' {
		l.col = 0
		l.row++
	} else {
		l.col++
	}
	return r, nil
}

// peek returns the next rune without consuming it.
func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r, true
}

// advance consumes the next n bytes, updating col/row.
func (l *Lexer) advance(n int) {
	for _, r := range l.input[l.pos : l.pos+n] {
		if r == '\n' {
			l.col = 0
			l.row++
		} else {
			l.col++
		}
	}
	l.pos += n
}

// skipSpace consumes a run of whitespace. The skipped runes are syntax,
// never part of a token.
func (l *Lexer) skipSpace() {
	for {
		r, ok := l.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		l.next()
	}
}

// expect consumes one rune and fails unless it is want.
func (l *Lexer) expect(want rune, context string) error {
	r, err := l.next()
	if err != nil {
		return fmt.Errorf("%w, expected %q %s", checkUnexpectedEOF(err), want, context)
	}
	if r != want {
		return fmt.Errorf("%w, expected %q %s", unexpectedChar(r), want, context)
	}
	return nil
}

// readName reads an identifier: a NameStart rune followed by NameChar
// runes. Names are interned so repeated tag and attribute names share one
// string value.
func (l *Lexer) readName() (string, error) {
	start := l.pos
	r, err := l.next()
	if err != nil {
		return "", fmt.Errorf("%w reading identifier", checkUnexpectedEOF(err))
	}
	if !isNameStart(r) {
		return "", fmt.Errorf("%w reading identifier", unexpectedChar(r))
	}
	for {
		r, ok := l.peek()
		if !ok || !isNameChar(r) {
			break
		}
		l.next()
	}
	raw := l.input[start:l.pos]
	runes := []rune(raw)
	if name, ok := l.names.Get(runes); ok {
		return name.(string), nil
	}
	l.names.Put(runes, raw)
	return raw, nil
}

// readQuoted reads a value wrapped in matching quotes, either " or '.
func (l *Lexer) readQuoted(context string) (string, error) {
	quote, err := l.next()
	if err != nil {
		return "", fmt.Errorf("%w, expected quoted value %s", checkUnexpectedEOF(err), context)
	}
	if quote != '"' && quote != '\'' {
		return "", fmt.Errorf("%w, expected quoted value %s", unexpectedChar(quote), context)
	}
	start := l.pos
	for {
		r, err := l.next()
		if err != nil {
			return "", fmt.Errorf("%w, expected closing %q %s", checkUnexpectedEOF(err), quote, context)
		}
		if r == quote {
			return l.input[start : l.pos-1], nil
		}
	}
}

// charData accumulates a text run up to (but not including) the next '<'.
// Text content itself never fails to lex; whitespace is preserved verbatim.
func (l *Lexer) charData() (Token, error) {
	rest := l.input[l.pos:]
	end := strings.IndexByte(rest, '<')
	if end < 0 {
		end = len(rest)
	}
	l.advance(end)
	return &CharData{Data: rest[:end]}, nil
}

// declaration processes <?xml version="1.0" encoding="..." standalone="..."?>
//
// version must be the first parameter, spelled exactly and case-sensitively;
// encoding and standalone are optional but must appear in that order. Any
// other parameter name is an error.
func (l *Lexer) declaration() (Token, error) {
	l.advance(len("<?xml"))
	r, ok := l.peek()
	if !ok {
		return nil, fmt.Errorf("%w in declaration", io.ErrUnexpectedEOF)
	}
	if !unicode.IsSpace(r) && r != '?' {
		return nil, fmt.Errorf("%w in declaration", unexpectedChar(r))
	}
	decl := &Declaration{}
	seen := 0 // 0 expects version, then 1..3 track version/encoding/standalone
	for {
		l.skipSpace()
		if strings.HasPrefix(l.input[l.pos:], "?>") {
			if seen == 0 {
				return nil, errors.New("declaration is missing version")
			}
			l.advance(len("?>"))
			return decl, nil
		}
		name, err := l.readName()
		if err != nil {
			return nil, fmt.Errorf("%w in declaration", err)
		}
		var dst *string
		switch {
		case name == "version" && seen == 0:
			dst, seen = &decl.Version, 1
		case name == "encoding" && seen == 1:
			dst, seen = &decl.Encoding, 2
		case name == "standalone" && (seen == 1 || seen == 2):
			dst, seen = &decl.Standalone, 3
		default:
			return nil, fmt.Errorf("unknown declaration attribute %q", name)
		}
		l.skipSpace()
		if err := l.expect('=', "after declaration attribute "+name); err != nil {
			return nil, err
		}
		l.skipSpace()
		value, err := l.readQuoted("for declaration attribute " + name)
		if err != nil {
			return nil, err
		}
		*dst = value
	}
}

// doctype processes <!DOCTYPE name PUBLIC "pubid" "sysid" [subset]>
//
// The PUBLIC and SYSTEM external identifier forms are optional, as is the
// internal subset, whose contents are discarded.
func (l *Lexer) doctype() (Token, error) {
	l.advance(len("<!DOCTYPE"))
	r, ok := l.peek()
	if !ok {
		return nil, fmt.Errorf("%w in doctype", io.ErrUnexpectedEOF)
	}
	if !unicode.IsSpace(r) {
		return nil, fmt.Errorf("%w in doctype", unexpectedChar(r))
	}
	l.skipSpace()
	name, err := l.readName()
	if err != nil {
		return nil, fmt.Errorf("%w, expected doctype name", err)
	}
	dt := &DocType{Name: name}
	l.skipSpace()
	switch {
	case strings.HasPrefix(l.input[l.pos:], "PUBLIC"):
		l.advance(len("PUBLIC"))
		l.skipSpace()
		if dt.PublicID, err = l.readQuoted("for public identifier"); err != nil {
			return nil, err
		}
		l.skipSpace()
		if dt.SystemID, err = l.readQuoted("for system identifier"); err != nil {
			return nil, err
		}
	case strings.HasPrefix(l.input[l.pos:], "SYSTEM"):
		l.advance(len("SYSTEM"))
		l.skipSpace()
		if dt.SystemID, err = l.readQuoted("for system identifier"); err != nil {
			return nil, err
		}
	}
	l.skipSpace()
	if r, ok := l.peek(); ok && r == '[' {
		rest := l.input[l.pos:]
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			l.advance(len(rest))
			return nil, fmt.Errorf("%w, doctype internal subset must end in ']'", io.ErrUnexpectedEOF)
		}
		l.advance(end + 1)
		l.skipSpace()
	}
	if err := l.expect('>', "to end doctype"); err != nil {
		return nil, err
	}
	return dt, nil
}

// startTag processes a token like <foo>, <foo/>, or <foo bar="baz" biz='x'>.
// Attribute values are mandatory and must be quoted.
func (l *Lexer) startTag() (Token, error) {
	l.advance(1) // consume '<'
	name, err := l.readName()
	if err != nil {
		return nil, fmt.Errorf("%w, expected tag identifier", err)
	}
	tag := &StartTag{Name: name}
	l.attrs.reset()
	for {
		l.skipSpace()
		r, ok := l.peek()
		if !ok {
			return nil, fmt.Errorf("%w on tag <%s>", io.ErrUnexpectedEOF, name)
		}
		switch r {
		case '>':
			l.next()
			tag.Attr = l.attrs.get()
			return tag, nil
		case '/':
			l.next()
			if err := l.expect('>', "for self-closing tag"); err != nil {
				return nil, fmt.Errorf("%w on tag <%s>", err, name)
			}
			tag.SelfClosing = true
			tag.Attr = l.attrs.get()
			return tag, nil
		}
		attr, err := l.readName()
		if err != nil {
			return nil, fmt.Errorf("%w for attribute on tag <%s>", err, name)
		}
		l.skipSpace()
		if err := l.expect('=', "after attribute "+attr); err != nil {
			return nil, fmt.Errorf("%w on tag <%s>", err, name)
		}
		l.skipSpace()
		value, err := l.readQuoted("for attribute " + attr)
		if err != nil {
			return nil, fmt.Errorf("%w on tag <%s>", err, name)
		}
		l.attrs.set(attr, value)
	}
}

// closeTag processes a token like </foo>, tolerating whitespace before '>'.
func (l *Lexer) closeTag() (Token, error) {
	l.advance(len("</"))
	name, err := l.readName()
	if err != nil {
		return nil, fmt.Errorf("%w, expected closing tag", err)
	}
	l.skipSpace()
	if err := l.expect('>', "for closing tag </"+name+">"); err != nil {
		return nil, err
	}
	return &CloseTag{Name: name}, nil
}

// comment processes a token like <!-- -->. The contents are not validated
// here; rejecting interior '--' belongs to well-formedness enforcement.
func (l *Lexer) comment() (Token, error) {
	l.advance(len("<!--"))
	rest := l.input[l.pos:]
	end := strings.Index(rest, "-->")
	if end < 0 {
		l.advance(len(rest))
		return nil, fmt.Errorf("%w, comment must end in '-->'", io.ErrUnexpectedEOF)
	}
	l.advance(end + len("-->"))
	return &Comment{Data: rest[:end]}, nil
}

// cdata processes a token like <![CDATA[ ]]>.
func (l *Lexer) cdata() (Token, error) {
	l.advance(len("<![CDATA["))
	rest := l.input[l.pos:]
	end := strings.Index(rest, "]]>")
	if end < 0 {
		l.advance(len(rest))
		return nil, fmt.Errorf("%w, CDATA section must end in ']]>'", io.ErrUnexpectedEOF)
	}
	l.advance(end + len("]]>"))
	return &CDATA{Data: rest[:end]}, nil
}

// procInst processes a token like <?target data?>. Data runs to the first
// '?>'; a bare <?target?> yields empty data.
func (l *Lexer) procInst() (Token, error) {
	l.advance(len("<?"))
	target, err := l.readName()
	if err != nil {
		return nil, fmt.Errorf("%w, expected processing instruction target", err)
	}
	l.skipSpace()
	rest := l.input[l.pos:]
	end := strings.Index(rest, "?>")
	if end < 0 {
		l.advance(len(rest))
		return nil, fmt.Errorf("%w, processing instruction must end in '?>'", io.ErrUnexpectedEOF)
	}
	l.advance(end + len("?>"))
	return &ProcInst{Target: target, Data: rest[:end]}, nil
}
