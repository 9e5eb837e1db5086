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

// Token represents one lexically recognized unit of XML syntax:
//
// * Declaration: <?xml version="1.0"?>
// * DocType: <!DOCTYPE foo>
// * StartTag: <foo> or <foo/>
// * CloseTag: </foo>
// * Comment: <!-- foo -->
// * ProcInst: <?foo bar?>
// * CDATA: <![CDATA[ foo ]]>
// * CharData: any run of text outside angle brackets
type Token interface {
	token()

	// Copy the token into a new instance, detached from the lexer that
	// produced it.
	Copy() Token
}

// Declaration is the XML declaration <?xml version="1.0" encoding="UTF-8"?>.
//
// Encoding and Standalone are empty when the corresponding parameter is
// absent from the declaration.
type Declaration struct {
	Version    string
	Encoding   string
	Standalone string
}

func (*Declaration) token() {}

func (d *Declaration) Copy() Token {
	c := *d
	return &c
}

// DocType is a document type declaration <!DOCTYPE name>.
//
// PublicID and SystemID are empty when absent. An internal subset ([...])
// is recognized but its contents are discarded.
type DocType struct {
	Name     string
	PublicID string
	SystemID string
}

func (*DocType) token() {}

func (d *DocType) Copy() Token {
	c := *d
	return &c
}

// StartTag is an opening XML tag <tag> or a self-closing tag <tag/>.
//
// Attr preserves appearance order. A duplicate attribute name overwrites
// the earlier value in place; the lexer itself does not reject duplicates,
// that check belongs to well-formedness enforcement.
type StartTag struct {
	Name        string
	Attr        []Attr
	SelfClosing bool
}

func (*StartTag) token() {}

func (s *StartTag) Copy() Token {
	c := StartTag{Name: s.Name, SelfClosing: s.SelfClosing}
	if s.Attr != nil {
		c.Attr = make([]Attr, len(s.Attr))
		copy(c.Attr, s.Attr)
	}
	return &c
}

// CloseTag is a closing XML tag </tag>.
type CloseTag struct {
	Name string
}

func (*CloseTag) token() {}

func (t *CloseTag) Copy() Token {
	c := *t
	return &c
}

// Comment has the format <!-- ... -->. Data is the contents between the
// delimiters, verbatim.
type Comment struct {
	Data string
}

func (*Comment) token() {}

func (t *Comment) Copy() Token {
	c := *t
	return &c
}

// ProcInst is a processing instruction <?target data?>. Data is everything
// after the target up to the closing delimiter; <?target?> yields empty
// data.
type ProcInst struct {
	Target string
	Data   string
}

func (*ProcInst) token() {}

func (t *ProcInst) Copy() Token {
	c := *t
	return &c
}

// CDATA is a CDATA section <![CDATA[ ... ]]>.
type CDATA struct {
	Data string
}

func (*CDATA) token() {}

func (t *CDATA) Copy() Token {
	c := *t
	return &c
}

// CharData contains a text run, preserved verbatim including whitespace.
// The lexer performs no entity decoding.
type CharData struct {
	Data string
}

func (*CharData) token() {}

func (t *CharData) Copy() Token {
	c := *t
	return &c
}

// Attr is a name/value pair like bar="baz" on a tag <foo bar="baz">, also
// used for element attributes on the serializer side.
type Attr struct {
	Name  string
	Value string
}
