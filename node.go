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

// Node is one category of document tree node, the closed set the serializer
// dispatches on:
//
// * Element
// * Document
// * DocumentFragment
// * Text
// * Comment
// * CDATASection
// * ProcessingInstruction
// * DocumentType
//
// The serializer treats every node as read-only and never retains one past
// a single call.
type Node interface {
	node()
}

// Element is a named node with ordered attributes and children.
type Element struct {
	Name     string
	Attr     []Attr
	Children []Node
}

func (*Element) node() {}

// Document is the tree root. Its children appear in tree order: processing
// instructions, comments, at most one doctype, and the document element.
type Document struct {
	Children []Node
}

func (*Document) node() {}

// DocumentElement returns the document's single element child, or nil when
// absent.
func (d *Document) DocumentElement() *Element {
	for _, c := range d.Children {
		if e, ok := c.(*Element); ok {
			return e
		}
	}
	return nil
}

// DocumentFragment is a rootless sequence of nodes serialized with no
// wrapping markup.
type DocumentFragment struct {
	Children []Node
}

func (*DocumentFragment) node() {}

// Text is a character data node.
type Text struct {
	Data string
}

func (*Text) node() {}

// Comment doubles as a tree node; the struct is declared with the lexer
// tokens.
func (*Comment) node() {}

// CDATASection is a <![CDATA[ ]]> node.
type CDATASection struct {
	Data string
}

func (*CDATASection) node() {}

// ProcessingInstruction is a <? ?> node.
type ProcessingInstruction struct {
	Target string
	Data   string
}

func (*ProcessingInstruction) node() {}

// DocumentType is a <!DOCTYPE> node. PublicID and SystemID are empty when
// absent.
type DocumentType struct {
	Name     string
	PublicID string
	SystemID string
}

func (*DocumentType) node() {}
