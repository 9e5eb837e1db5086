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
	"strings"
)

// ErrInvalidState is the single error kind surfaced by the serialization
// entry points. The internal algorithm distinguishes which constraint was
// violated, but the cause is not propagated past the public boundary.
var ErrInvalidState = errors.New("invalid state")

var (
	errUnknownNode       = errors.New("unknown node category")
	errInvalidName       = errors.New("name is not a valid XML name")
	errDuplicateAttr     = errors.New("duplicate attribute name")
	errInvalidChar       = errors.New("data contains an illegal XML character")
	errCommentData       = errors.New("comment data contains '--' or ends in '-'")
	errPITarget          = errors.New("processing instruction target is reserved or prefixed")
	errPIData            = errors.New("processing instruction data contains '?>'")
	errCDATAData         = errors.New("CDATA section data contains ']]>'")
	errPubidChar         = errors.New("public identifier contains a character outside PubidChar")
	errSystemID          = errors.New("system identifier contains an illegal character or both quote kinds")
	errNoDocumentElement = errors.New("document has no document element")
)

// Escape sets for text and attribute values. Attribute values additionally
// escape the double quote that wraps them. '>' is escaped beyond what the
// XML grammar strictly requires, matching common implementation practice.
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// SerializeToString renders the tree rooted at root as an XML string with
// well-formedness checking disabled.
//
// Failure is not expected for any tree honoring the node contract; an
// unknown or nil node still surfaces ErrInvalidState.
func SerializeToString(root Node) (string, error) {
	return Serialize(root, false)
}

// Serialize renders the tree rooted at root, enforcing every
// well-formedness constraint of the serialization algorithm when
// requireWellFormed is set. Any violation surfaces as ErrInvalidState.
func Serialize(root Node, requireWellFormed bool) (string, error) {
	var sb strings.Builder
	if err := serializeNode(&sb, root, requireWellFormed); err != nil {
		return "", fmt.Errorf("serialize: %w", ErrInvalidState)
	}
	return sb.String(), nil
}

// serializeNode dispatches on the node category, appending the node's
// serialization to sb. The returned errors carry the violated constraint
// for the benefit of in-package callers; the exported entry points collapse
// them.
func serializeNode(sb *strings.Builder, n Node, wellFormed bool) error {
	switch n := n.(type) {
	case *Element:
		return serializeElement(sb, n, wellFormed)
	case *Document:
		return serializeDocument(sb, n, wellFormed)
	case *DocumentFragment:
		return serializeChildren(sb, n.Children, wellFormed)
	case *Text:
		return serializeText(sb, n, wellFormed)
	case *Comment:
		return serializeComment(sb, n, wellFormed)
	case *CDATASection:
		return serializeCDATA(sb, n, wellFormed)
	case *ProcessingInstruction:
		return serializePI(sb, n, wellFormed)
	case *DocumentType:
		return serializeDocType(sb, n, wellFormed)
	}
	return errUnknownNode
}

func serializeChildren(sb *strings.Builder, children []Node, wellFormed bool) error {
	for _, c := range children {
		if err := serializeNode(sb, c, wellFormed); err != nil {
			return err
		}
	}
	return nil
}

// serializeElement emits <name .../> for childless elements regardless of
// the source syntax, and <name ...>children</name> otherwise.
func serializeElement(sb *strings.Builder, e *Element, wellFormed bool) error {
	if wellFormed {
		if strings.Contains(e.Name, ":") || !isName(e.Name) {
			return errInvalidName
		}
	}
	sb.WriteByte('<')
	sb.WriteString(e.Name)
	if err := serializeAttrs(sb, e.Attr, wellFormed); err != nil {
		return err
	}
	if len(e.Children) == 0 {
		sb.WriteString("/>")
		return nil
	}
	sb.WriteByte('>')
	if err := serializeChildren(sb, e.Children, wellFormed); err != nil {
		return err
	}
	sb.WriteString("</")
	sb.WriteString(e.Name)
	sb.WriteByte('>')
	return nil
}

// serializeAttrs emits the attributes in their defined order. The duplicate
// check compares local names only; this is the no-namespace variant of the
// algorithm, so the expanded name collapses to the local name.
func serializeAttrs(sb *strings.Builder, attrs []Attr, wellFormed bool) error {
	for i, attr := range attrs {
		if wellFormed {
			for _, prev := range attrs[:i] {
				if prev.Name == attr.Name {
					return errDuplicateAttr
				}
			}
			if strings.Contains(attr.Name, ":") || !isName(attr.Name) {
				return errInvalidName
			}
			if !legalChars(attr.Value) {
				return errInvalidChar
			}
		}
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		sb.WriteString(`="`)
		attrEscaper.WriteString(sb, attr.Value)
		sb.WriteByte('"')
	}
	return nil
}

func serializeText(sb *strings.Builder, t *Text, wellFormed bool) error {
	if wellFormed && !legalChars(t.Data) {
		return errInvalidChar
	}
	textEscaper.WriteString(sb, t.Data)
	return nil
}

func serializeComment(sb *strings.Builder, c *Comment, wellFormed bool) error {
	if wellFormed {
		if !legalChars(c.Data) {
			return errInvalidChar
		}
		if strings.Contains(c.Data, "--") || strings.HasSuffix(c.Data, "-") {
			return errCommentData
		}
	}
	sb.WriteString("<!--")
	sb.WriteString(c.Data)
	sb.WriteString("-->")
	return nil
}

func serializeCDATA(sb *strings.Builder, c *CDATASection, wellFormed bool) error {
	if wellFormed && strings.Contains(c.Data, "]]>") {
		return errCDATAData
	}
	sb.WriteString("<![CDATA[")
	sb.WriteString(c.Data)
	sb.WriteString("]]>")
	return nil
}

func serializePI(sb *strings.Builder, pi *ProcessingInstruction, wellFormed bool) error {
	if wellFormed {
		if strings.Contains(pi.Target, ":") || strings.EqualFold(pi.Target, "xml") {
			return errPITarget
		}
		if !legalChars(pi.Data) {
			return errInvalidChar
		}
		if strings.Contains(pi.Data, "?>") {
			return errPIData
		}
	}
	sb.WriteString("<?")
	sb.WriteString(pi.Target)
	sb.WriteByte(' ')
	sb.WriteString(pi.Data)
	sb.WriteString("?>")
	return nil
}

// serializeDocType chooses the external identifier form by which of
// PublicID/SystemID are present: both emit PUBLIC "p" "s", PublicID alone
// emits PUBLIC "p", SystemID alone emits SYSTEM "s".
func serializeDocType(sb *strings.Builder, dt *DocumentType, wellFormed bool) error {
	if wellFormed {
		for _, r := range dt.PublicID {
			if !isPubidChar(r) {
				return errPubidChar
			}
		}
		if !legalChars(dt.SystemID) ||
			(strings.Contains(dt.SystemID, `"`) && strings.Contains(dt.SystemID, "'")) {
			return errSystemID
		}
	}
	sb.WriteString("<!DOCTYPE ")
	sb.WriteString(dt.Name)
	switch {
	case dt.PublicID != "" && dt.SystemID != "":
		sb.WriteString(` PUBLIC "`)
		sb.WriteString(dt.PublicID)
		sb.WriteString(`" `)
		writeQuoted(sb, dt.SystemID)
	case dt.PublicID != "":
		sb.WriteString(` PUBLIC "`)
		sb.WriteString(dt.PublicID)
		sb.WriteByte('"')
	case dt.SystemID != "":
		sb.WriteString(" SYSTEM ")
		writeQuoted(sb, dt.SystemID)
	}
	sb.WriteByte('>')
	return nil
}

// writeQuoted wraps a system identifier in double quotes, falling back to
// single quotes when the identifier itself contains a double quote.
func writeQuoted(sb *strings.Builder, s string) {
	quote := byte('"')
	if strings.Contains(s, `"`) {
		quote = '\''
	}
	sb.WriteByte(quote)
	sb.WriteString(s)
	sb.WriteByte(quote)
}

// serializeDocument concatenates the serialization of every child with no
// wrapping markup. A well-formed document must have a document element.
func serializeDocument(sb *strings.Builder, d *Document, wellFormed bool) error {
	if wellFormed && d.DocumentElement() == nil {
		return errNoDocumentElement
	}
	return serializeChildren(sb, d.Children, wellFormed)
}
