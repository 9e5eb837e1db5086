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
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustSerialize(t *testing.T, n Node, wellFormed bool) string {
	t.Helper()
	got, err := Serialize(n, wellFormed)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestSerializeToString(t *testing.T) {
	doc := &Document{Children: []Node{
		&ProcessingInstruction{Target: "render", Data: `cache="off"`},
		&Comment{Data: " sample "},
		&DocumentType{Name: "catalog", SystemID: "catalog.dtd"},
		&Element{Name: "catalog", Attr: []Attr{{Name: "lang", Value: "en"}}, Children: []Node{
			&Text{Data: "x & y"},
			&Element{Name: "item"},
			&CDATASection{Data: "raw <data>"},
		}},
	}}

	const want = `<?render cache="off"?><!-- sample --><!DOCTYPE catalog SYSTEM "catalog.dtd">` +
		`<catalog lang="en">x &amp; y<item/><![CDATA[raw <data>]]></catalog>`

	got, err := SerializeToString(doc)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("SerializeToString:\n got  %s\n want %s", got, want)
	}
}

func TestSerializeTextEscaping(t *testing.T) {
	testCases := []struct {
		desc string
		data string
		want string
	}{
		{"ampersand", "a&b", "a&amp;b"},
		{"angle brackets", "<>&", "&lt;&gt;&amp;"},
		{"quotes untouched in text", `a "b" 'c'`, `a "b" 'c'`},
		{"plain", "plain", "plain"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := mustSerialize(t, &Text{Data: tc.data}, true); got != tc.want {
				t.Errorf("text %q serialized to %q, want %q", tc.data, got, tc.want)
			}
		})
	}
}

func TestSerializeEscapingNotIdempotent(t *testing.T) {
	// Escaping is single-pass by design: feeding escaped output back in as
	// new text content must double-escape.
	once := mustSerialize(t, &Text{Data: "a&b"}, true)
	if once != "a&amp;b" {
		t.Fatalf("first pass: %q, want %q", once, "a&amp;b")
	}
	twice := mustSerialize(t, &Text{Data: once}, true)
	if twice != "a&amp;amp;b" {
		t.Errorf("second pass: %q, want %q", twice, "a&amp;amp;b")
	}
}

func TestSerializeAttributeEscaping(t *testing.T) {
	e := &Element{Name: "a", Attr: []Attr{{Name: "v", Value: `say "hi" <&>`}}}
	const want = `<a v="say &quot;hi&quot; &lt;&amp;&gt;"/>`
	if got := mustSerialize(t, e, true); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSerializeEmptyAttributeValue(t *testing.T) {
	e := &Element{Name: "a", Attr: []Attr{{Name: "v"}}}
	if got := mustSerialize(t, e, true); got != `<a v=""/>` {
		t.Errorf(`got %s, want <a v=""/>`, got)
	}
}

func TestSerializeSelfClosing(t *testing.T) {
	testCases := []struct {
		desc string
		node *Element
		want string
	}{
		{"no children", &Element{Name: "a"}, "<a/>"},
		{"empty text child still forces a close tag", &Element{Name: "a", Children: []Node{&Text{}}}, "<a></a>"},
		{"nested childless", &Element{Name: "a", Children: []Node{&Element{Name: "b"}}}, "<a><b/></a>"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := mustSerialize(t, tc.node, true); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSerializeDocType(t *testing.T) {
	testCases := []struct {
		desc string
		node *DocumentType
		want string
	}{
		{"bare", &DocumentType{Name: "html"}, "<!DOCTYPE html>"},
		{"public and system", &DocumentType{Name: "r", PublicID: "pub", SystemID: "sys"}, `<!DOCTYPE r PUBLIC "pub" "sys">`},
		{"public only omits system entirely", &DocumentType{Name: "r", PublicID: "pub"}, `<!DOCTYPE r PUBLIC "pub">`},
		{"system only", &DocumentType{Name: "r", SystemID: "sys"}, `<!DOCTYPE r SYSTEM "sys">`},
		{"system with single quote", &DocumentType{Name: "r", SystemID: "o'clock.dtd"}, `<!DOCTYPE r SYSTEM "o'clock.dtd">`},
		{"system with double quote", &DocumentType{Name: "r", SystemID: `a"b.dtd`}, `<!DOCTYPE r SYSTEM 'a"b.dtd'>`},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := mustSerialize(t, tc.node, true); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSerializeProcInst(t *testing.T) {
	got := mustSerialize(t, &ProcessingInstruction{Target: "pi", Data: "data"}, true)
	if got != "<?pi data?>" {
		t.Errorf("got %s, want <?pi data?>", got)
	}
}

func TestWellFormednessGating(t *testing.T) {
	testCases := []struct {
		desc    string
		node    Node
		lenient string
		wantErr error
	}{
		{
			"element name with colon",
			&Element{Name: "a:b"},
			"<a:b/>",
			errInvalidName,
		},
		{
			"element name outside Name grammar",
			&Element{Name: "1bad"},
			"<1bad/>",
			errInvalidName,
		},
		{
			"duplicate attribute local name",
			&Element{Name: "a", Attr: []Attr{{Name: "x", Value: "1"}, {Name: "x", Value: "2"}}},
			`<a x="1" x="2"/>`,
			errDuplicateAttr,
		},
		{
			"attribute name with colon",
			&Element{Name: "a", Attr: []Attr{{Name: "b:c", Value: "1"}}},
			`<a b:c="1"/>`,
			errInvalidName,
		},
		{
			"attribute value with illegal char",
			&Element{Name: "a", Attr: []Attr{{Name: "b", Value: "\x00"}}},
			"<a b=\"\x00\"/>",
			errInvalidChar,
		},
		{
			"text with illegal char",
			&Text{Data: "a\x0bb"},
			"a\x0bb",
			errInvalidChar,
		},
		{
			"comment with double hyphen",
			&Comment{Data: "a--b"},
			"<!--a--b-->",
			errCommentData,
		},
		{
			"comment ending in hyphen",
			&Comment{Data: "a-"},
			"<!--a--->",
			errCommentData,
		},
		{
			"comment with illegal char",
			&Comment{Data: "a\x00"},
			"<!--a\x00-->",
			errInvalidChar,
		},
		{
			"pi target xml case-insensitive",
			&ProcessingInstruction{Target: "XmL", Data: "d"},
			"<?XmL d?>",
			errPITarget,
		},
		{
			"pi target with colon",
			&ProcessingInstruction{Target: "a:b", Data: "d"},
			"<?a:b d?>",
			errPITarget,
		},
		{
			"pi data with terminator",
			&ProcessingInstruction{Target: "pi", Data: "a?>b"},
			"<?pi a?>b?>",
			errPIData,
		},
		{
			"pi data with illegal char",
			&ProcessingInstruction{Target: "pi", Data: "\x01"},
			"<?pi \x01?>",
			errInvalidChar,
		},
		{
			"cdata with terminator",
			&CDATASection{Data: "a]]>b"},
			"<![CDATA[a]]>b]]>",
			errCDATAData,
		},
		{
			"public id outside PubidChar",
			&DocumentType{Name: "r", PublicID: `a"b`, SystemID: "s"},
			`<!DOCTYPE r PUBLIC "a"b" "s">`,
			errPubidChar,
		},
		{
			"system id with both quote kinds",
			&DocumentType{Name: "r", SystemID: `a"b'c`},
			`<!DOCTYPE r SYSTEM 'a"b'c'>`,
			errSystemID,
		},
		{
			"system id with illegal char",
			&DocumentType{Name: "r", SystemID: "a\x00"},
			"<!DOCTYPE r SYSTEM \"a\x00\">",
			errSystemID,
		},
		{
			"document without document element",
			&Document{Children: []Node{&Comment{Data: " c "}}},
			"<!-- c -->",
			errNoDocumentElement,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			// Lenient mode must succeed and keep the offending data raw
			// apart from the entity escapes.
			got, err := Serialize(tc.node, false)
			if err != nil {
				t.Fatalf("lenient serialize: %v", err)
			}
			if got != tc.lenient {
				t.Errorf("lenient output %q, want %q", got, tc.lenient)
			}

			// Strict mode flags the specific constraint internally.
			var sb strings.Builder
			if err := serializeNode(&sb, tc.node, true); !errors.Is(err, tc.wantErr) {
				t.Errorf("serializeNode err = %v, want %v", err, tc.wantErr)
			}

			// And the public boundary collapses it to the one error kind.
			if _, err := Serialize(tc.node, true); !errors.Is(err, ErrInvalidState) {
				t.Errorf("Serialize err = %v, want ErrInvalidState", err)
			}
		})
	}
}

func TestSerializeUnknownNode(t *testing.T) {
	if _, err := SerializeToString(nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SerializeToString(nil) err = %v, want ErrInvalidState", err)
	}
}

func TestDocumentElement(t *testing.T) {
	doc := &Document{Children: []Node{
		&Comment{Data: "c"},
		&Element{Name: "root"},
	}}
	if e := doc.DocumentElement(); e == nil || e.Name != "root" {
		t.Errorf("DocumentElement() = %v, want root element", e)
	}
	empty := &Document{Children: []Node{&Comment{Data: "c"}}}
	if e := empty.DocumentElement(); e != nil {
		t.Errorf("DocumentElement() = %v, want nil", e)
	}
}

// buildTree reconstructs a node tree from a token stream. Tree building is
// outside the lexer's own scope; this minimal builder exists to exercise
// the lex -> build -> serialize -> lex round trip.
func buildTree(t *testing.T, input string) *Document {
	t.Helper()
	doc := &Document{}
	var open []*Element
	appendNode := func(n Node) {
		if len(open) == 0 {
			doc.Children = append(doc.Children, n)
			return
		}
		parent := open[len(open)-1]
		parent.Children = append(parent.Children, n)
	}

	l := NewLexer(input)
	for {
		tok, err := l.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatal(err)
		}
		switch tok := tok.(type) {
		case *StartTag:
			e := &Element{Name: tok.Name, Attr: tok.Attr}
			appendNode(e)
			if !tok.SelfClosing {
				open = append(open, e)
			}
		case *CloseTag:
			if len(open) == 0 {
				t.Fatalf("unbalanced close tag </%s>", tok.Name)
			}
			open = open[:len(open)-1]
		case *CharData:
			appendNode(&Text{Data: tok.Data})
		case *Comment:
			appendNode(tok)
		case *CDATA:
			appendNode(&CDATASection{Data: tok.Data})
		case *ProcInst:
			appendNode(&ProcessingInstruction{Target: tok.Target, Data: tok.Data})
		case *DocType:
			appendNode(&DocumentType{Name: tok.Name, PublicID: tok.PublicID, SystemID: tok.SystemID})
		case *Declaration:
			// The declaration has no node category; dropped by the builder.
		}
	}
	return doc
}

func TestRoundTrip(t *testing.T) {
	const input = `<!DOCTYPE catalog SYSTEM "catalog.dtd">` +
		`<catalog lang="en"><item id="1"/>plain text<!--c--><![CDATA[d]]><?pi p?></catalog>`

	doc := buildTree(t, input)
	out, err := SerializeToString(doc)
	if err != nil {
		t.Fatal(err)
	}
	if out != input {
		t.Errorf("serialized document:\n got  %s\n want %s", out, input)
	}

	want := lexAll(t, input)
	got := lexAll(t, out)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error("re-lexed token diff (-want +got)\n", diff)
	}
}
