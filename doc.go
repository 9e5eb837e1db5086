// Package xmldom implements the text boundary of an XML document object
// model: a pull-based lexer that splits raw XML text into structural tokens,
// and a serializer that walks a read-only node tree and emits the document
// back out as a string.
//
// The two halves are inverses of each other and share only the XML
// character-class predicates. The lexer performs no entity decoding and no
// tree building; it re-segments the input so that concatenating the consumed
// spans of the emitted tokens reconstructs the original text. The serializer
// reproduces the serialization algorithm of the DOM specification for the
// no-namespace case, including its optional well-formedness enforcement.
//
// Neither half keeps global state, so independent lexers and serialization
// calls may run concurrently without coordination.
package xmldom
