// Package mav defines the input schema of a hardware design report: a
// recursive node tree plus a flat list of links between node ids.
//
// The document is produced by the compiler's report generator and is
// consumed read-only. Node types form a small, effectively fixed
// vocabulary that is mapped onto the closed [Kind] enumeration; unknown
// types are kept and treated as generic nodes downstream.
//
// # Decoding
//
//	doc, err := mav.ReadFile("reports/mav.json")
//	if err != nil {
//	    return err
//	}
//	for _, n := range doc.Nodes {
//	    fmt.Println(n.ID, n.Kind(), n.Name)
//	}
package mav

import (
	"bytes"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/matzehuels/mavgraph/pkg/errors"
)

// Document is the top-level report payload.
type Document struct {
	Nodes []RawNode `json:"nodes"`
	Links []RawLink `json:"links"`
}

// RawNode is a node of the report tree as found in the input.
type RawNode struct {
	ID       int          `json:"id"`
	Type     string       `json:"type"`
	Name     string       `json:"name"`
	Children []RawNode    `json:"children,omitempty"`
	Details  []Record     `json:"details,omitempty"`
	Debug    [][]Location `json:"debug,omitempty"`
	Copies   *Copies      `json:"copies,omitempty"`
}

// Kind classifies the node's type string.
func (n RawNode) Kind() Kind {
	k, _ := ParseKind(n.Type)
	return k
}

// Location is a source position attached to a node.
type Location struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
}

// Copies describes the private copies of a local-memory replicate.
type Copies struct {
	Num     int      `json:"num"`
	Details []Record `json:"details,omitempty"`
}

// RawLink connects two node ids. From is the logical producer and To the
// logical consumer. Reverse asks the renderer to draw the edge reversed.
type RawLink struct {
	From    int      `json:"from"`
	To      int      `json:"to"`
	Reverse bool     `json:"reverse,omitempty"`
	Details []Record `json:"details,omitempty"`
}

// Decode reads a report document from r.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read report")
	}
	return Parse(data)
}

// Parse decodes a report document from data.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty report")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode report")
	}
	return &doc, nil
}

// ReadFile loads and decodes the report at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "report %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Parse(data)
}

// Walk visits every node depth-first in document order. Returning false
// from fn stops the walk.
func (d *Document) Walk(fn func(n *RawNode, parent *RawNode) bool) {
	var walk func(nodes []RawNode, parent *RawNode) bool
	walk = func(nodes []RawNode, parent *RawNode) bool {
		for i := range nodes {
			n := &nodes[i]
			if !fn(n, parent) {
				return false
			}
			if !walk(n.Children, n) {
				return false
			}
		}
		return true
	}
	walk(d.Nodes, nil)
}

// Count returns the number of nodes in the tree.
func (d *Document) Count() int {
	n := 0
	d.Walk(func(*RawNode, *RawNode) bool { n++; return true })
	return n
}
