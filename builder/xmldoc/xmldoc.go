// Package xmldoc reads and writes the ES-DE XML documents esdummy merges
// into. Elements the typed models do not know about are kept as Element
// values so they survive a load/save cycle.
//
// What a cycle does not keep:
//   - the position of unknown elements relative to the typed records; the
//     models write them ahead of the <game> or <system> records;
//   - the position of comments. The root and record models gather their
//     comments into a single comment written first inside the element, and
//     comments outside the root element are dropped.
//
// Content inside an Element, comments included, is kept byte for byte.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Element is an XML element kept verbatim.
type Element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   []byte     `xml:",innerxml"`
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	return Element{
		XMLName: e.XMLName,
		Attrs:   append([]xml.Attr(nil), e.Attrs...),
		Inner:   append([]byte(nil), e.Inner...),
	}
}

// CloneAll deep-copies a slice of elements.
func CloneAll(in []Element) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

// Read decodes the document at path into v. It reports false without error
// when the file does not exist, leaving v untouched.
func Read(fs afero.Fs, path string, v any) (bool, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, fmt.Errorf("xmldoc: stat %s: %w", path, err)
	}
	if !exists {
		return false, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return false, fmt.Errorf("xmldoc: read %s: %w", path, err)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("xmldoc: parse %s: %w", path, err)
	}
	return true, nil
}

// Marshal renders v as an indented document with an XML declaration.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "\t")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Write stores v at path. The document is written to a temporary file in the
// same directory and renamed over the target, so readers never see a
// partially written batch.
func Write(fs afero.Fs, path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("xmldoc: encode %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("xmldoc: create %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("xmldoc: temp file in %s: %w", dir, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(name)
		return fmt.Errorf("xmldoc: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(name)
		return fmt.Errorf("xmldoc: close %s: %w", name, err)
	}
	if err := fs.Rename(name, path); err != nil {
		fs.Remove(name)
		return fmt.Errorf("xmldoc: rename %s: %w", path, err)
	}
	return nil
}
