package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/pkg/errors"

	"github.com/crackinspine82/RattoMatt-sub001/core"
)

// NodeField is the entry field holding the assigned syllabus node.
const NodeField = "syllabus_node_id"

type Shape string

const (
	ShapeAuto     Shape = "auto"
	ShapeItems    Shape = "items"    // {"items": [...]}, e.g. generated questions
	ShapeSections Shape = "sections" // {"sections": [...]}, e.g. revision notes
)

func ParseShape(s string) (Shape, error) {
	switch shape := Shape(core.CleanString(s, true /* lower */)); shape {
	case "", ShapeAuto:
		return ShapeAuto, nil
	case ShapeItems, ShapeSections:
		return shape, nil
	default:
		return "", errors.Errorf("unknown artifact shape %q", s)
	}
}

// Entry is a read-only view of one item or section.
type Entry struct {
	Index      int
	NodeID     string
	Title      string
	LevelLabel string
}

// Artifact is a content document. Only NodeField of its entries is ever changed;
// every other byte of an entry is kept as loaded.
type Artifact struct {
	raw     []byte
	shape   Shape
	entries []map[string]interface{}
}

// Parse reads a JSON document of the given shape. With ShapeAuto the shape is taken
// from the top-level key present. With an explicit shape a missing list means no entries.
// Failures are *core.FormatError.
func Parse(data []byte, shape Shape) (*Artifact, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, core.NewFormatError("", err)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, core.NewFormatError("", errors.New("top level is not a JSON object"))
	}

	if err = checkUniqueLists(data); err != nil {
		return nil, core.NewFormatError("", err)
	}
	if shape == ShapeAuto {
		if shape, err = detectShape(obj); err != nil {
			return nil, core.NewFormatError("", err)
		}
	}

	entries, err := listEntries(doc, shape)
	if err != nil {
		return nil, core.NewFormatError("", err)
	}
	return &Artifact{raw: append([]byte(nil), data...), shape: shape, entries: entries}, nil
}

// checkUniqueLists rejects a repeated top-level list key. Readers disagree on which
// duplicate wins, so the list counted would not be the list patched.
func checkUniqueLists(data []byte) error {
	seen := make(map[string]bool, 2)
	return jsonparser.ObjectEach(data, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		k := string(key)
		if k != string(ShapeItems) && k != string(ShapeSections) {
			return nil
		}
		if seen[k] {
			return errors.Errorf("%q appears more than once", k)
		}
		seen[k] = true
		return nil
	})
}

func detectShape(obj map[string]interface{}) (Shape, error) {
	_, hasItems := obj[string(ShapeItems)]
	_, hasSections := obj[string(ShapeSections)]
	switch {
	case hasItems && hasSections:
		return "", errors.New(`both "items" and "sections" present, cannot tell the artifact shape`)
	case hasItems:
		return ShapeItems, nil
	case hasSections:
		return ShapeSections, nil
	default:
		return "", errors.New(`neither "items" nor "sections" present`)
	}
}

func listEntries(doc interface{}, shape Shape) ([]map[string]interface{}, error) {
	found := jp.C(string(shape)).Get(doc)
	if len(found) == 0 || found[0] == nil {
		return nil, nil
	}
	list, ok := found[0].([]interface{})
	if !ok {
		return nil, errors.Errorf("%q is not a list", shape)
	}
	entries := make([]map[string]interface{}, 0, len(list))
	for i, v := range list {
		entry, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s[%d] is not an object", shape, i)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (a *Artifact) Shape() Shape {
	return a.shape
}

func (a *Artifact) Len() int {
	return len(a.entries)
}

func (a *Artifact) Entries() []Entry {
	entries := make([]Entry, 0, len(a.entries))
	for i, e := range a.entries {
		entries = append(entries, Entry{
			Index:      i,
			NodeID:     stringField(e, NodeField),
			Title:      stringField(e, "title"),
			LevelLabel: stringField(e, "level_label"),
		})
	}
	return entries
}

func stringField(entry map[string]interface{}, key string) string {
	if s, ok := entry[key].(string); ok {
		return s
	}
	return ""
}

// Apply writes the mapping into the entries: a non-empty id sets NodeField,
// an empty one removes it.
func (a *Artifact) Apply(m Mapping) error {
	if len(m) != len(a.entries) {
		return errors.Errorf("mapping has %d entries, artifact has %d", len(m), len(a.entries))
	}
	if len(m) == 0 {
		return nil
	}

	patched := make([][]byte, 0, len(m))
	var patchErr error
	_, err := jsonparser.ArrayEach(a.raw, func(value []byte, _ jsonparser.ValueType, _ int, err error) {
		if patchErr != nil {
			return
		}
		if err != nil {
			patchErr = err
			return
		}
		i := len(patched)
		if i >= len(m) {
			patchErr = errors.New("artifact changed while assigning")
			return
		}
		entry, err := patchEntry(value, m[i])
		if err != nil {
			patchErr = errors.Wrapf(err, "%s[%d]", a.shape, i)
			return
		}
		patched = append(patched, entry)
	}, string(a.shape))
	if err == nil {
		err = patchErr
	}
	if err == nil && len(patched) != len(m) {
		err = errors.Errorf("patched %d %s, expected %d", len(patched), a.shape, len(m))
	}
	if err != nil {
		return core.NewFormatError("", err)
	}

	list := append([]byte{'['}, bytes.Join(patched, []byte{','})...)
	list = append(list, ']')
	raw, err := jsonparser.Set(append([]byte(nil), a.raw...), list, string(a.shape))
	if err != nil {
		return errors.Wrapf(err, "replacing %q", a.shape)
	}

	doc, err := oj.Parse(raw)
	if err != nil {
		return errors.Wrap(err, "re-reading assigned artifact")
	}
	entries, err := listEntries(doc, a.shape)
	if err != nil {
		return err
	}
	a.raw, a.entries = raw, entries
	return nil
}

func patchEntry(value []byte, nodeID string) ([]byte, error) {
	// jsonparser reuses the backing array of its input, never hand it the document itself
	entry := append([]byte(nil), value...)

	if nodeID == "" {
		if _, _, _, err := jsonparser.Get(entry, NodeField); err != nil {
			return entry, nil
		}
		return jsonparser.Delete(entry, NodeField), nil
	}

	id, err := quote(nodeID)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(bytes.Trim(bytes.TrimSpace(entry), "{}"))) == 0 {
		return []byte(fmt.Sprintf(`{%q:%s}`, NodeField, id)), nil
	}
	return jsonparser.Set(entry, id, NodeField)
}

// quote encodes s as a JSON string, leaving <, > and & readable.
func quote(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Bytes renders the artifact with two-space indentation, keeping key order.
func (a *Artifact) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	// Indent keeps trailing whitespace, which would double the final newline
	if err := json.Indent(&buf, bytes.TrimSpace(a.raw), "", "  "); err != nil {
		return nil, errors.Wrap(err, "indenting artifact")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
