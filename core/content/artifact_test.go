package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackinspine82/RattoMatt-sub001/core"
)

const questionsDoc = `{
  "meta": {
    "generator": "batch",
    "version": 3
  },
  "items": [
    {
      "zeta": true,
      "prompt": "Ω and π?",
      "marks": 1.50,
      "options": [
        {
          "text": "a"
        },
        {
          "text": "b"
        }
      ]
    },
    {
      "prompt": "second",
      "syllabus_node_id": "stale"
    },
    {
      "prompt": "third",
      "tags": []
    }
  ]
}
`

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		shape     Shape
		wantShape Shape
		wantLen   int
		wantErr   bool
	}{
		{name: "auto items", doc: `{"items":[{"a":1},{"b":2}]}`, shape: ShapeAuto, wantShape: ShapeItems, wantLen: 2},
		{name: "auto sections", doc: `{"sections":[{"title":"t"}]}`, shape: ShapeAuto, wantShape: ShapeSections, wantLen: 1},
		{name: "explicit shape missing list", doc: `{"other":1}`, shape: ShapeSections, wantShape: ShapeSections, wantLen: 0},
		{name: "explicit shape null list", doc: `{"items":null}`, shape: ShapeItems, wantShape: ShapeItems, wantLen: 0},
		{name: "explicit shape ignores the other list", doc: `{"items":[{}],"sections":[]}`, shape: ShapeSections, wantShape: ShapeSections, wantLen: 0},
		{name: "empty list", doc: `{"items":[]}`, shape: ShapeAuto, wantShape: ShapeItems, wantLen: 0},
		{name: "not json", doc: `{"items": [`, shape: ShapeAuto, wantErr: true},
		{name: "top level array", doc: `[{"a":1}]`, shape: ShapeItems, wantErr: true},
		{name: "list is an object", doc: `{"items":{"a":1}}`, shape: ShapeAuto, wantErr: true},
		{name: "entry is not an object", doc: `{"items":[{"a":1},"b"]}`, shape: ShapeAuto, wantErr: true},
		{name: "auto without list", doc: `{"questions":[]}`, shape: ShapeAuto, wantErr: true},
		{name: "auto with both lists", doc: `{"items":[],"sections":[]}`, shape: ShapeAuto, wantErr: true},
		{name: "repeated items key", doc: `{"items":[{"a":1}],"items":[{"a":1},{"b":2}]}`, shape: ShapeItems, wantErr: true},
		{name: "repeated sections key", doc: `{"sections":[],"other":1,"sections":[{}]}`, shape: ShapeAuto, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse([]byte(tt.doc), tt.shape)
			if tt.wantErr {
				assert.True(t, core.IsFormat(err), "Parse() error = %v, want a FormatError", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantShape, a.Shape())
			assert.Equal(t, tt.wantLen, a.Len())
		})
	}
}

func TestArtifact_Apply(t *testing.T) {
	a, err := Parse([]byte(questionsDoc), ShapeAuto)
	require.NoError(t, err)
	require.Equal(t, 3, a.Len())

	require.NoError(t, a.Apply(Mapping{"n1", "n2", "n1"}))
	for i, want := range []string{"n1", "n2", "n1"} {
		assert.Equal(t, want, a.Entries()[i].NodeID)
	}

	out, err := a.Bytes()
	require.NoError(t, err)

	var got, orig map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &got))
	require.NoError(t, json.Unmarshal([]byte(questionsDoc), &orig))

	// everything but the assignment field is untouched
	gotItems := got["items"].([]interface{})
	origItems := orig["items"].([]interface{})
	for i := range gotItems {
		g := gotItems[i].(map[string]interface{})
		o := origItems[i].(map[string]interface{})
		delete(g, NodeField)
		delete(o, NodeField)
		assert.Equal(t, o, g)
	}
	assert.Equal(t, orig["meta"], got["meta"])

	// raw values and key order survive
	s := string(out)
	assert.Contains(t, s, `"marks": 1.50`)
	assert.Contains(t, s, `"prompt": "Ω and π?"`)
	assert.Less(t, strings.Index(s, `"zeta"`), strings.Index(s, `"prompt": "Ω`))
	assert.Less(t, strings.Index(s, `"meta"`), strings.Index(s, `"items"`))
	assert.NotContains(t, s, "stale")
}

func TestArtifact_Apply_RemovesStaleAssignments(t *testing.T) {
	doc := `{"sections":[
		{"title":"A","syllabus_node_id":"old1"},
		{"title":"B","syllabus_node_id":"old2","level_label":"Topic"},
		{"syllabus_node_id":"old3","title":"C"}
	]}`
	a, err := Parse([]byte(doc), ShapeSections)
	require.NoError(t, err)

	require.NoError(t, a.Apply(Mapping{"n1", "", ""}))

	entries := a.Entries()
	assert.Equal(t, "n1", entries[0].NodeID)
	assert.Equal(t, "", entries[1].NodeID)
	assert.Equal(t, "", entries[2].NodeID)
	assert.Equal(t, []string{"A", "B", "C"}, []string{entries[0].Title, entries[1].Title, entries[2].Title})
	assert.Equal(t, "Topic", entries[1].LevelLabel)

	out, err := a.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "old")
}

func TestArtifact_Apply_EmptyEntry(t *testing.T) {
	a, err := Parse([]byte(`{"items":[{}, { }]}`), ShapeItems)
	require.NoError(t, err)

	require.NoError(t, a.Apply(Mapping{"n1", "n2"}))
	assert.Equal(t, "n1", a.Entries()[0].NodeID)
	assert.Equal(t, "n2", a.Entries()[1].NodeID)
}

func TestArtifact_Apply_LengthMismatch(t *testing.T) {
	a, err := Parse([]byte(`{"items":[{"a":1}]}`), ShapeItems)
	require.NoError(t, err)
	assert.Error(t, a.Apply(Mapping{"n1", "n2"}))
}

func TestArtifact_Apply_EntryCountDrift(t *testing.T) {
	// entries counted from a list other than the one being patched
	a := &Artifact{
		raw:     []byte(`{"items":[{"a":1}]}`),
		shape:   ShapeItems,
		entries: []map[string]interface{}{{"a": 1}, {"b": 2}},
	}
	err := a.Apply(Mapping{"n1", "n1"})
	assert.True(t, core.IsFormat(err), "Apply() error = %v, want a FormatError", err)
	assert.Equal(t, `{"items":[{"a":1}]}`, string(a.raw))
}

func TestArtifact_Apply_KeepsIDsReadable(t *testing.T) {
	a, err := Parse([]byte(`{"items":[{"q":1}]}`), ShapeItems)
	require.NoError(t, err)
	require.NoError(t, a.Apply(Mapping{"n<2>&co"}))
	assert.Equal(t, "n<2>&co", a.Entries()[0].NodeID)

	out, err := a.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"syllabus_node_id": "n<2>&co"`)
}

func TestArtifact_Apply_DoesNotTouchInput(t *testing.T) {
	data := []byte(`{"items":[{"a":1},{"b":2}]}`)
	orig := string(data)

	a, err := Parse(data, ShapeItems)
	require.NoError(t, err)
	require.NoError(t, a.Apply(Mapping{"n1", "n2"}))
	assert.Equal(t, orig, string(data))
}

func TestArtifact_Bytes_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		mapping Mapping
	}{
		{
			name: "unchanged assignments",
			doc: `{
  "items": [
    {
      "prompt": "one",
      "syllabus_node_id": "n1"
    },
    {
      "syllabus_node_id": "n2",
      "prompt": "two"
    }
  ]
}
`,
			mapping: Mapping{"n1", "n2"},
		},
		{
			name: "unassigned sections",
			doc: `{
  "sections": [
    {
      "title": "Intro",
      "level_label": "Chapter",
      "content_md": "# Intro\n\n* one"
    }
  ],
  "source": null
}
`,
			mapping: Mapping{""},
		},
		{
			name:    "no entries",
			doc:     "{\n  \"items\": [],\n  \"x\": {}\n}\n",
			mapping: Mapping{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse([]byte(tt.doc), ShapeAuto)
			require.NoError(t, err)
			require.NoError(t, a.Apply(tt.mapping))

			out, err := a.Bytes()
			require.NoError(t, err)
			assert.Equal(t, tt.doc, string(out))
		})
	}
}
