package clientconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// LabelEntry maps one canonical category onto the label shown in the mailbox.
type LabelEntry struct {
	Category string
	Label    string
}

// LabelMap is an insertion-ordered category to label mapping.
//
// Order matters: when two categories point at the same label the first one
// wins during normalization, so the map is kept as a slice and encoded as a
// JSON object with keys in slice order.
type LabelMap []LabelEntry

// Get returns the label for a category.
func (m LabelMap) Get(category string) (string, bool) {
	for _, e := range m {
		if e.Category == category {
			return e.Label, true
		}
	}
	return "", false
}

// Set replaces the label of an existing category in place or appends a new one.
func (m LabelMap) Set(category, label string) LabelMap {
	for i := range m {
		if m[i].Category == category {
			m[i].Label = label
			return m
		}
	}
	return append(m, LabelEntry{Category: category, Label: label})
}

// Delete removes a category, keeping the order of the rest.
func (m LabelMap) Delete(category string) LabelMap {
	out := m[:0]
	for _, e := range m {
		if e.Category != category {
			out = append(out, e)
		}
	}
	return out
}

func (m LabelMap) Categories() []string {
	out := make([]string, 0, len(m))
	for _, e := range m {
		out = append(out, e.Category)
	}
	return out
}

func (m LabelMap) Clone() LabelMap {
	out := make(LabelMap, len(m))
	copy(out, m)
	return out
}

func (m LabelMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Category)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *LabelMap) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*m = LabelMap{}
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("label_map must be an object")
	}
	out := LabelMap{}
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = fmt.Errorf("label_map.%s must be a string", key.String())
			return false
		}
		out = out.Set(key.String(), value.String())
		return true
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// LabelMapPatch is an ordered set of per-category edits. A null label deletes the category.
type LabelMapPatch []LabelPatchEntry

// LabelPatchEntry sets or, when Label is null, removes one category.
type LabelPatchEntry struct {
	Category string
	Label    Field[string]
}

func (p *LabelMapPatch) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return fmt.Errorf("label_map must be an object")
	}
	out := LabelMapPatch{}
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		entry := LabelPatchEntry{Category: key.String()}
		switch value.Type {
		case gjson.Null:
			entry.Label = Null[string]()
		case gjson.String:
			entry.Label = Set(value.String())
		default:
			err = fmt.Errorf("label_map.%s must be a string or null", key.String())
			return false
		}
		out = append(out, entry)
		return true
	})
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// Apply merges the edits into base key by key and returns a new map.
func (p LabelMapPatch) Apply(base LabelMap) LabelMap {
	out := base.Clone()
	for _, e := range p {
		if e.Label.Null {
			out = out.Delete(e.Category)
			continue
		}
		out = out.Set(e.Category, e.Label.Value)
	}
	return out
}
