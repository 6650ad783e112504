// Package feature turns detections and labeled CSV rows into fixed-width
// numeric vectors for training and scoring. The schema travels inside the
// model artifact so both paths featurize identically.
package feature

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind selects how a column is encoded.
type Kind string

const (
	// Numeric passes the parsed float through unchanged.
	Numeric Kind = "numeric"
	// Boolean encodes true/false (and 1/0) as 1.0/0.0.
	Boolean Kind = "boolean"
	// OneHot expands the column into one indicator per known category.
	// Unseen categories encode as all zeros.
	OneHot Kind = "one_hot"
)

// Column describes one input column and its encoding.
type Column struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	Categories []string `json:"categories,omitempty"` // OneHot only, ordered
}

// Schema is an ordered list of encoded columns.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Names returns the expanded feature names, one per output dimension.
// OneHot columns expand to "<col>=<category>".
func (s Schema) Names() []string {
	names := make([]string, 0, s.Width())
	for _, c := range s.Columns {
		switch c.Kind {
		case OneHot:
			for _, cat := range c.Categories {
				names = append(names, c.Name+"="+cat)
			}
		default:
			names = append(names, c.Name)
		}
	}
	return names
}

// Width returns the output vector dimension.
func (s Schema) Width() int {
	w := 0
	for _, c := range s.Columns {
		if c.Kind == OneHot {
			w += len(c.Categories)
			continue
		}
		w++
	}
	return w
}

// Validate checks the schema is usable: non-empty, known kinds, and
// categories present exactly on OneHot columns.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	for _, c := range s.Columns {
		switch c.Kind {
		case Numeric, Boolean:
			if len(c.Categories) != 0 {
				return fmt.Errorf("column %q: categories on %s column", c.Name, c.Kind)
			}
		case OneHot:
			if len(c.Categories) == 0 {
				return fmt.Errorf("column %q: one_hot column without categories", c.Name)
			}
		default:
			return fmt.Errorf("column %q: unknown kind %q", c.Name, c.Kind)
		}
	}
	return nil
}

// VectorizeRow encodes one string-valued row against the schema.
func (s Schema) VectorizeRow(row map[string]string) []float64 {
	vec := make([]float64, 0, s.Width())
	for _, c := range s.Columns {
		raw := strings.TrimSpace(row[c.Name])
		switch c.Kind {
		case Numeric:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				v = 0
			}
			vec = append(vec, v)
		case Boolean:
			if parseBool(raw) {
				vec = append(vec, 1)
			} else {
				vec = append(vec, 0)
			}
		case OneHot:
			for _, cat := range c.Categories {
				if raw == cat {
					vec = append(vec, 1)
				} else {
					vec = append(vec, 0)
				}
			}
		}
	}
	return vec
}

// VectorizeRows encodes many rows into a row-major matrix.
func (s Schema) VectorizeRows(rows []map[string]string) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.VectorizeRow(row)
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "t", "1", "yes", "y":
		return true
	default:
		return false
	}
}

// InferCategories collects the distinct non-empty values of a column across
// rows, sorted for a stable vocabulary.
func InferCategories(rows []map[string]string, name string) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		v := strings.TrimSpace(row[name])
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for v := range seen {
		cats = append(cats, v)
	}
	sort.Strings(cats)
	return cats
}
