// Package flatten lists the leaf values of a document one per line.
package flatten

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/path"
)

// Lines returns "name: value" for every scalar in doc, sorted. Object keys
// are joined with '.', array elements add "/<index>" with the index padded
// to the width of the array length, and null prints as nil. Empty
// containers produce no line.
func Lines(doc *models.Value) []string {
	lines := make([]string, 0)
	appendLines("", doc, &lines)
	sort.Strings(lines)
	return lines
}

func appendLines(prefix string, v *models.Value, lines *[]string) {
	switch v.Kind() {
	case models.Object:
		for _, k := range v.Keys() {
			child, _ := v.Field(k)
			name := k
			if prefix != "" {
				name = prefix + "." + k
			}
			appendLines(name, child, lines)
		}
	case models.Array:
		items := v.Items()
		width := len(strconv.Itoa(len(items)))
		for i, child := range items {
			appendLines(fmt.Sprintf("%s/%0*d", prefix, width, i), child, lines)
		}
	case models.Null:
		*lines = append(*lines, prefix+": nil")
	case models.String:
		*lines = append(*lines, prefix+": "+v.AsString())
	default:
		*lines = append(*lines, prefix+": "+v.String())
	}
}

// Paths returns the path of every scalar in doc in document order. Each
// one resolves back to its value.
func Paths(doc *models.Value) []path.Path {
	var out []path.Path
	appendPaths(path.Root, doc, &out)
	return out
}

func appendPaths(at path.Path, v *models.Value, out *[]path.Path) {
	switch v.Kind() {
	case models.Object:
		for _, k := range v.Keys() {
			child, _ := v.Field(k)
			appendPaths(at.Child(k), child, out)
		}
	case models.Array:
		for i, child := range v.Items() {
			appendPaths(at.At(i), child, out)
		}
	default:
		*out = append(*out, at)
	}
}
