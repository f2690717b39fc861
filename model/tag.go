package model

import (
	"strings"
)

// TagKey is the struct tag key read by the resolver.
const TagKey = "jorm"

// Tag represents parsed jorm tags
type Tag struct {
	Column     string
	Table      string
	PrimaryKey bool
	Factory    bool
	Ignore     bool
}

// ParseTag parses the "jorm" tag string.
// Options are separated by spaces, semicolons or commas; values follow a colon,
// e.g. `jorm:"pk column:user_id"`.
func ParseTag(tagStr string) *Tag {
	tag := &Tag{}
	tagStr = strings.TrimSpace(tagStr)
	if tagStr == "" {
		return tag
	}
	if tagStr == "-" {
		tag.Ignore = true
		return tag
	}

	parts := strings.FieldsFunc(tagStr, func(r rune) bool {
		return r == ' ' || r == ';' || r == ',' || r == '\t'
	})

	for _, part := range parts {
		kv := strings.SplitN(part, ":", 2)
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		var val string
		if len(kv) > 1 {
			val = strings.TrimSpace(kv[1])
		}

		switch key {
		case "column":
			tag.Column = val
		case "table":
			tag.Table = val
		case "pk", "id":
			tag.PrimaryKey = true
		case "factory":
			tag.Factory = true
		case "-":
			tag.Ignore = true
		}
	}
	return tag
}
