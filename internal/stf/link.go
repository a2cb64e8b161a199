package stf

import (
	"fmt"
	"strings"

	"github.com/hpungsan/stf2json/internal/errors"
)

// ParseLink decodes a single category-link definition from an item's {C}
// chunk. The trailing type symbol picks the link type unless
// escaped by a preceding '%'; @| and #| split the definition into a names
// portion and a value portion. Only date values are supported: numeric links
// fail, matching the original converter.
func ParseLink(def string, formatIndex int) (*CategoryLink, error) {
	// One char of name plus one char of type symbol, minimum.
	if len(def) < 2 {
		return nil, errors.NewLinkFormat("attempted to parse invalid category link", def)
	}

	link := &CategoryLink{}
	var names, value string
	hasValue := false

	last, prev := def[len(def)-1], def[len(def)-2]
	switch {
	case last == '\\' && prev != '%':
		link.Type = LinkStandard
		names = def[:len(def)-1]
	case last == '/' && prev != '%':
		link.Type = LinkExclusive
		names = def[:len(def)-1]
	case last == '|' && prev != '%' && prev != '@' && prev != '#':
		link.Type = LinkUnindexed
		names = def[:len(def)-1]
	default:
		// No escape lookbehind needed here: a pipe that is not a real
		// marker would itself be escaped.
		if i := strings.Index(def, "@|"); i >= 0 {
			link.Type = LinkDate
			names, value, hasValue = def[:i], def[i+2:], true
		} else if i := strings.Index(def, "#|"); i >= 0 {
			link.Type = LinkNumeric
			names, value, hasValue = def[:i], def[i+2:], true
		} else {
			return nil, errors.NewLinkFormat(fmt.Sprintf("could not determine type of link %s", def), def)
		}
	}

	fields := splitNames(names)
	if len(fields) == 0 {
		return nil, errors.NewLinkFormat("a category link must have a name", def)
	}
	link.Name = fields[0]
	if len(fields) > 1 {
		link.Shortname = &fields[1]
	}
	if len(fields) > 2 {
		link.AlsoMatch = fields[2:]
	}

	if hasValue {
		if link.Type != LinkDate {
			return nil, errors.NewLinkFormat("numeric link values are not supported", def)
		}
		ts, err := NormalizeTimestamp(formatIndex, unescapeValue(value))
		if err != nil {
			return nil, err
		}
		link.Value = &ts
	}

	return link, nil
}

// splitNames splits the names portion on ';' into name, shortname, and alias
// fields, skipping empty fields the way strtok does.
func splitNames(names string) []string {
	var fields []string
	for _, f := range strings.Split(names, ";") {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// unescapeValue strips %-escapes from a raw value portion and isolates the
// text after its last unescaped ';'. A '%' is consumed without being copied
// and the byte after it is copied verbatim, so an escaped ';' never acts as
// a delimiter.
func unescapeValue(s string) string {
	var clean strings.Builder
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%':
			i++
			if i < len(s) {
				clean.WriteByte(s[i])
			}
		case ';':
			clean.WriteByte(';')
			start = clean.Len()
		default:
			clean.WriteByte(s[i])
		}
	}
	return clean.String()[start:]
}
