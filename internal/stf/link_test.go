package stf

import (
	"testing"

	"github.com/hpungsan/stf2json/internal/errors"
)

func TestParseLink_Classification(t *testing.T) {
	tests := []struct {
		def  string
		want LinkType
	}{
		{"Work\\", LinkStandard},
		{"Home/", LinkExclusive},
		{"Notes|", LinkUnindexed},
		{"Due@|10/05/2020 14:30", LinkDate},
	}

	for _, tt := range tests {
		link, err := ParseLink(tt.def, 1)
		if err != nil {
			t.Errorf("ParseLink(%q) error: %v", tt.def, err)
			continue
		}
		if link.Type != tt.want {
			t.Errorf("ParseLink(%q).Type = %q, want %q", tt.def, link.Type, tt.want)
		}
	}
}

func TestParseLink_EscapedMarkersAreLiteral(t *testing.T) {
	// A %-escaped trailing symbol is part of the name, not a type marker;
	// with no other marker present classification fails.
	for _, def := range []string{"Work%\\", "Home%/", "Notes%|"} {
		if _, err := ParseLink(def, 1); !errors.Is(err, errors.ErrLinkFormat) {
			t.Errorf("ParseLink(%q) = %v, want LINK_FORMAT_ERROR", def, err)
		}
	}
}

func TestParseLink_Names(t *testing.T) {
	link, err := ParseLink("Priority;Pri;Urgent;Important\\", 1)
	if err != nil {
		t.Fatalf("ParseLink() error: %v", err)
	}

	if link.Name != "Priority" {
		t.Errorf("Name = %q, want %q", link.Name, "Priority")
	}
	if link.Shortname == nil || *link.Shortname != "Pri" {
		t.Errorf("Shortname = %v, want %q", link.Shortname, "Pri")
	}
	if len(link.AlsoMatch) != 2 || link.AlsoMatch[0] != "Urgent" || link.AlsoMatch[1] != "Important" {
		t.Errorf("AlsoMatch = %v, want [Urgent Important]", link.AlsoMatch)
	}
}

func TestParseLink_NameOnly(t *testing.T) {
	link, err := ParseLink("Work\\", 1)
	if err != nil {
		t.Fatalf("ParseLink() error: %v", err)
	}
	if link.Name != "Work" {
		t.Errorf("Name = %q, want %q", link.Name, "Work")
	}
	if link.Shortname != nil {
		t.Errorf("Shortname = %q, want nil", *link.Shortname)
	}
	if link.AlsoMatch != nil {
		t.Errorf("AlsoMatch = %v, want nil", link.AlsoMatch)
	}
	if link.Value != nil {
		t.Errorf("Value = %q, want nil", *link.Value)
	}
}

func TestParseLink_EmptyNameFields(t *testing.T) {
	// Empty ;-fields are skipped, strtok-style.
	link, err := ParseLink(";;Priority;;Pri\\", 1)
	if err != nil {
		t.Fatalf("ParseLink() error: %v", err)
	}
	if link.Name != "Priority" {
		t.Errorf("Name = %q, want %q", link.Name, "Priority")
	}
	if link.Shortname == nil || *link.Shortname != "Pri" {
		t.Errorf("Shortname = %v, want %q", link.Shortname, "Pri")
	}
}

func TestParseLink_DateValue(t *testing.T) {
	link, err := ParseLink("Due@|10/05/2020 14:30", 1)
	if err != nil {
		t.Fatalf("ParseLink() error: %v", err)
	}
	if link.Type != LinkDate {
		t.Errorf("Type = %q, want date", link.Type)
	}
	if link.Name != "Due" {
		t.Errorf("Name = %q, want %q", link.Name, "Due")
	}
	if link.Value == nil || *link.Value != "2020-10-05T14:30:00Z" {
		t.Errorf("Value = %v, want %q", link.Value, "2020-10-05T14:30:00Z")
	}
}

func TestParseLink_DateValueRespectsFormat(t *testing.T) {
	link, err := ParseLink("Due@|05.10.2020 14:30", 3)
	if err != nil {
		t.Fatalf("ParseLink() error: %v", err)
	}
	if *link.Value != "2020-10-05T14:30:00Z" {
		t.Errorf("Value = %q, want %q", *link.Value, "2020-10-05T14:30:00Z")
	}
}

func TestParseLink_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  string
		code errors.ErrorCode
	}{
		{"too short", "a", errors.ErrLinkFormat},
		{"empty", "", errors.ErrLinkFormat},
		{"unclassifiable", "no marker here", errors.ErrLinkFormat},
		{"numeric unsupported", "Cost#|50", errors.ErrLinkFormat},
		{"missing name", ";\\", errors.ErrLinkFormat},
		{"bad date value", "Due@|not a date", errors.ErrDateFormat},
		{"empty date value", "Due@|", errors.ErrDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLink(tt.def, 1); !errors.Is(err, tt.code) {
				t.Errorf("ParseLink(%q) = %v, want %s", tt.def, err, tt.code)
			}
		})
	}
}

func TestUnescapeValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "10/05/2020 14:30", "10/05/2020 14:30"},
		{"escape stripped", "10%/05%/2020 14:30", "10/05/2020 14:30"},
		{"escaped percent", "a%%b", "a%b"},
		{"trailing escape dropped", "abc%", "abc"},
		{"delimiter takes tail", "label;10/05/2020 14:30", "10/05/2020 14:30"},
		{"last delimiter wins", "a;b;10/05/2020 14:30", "10/05/2020 14:30"},
		{"escaped semicolon is literal", "a%;b", "a;b"},
		{"escaped then real delimiter", "a%;b;tail", "tail"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unescapeValue(tt.in); got != tt.want {
				t.Errorf("unescapeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// The value portion is unescaped before the delimiter search, so a date can
// carry escaped semicolons of its own.
func TestParseLink_EscapedValue(t *testing.T) {
	link, err := ParseLink("Due@|old%;value;10/05/2020 14:30", 1)
	if err != nil {
		t.Fatalf("ParseLink() error: %v", err)
	}
	if *link.Value != "2020-10-05T14:30:00Z" {
		t.Errorf("Value = %q, want %q", *link.Value, "2020-10-05T14:30:00Z")
	}
}
