// Package stf parses the structured-file export format of Lotus Agenda into a
// document tree. The format is an ad-hoc tag/value markup: tags appear as
// {name}, everything between a tag and the next one is its value, and `{`
// followed by a space is a literal brace. See the Agenda manual, Appendix B.
package stf

// Document is the result of parsing one input stream. A single stream may
// contain several concatenated STF files.
type Document struct {
	Files []*FileRecord
}

// FileRecord is one STF file: its header timestamp plus the categories and
// items defined in it, in input order.
type FileRecord struct {
	// Timestamp is the header timestamp rendered as ISO-8601
	Timestamp string `json:"timestamp"`

	// Categories are the category specifications ({C}...{.})
	Categories []*Category `json:"categories"`

	// Items are the item specifications ({I}...{!})
	Items []*Item `json:"items"`
}

// Category is a category specification. The name keeps its raw type-symbol
// suffix; decoding it is deliberately left to consumers.
type Category struct {
	Name string `json:"name"`

	// Attributes holds {r} attribute strings (e.g. "AC", "PEA")
	Attributes []string `json:"attributes"`

	// Note is the {F} category note (nullable)
	Note *string `json:"note,omitempty"`

	// Conditions are the {p} assignment conditions (nullable)
	Conditions *ConditionSet `json:"conditions,omitempty"`

	// Actions are the {a} assignment actions (nullable)
	Actions *ConditionSet `json:"actions,omitempty"`
}

// ConditionSet holds the category names routed by {+} (include) and {-}
// (exclude) within a conditions or actions block.
type ConditionSet struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// Item is an item specification: the categories it links to plus its text and
// note.
type Item struct {
	// Links are the item's category links; the JSON field is named
	// "categories" to match the original converter's output.
	Links []*CategoryLink `json:"categories"`

	// Text is the {T} item text (nullable)
	Text *string `json:"text,omitempty"`

	// Note is the {N} item note (nullable)
	Note *string `json:"note,omitempty"`
}

// LinkType identifies the category type symbol of a link (Appendix B-11).
type LinkType string

const (
	LinkStandard  LinkType = "standard"  // trailing \
	LinkExclusive LinkType = "exclusive" // trailing /
	LinkUnindexed LinkType = "unindexed" // trailing |
	LinkDate      LinkType = "date"      // @| separator
	LinkNumeric   LinkType = "numeric"   // #| separator (values unsupported)
)

// CategoryLink is one decoded item-to-category link. Value is populated if
// and only if Type is LinkDate.
type CategoryLink struct {
	Type LinkType `json:"type"`
	Name string   `json:"name"`

	// Shortname is the optional second name field (nullable)
	Shortname *string `json:"shortname,omitempty"`

	// AlsoMatch holds any remaining alias names
	AlsoMatch []string `json:"alsomatch,omitempty"`

	// Value is the normalized date value for date links (nullable)
	Value *string `json:"value,omitempty"`
}

// newFileRecord creates an empty FileRecord. Categories and items start as
// empty (not nil) slices so they always marshal as JSON arrays.
func newFileRecord(timestamp string) *FileRecord {
	return &FileRecord{
		Timestamp:  timestamp,
		Categories: []*Category{},
		Items:      []*Item{},
	}
}

// newConditionSet creates a ConditionSet with empty include/exclude lists.
func newConditionSet() *ConditionSet {
	return &ConditionSet{
		Include: []string{},
		Exclude: []string{},
	}
}
