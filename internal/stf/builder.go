package stf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hpungsan/stf2json/internal/errors"
)

// builder states. Exactly one category, item, or condition set is mutable at
// any instant; the state itself scopes the mutation.
type state int

const (
	stateNone state = iota
	stateRoot
	stateCategory
	stateCategoryConditions
	stateCategoryActions
	stateItem
)

func (s state) String() string {
	switch s {
	case stateNone:
		return "none"
	case stateRoot:
		return "root"
	case stateCategory:
		return "category"
	case stateCategoryConditions:
		return "category-conditions"
	case stateCategoryActions:
		return "category-actions"
	case stateItem:
		return "item"
	}
	return "unknown"
}

// Builder consumes a chunk stream and constructs the document tree. Any
// unexpected tag, lexer failure, or sub-parser failure aborts the run; no
// partial document is returned.
type Builder struct {
	src  *Reader
	diag io.Writer

	st         state
	doc        *Document
	file       *FileRecord
	category   *Category
	item       *Item
	conditions *ConditionSet

	// dateFormat is file-scoped: every {STF} header resets it to 1
	// until a {d} tag changes it.
	dateFormat int
}

// NewBuilder creates a Builder over src. Comment chunks are reported to
// diag; pass nil to discard them.
func NewBuilder(src *Reader, diag io.Writer) *Builder {
	if diag == nil {
		diag = io.Discard
	}
	return &Builder{
		src:  src,
		diag: diag,
		st:   stateNone,
		doc:  &Document{Files: []*FileRecord{}},
	}
}

// Run consumes the whole stream and returns the finished document.
func (b *Builder) Run() (*Document, error) {
	for {
		ch, err := b.src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		// Comment chunks go to the diagnostic sink regardless of state.
		if ch.Tag == CommentTag {
			if ch.Value != nil {
				fmt.Fprintf(b.diag, "Comment: %s\n", *ch.Value)
			}
			continue
		}

		if err := b.dispatch(ch); err != nil {
			return nil, err
		}
	}
	return b.doc, nil
}

// dispatch runs a chunk through the state machine, replaying it when a
// transition requests it ({STF} at a file boundary re-dispatches in NONE).
func (b *Builder) dispatch(ch *Chunk) error {
	for {
		replay, err := b.step(ch)
		if err != nil {
			return err
		}
		if !replay {
			return nil
		}
	}
}

func (b *Builder) step(ch *Chunk) (replay bool, err error) {
	switch b.st {
	case stateNone:
		return false, b.stepNone(ch)
	case stateRoot:
		return b.stepRoot(ch)
	case stateCategory:
		return false, b.stepCategory(ch)
	case stateCategoryConditions, stateCategoryActions:
		return false, b.stepConditionSet(ch)
	case stateItem:
		return false, b.stepItem(ch)
	}
	return false, errors.NewGrammarMsg(fmt.Sprintf("unexpected state transition on tag %q", ch.Tag))
}

func (b *Builder) stepNone(ch *Chunk) error {
	if ch.Tag != "STF" {
		return errors.NewGrammar(b.st.String(), ch.Tag)
	}
	ts, err := NormalizeHeader(ch.Val())
	if err != nil {
		return err
	}
	b.file = newFileRecord(ts)
	b.doc.Files = append(b.doc.Files, b.file)
	b.dateFormat = 1
	b.st = stateRoot
	return nil
}

func (b *Builder) stepRoot(ch *Chunk) (bool, error) {
	switch ch.Tag {
	case "d":
		n, err := strconv.Atoi(strings.TrimSpace(ch.Val()))
		if err != nil || !ValidFormat(n) {
			return false, errors.NewConfig("invalid date format requested")
		}
		b.dateFormat = n
		return false, nil

	case "C":
		b.category = &Category{Name: ch.Val(), Attributes: []string{}}
		b.file.Categories = append(b.file.Categories, b.category)
		b.st = stateCategory
		return false, nil

	case "I":
		b.item = &Item{Links: []*CategoryLink{}}
		b.file.Items = append(b.file.Items, b.item)
		b.st = stateItem
		return false, nil

	case "STF":
		// End of current file, a new one begins.
		b.file = nil
		b.st = stateNone
		return true, nil
	}
	return false, errors.NewGrammar(b.st.String(), ch.Tag)
}

func (b *Builder) stepCategory(ch *Chunk) error {
	switch ch.Tag {
	case "r":
		b.category.Attributes = append(b.category.Attributes, ch.Val())
		// The attribute must be followed immediately by a bare {;}.
		next, err := b.lookahead("failed to find end-attribute tag")
		if err != nil {
			return err
		}
		if next.Tag != ";" || next.Value != nil {
			return errors.NewGrammarMsg("invalid end-attribute tag")
		}
		return nil

	case ".":
		b.category = nil
		b.st = stateRoot
		return nil

	case "F":
		b.category.Note = ch.Value
		return nil

	case "p", "a":
		cs := newConditionSet()
		b.conditions = cs
		if ch.Tag == "a" {
			b.category.Actions = cs
			b.st = stateCategoryActions
		} else {
			b.category.Conditions = cs
			b.st = stateCategoryConditions
		}
		return nil
	}
	return errors.NewGrammar(b.st.String(), ch.Tag)
}

func (b *Builder) stepConditionSet(ch *Chunk) error {
	switch ch.Tag {
	case "C":
		// The polarity arrives as the next chunk: {+} or {-}.
		next, err := b.lookahead("failed to find end-category tag")
		if err != nil {
			return err
		}
		switch next.Tag {
		case "+":
			b.conditions.Include = append(b.conditions.Include, ch.Val())
		case "-":
			b.conditions.Exclude = append(b.conditions.Exclude, ch.Val())
		default:
			return errors.NewGrammarMsg("failed to find assignment type")
		}
		return nil

	case ";":
		b.conditions = nil
		b.st = stateCategory
		return nil
	}
	return errors.NewGrammar(b.st.String(), ch.Tag)
}

func (b *Builder) stepItem(ch *Chunk) error {
	switch ch.Tag {
	case "T":
		b.item.Text = ch.Value
		return nil

	case "N":
		b.item.Note = ch.Value
		return nil

	case "C":
		link, err := ParseLink(ch.Val(), b.dateFormat)
		if err != nil {
			return err
		}
		b.item.Links = append(b.item.Links, link)
		return nil

	case ".":
		// Agenda emits these inside items; they carry nothing.
		return nil

	case "!":
		b.item = nil
		b.st = stateRoot
		return nil
	}
	return errors.NewGrammar(b.st.String(), ch.Tag)
}

// lookahead fetches one extra chunk to disambiguate a sub-grammar. The chunk
// is consumed unconditionally; a missing one is a grammar error with the
// given message.
func (b *Builder) lookahead(missing string) (*Chunk, error) {
	next, err := b.src.Next()
	if err == io.EOF {
		return nil, errors.NewGrammarMsg(missing)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}
