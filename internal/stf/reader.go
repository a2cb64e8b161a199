package stf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/stf2json/internal/errors"
)

const (
	openTag   = '{'
	closeTag  = '}'
	escapeTag = ' ' // "{ " is a literal brace, not a tag
)

// CommentTag is the tag synthesized for content appearing before any tag.
// Documented as {S}: comment text to be ignored when imported.
const CommentTag = "S"

// terminatorTags are tags that never carry a value; the chunk ends at the
// closing brace.
var terminatorTags = map[string]bool{
	";": true, // end of attribute/link
	"+": true, // category include
	"-": true, // category exclude
	".": true, // end of a category specification
	"!": true, // end of an item specification
}

// Chunk is one (tag, value) pair lexed from the stream. Value is nil for
// terminator tags and for tags whose data ran out before any non-whitespace
// byte. Ownership transfers fully to the consumer; chunks are never reused.
type Chunk struct {
	Tag   string
	Value *string
}

// Val returns the chunk value, or "" if the chunk has none.
func (c *Chunk) Val() string {
	if c.Value == nil {
		return ""
	}
	return *c.Value
}

// chunk lexer states; END is the terminal state of each Next call.
type chunkState int

const (
	chunkComment chunkState = iota
	chunkTag
	chunkData
)

// Reader lexes a raw STF byte stream into chunks. It keeps at most two bytes
// of pushback: deciding whether a `{` inside data starts the next chunk needs
// one byte of lookahead, and both bytes go back on the stream when it does.
type Reader struct {
	src    io.ByteReader
	diag   io.Writer
	unread []byte // pushback stack, most recently pushed byte read first
}

// byteReader adapts a plain io.Reader; callers normally hand in something
// buffered already.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	n, err := b.r.Read(b.buf[:])
	if n == 1 {
		return b.buf[0], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return 0, err
}

// NewReader creates a chunk reader over r. Lexer warnings are written to
// diag; pass nil to discard them.
func NewReader(r io.Reader, diag io.Writer) *Reader {
	if diag == nil {
		diag = io.Discard
	}
	src, ok := r.(io.ByteReader)
	if !ok {
		src = &byteReader{r: r}
	}
	return &Reader{src: src, diag: diag}
}

func (r *Reader) readByte() (byte, error) {
	if n := len(r.unread); n > 0 {
		c := r.unread[n-1]
		r.unread = r.unread[:n-1]
		return c, nil
	}
	return r.src.ReadByte()
}

func (r *Reader) pushBack(c byte) {
	r.unread = append(r.unread, c)
}

// Next reads the next chunk. It returns io.EOF on a clean end of stream
// (nothing but whitespace since the last chunk) and a LEX_ERROR if the
// stream ends inside an unfinished chunk.
func (r *Reader) Next() (*Chunk, error) {
	state := chunkComment
	var tag, value bytes.Buffer
	sawContent := false

	for {
		c, err := r.readByte()
		if err != nil {
			if err != io.EOF {
				return nil, errors.NewInternal(err)
			}
			if state == chunkComment && !sawContent {
				return nil, io.EOF
			}
			return nil, errors.NewLex("unexpected end of input inside chunk")
		}

		switch state {
		case chunkComment:
			// Leading whitespace before a tag is ignored.
			if isSpace(c) {
				continue
			}
			sawContent = true
			if c == openTag {
				state = chunkTag
				continue
			}
			// Content before any tag: fake a comment tag and treat this
			// byte as the first data byte.
			tag.WriteString(CommentTag)
			state = chunkData
			value.WriteByte(c)

		case chunkTag:
			if c != closeTag {
				tag.WriteByte(c)
				continue
			}
			name := tag.String()
			if name == "" {
				fmt.Fprintln(r.diag, "warning: found an empty tag, data maybe malformed")
			}
			if terminatorTags[name] {
				return &Chunk{Tag: name}, nil
			}
			state = chunkData

		case chunkData:
			if c == openTag {
				next, err := r.readByte()
				if err != nil {
					if err != io.EOF {
						return nil, errors.NewInternal(err)
					}
					// The brace belongs to whatever follows; put it back
					// and finish this chunk.
					r.pushBack(openTag)
					return r.finish(&tag, &value), nil
				}
				if next == escapeTag {
					// Escaped brace: drop the space, keep the brace.
					value.WriteByte(openTag)
					continue
				}
				r.pushBack(next)
				r.pushBack(openTag)
				return r.finish(&tag, &value), nil
			}
			// Discard leading whitespace before any value byte.
			if isSpace(c) && value.Len() == 0 {
				continue
			}
			value.WriteByte(c)
		}
	}
}

// finish assembles the chunk at end of data, trimming trailing whitespace.
func (r *Reader) finish(tag, value *bytes.Buffer) *Chunk {
	ch := &Chunk{Tag: tag.String()}
	if value.Len() > 0 {
		v := strings.TrimRight(value.String(), " \t\n\v\f\r")
		ch.Value = &v
	}
	return ch
}

// isSpace matches C's isspace for the ASCII range the format uses.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
