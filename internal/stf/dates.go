package stf

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/stf2json/internal/errors"
)

// MaxDateFormat is the highest valid date-format table index.
const MaxDateFormat = 12

// isoTimestamp is how normalized dates appear in the document.
const isoTimestamp = "2006-01-02T15:04:05Z"

// dateLayouts is the format table from Appendix B-7, re-expressed as Go
// reference layouts so parsing is locale-independent. Index 0 is reserved.
// Entries 1-6 use a 24-hour clock, 7-12 a 12-hour clock with an AM/PM marker.
// NOTE: the manual incorrectly claims 2-digit years; only the STF header uses
// them. Entries 5 and 11 carry no year, so normalized values render with
// year 0000.
var dateLayouts = [MaxDateFormat + 1]string{
	1:  "1/2/2006 15:04",
	2:  "1/2/2006 15:04",
	3:  "2.1.2006 15:04",
	4:  "2006-1-2 15:04",
	5:  "2-Jan 15:04",
	6:  "2-Jan-2006 15:04",
	7:  "1/2/2006 3:04PM",
	8:  "2/1/2006 3:04PM",
	9:  "2.1.2006 3:04PM",
	10: "2006-1-2 3:04PM",
	11: "2-Jan 3:04PM",
	12: "2-Jan-2006 3:04PM",
}

// The {STF} header timestamp (Appendix B-5) is always MM/DD/YY;HH:MM:SS;002,
// independent of the {d} format index.
const (
	headerLayout = "1/2/06;15:04:05"
	headerSuffix = ";002"
)

// ValidFormat reports whether n is a usable date-format table index.
func ValidFormat(n int) bool {
	return n >= 1 && n <= MaxDateFormat
}

// NormalizeTimestamp parses text against the table entry at formatIndex and
// renders it as ISO-8601.
func NormalizeTimestamp(formatIndex int, text string) (string, error) {
	if !ValidFormat(formatIndex) {
		return "", errors.NewConfig("invalid date format requested")
	}
	t, err := time.Parse(dateLayouts[formatIndex], text)
	if err != nil {
		return "", errors.NewDateFormat(text, formatIndex)
	}
	return t.Format(isoTimestamp), nil
}

// NormalizeHeader parses an {STF} header timestamp and renders it as
// ISO-8601.
func NormalizeHeader(text string) (string, error) {
	base, ok := strings.CutSuffix(text, headerSuffix)
	if !ok {
		return "", errors.NewDateFormatMsg(fmt.Sprintf("failed to parse STF header tag, %q", text))
	}
	t, err := time.Parse(headerLayout, base)
	if err != nil {
		return "", errors.NewDateFormatMsg(fmt.Sprintf("failed to parse STF header tag, %q", text))
	}
	return t.Format(isoTimestamp), nil
}
