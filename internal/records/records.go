// Package records turns the roster and results tables into the ordered,
// numbered list of certificates to print.
//
// Build is a pure function: the same tables always produce the same records
// in the same order.
package records

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-certpress/internal/sheet"
)

// NullSentinel is the value an empty remark cell is normalized to.
// A record qualifies only when both remarks equal it.
const NullSentinel = "null"

// PadWidth is the display width of padded group IDs and sequence numbers.
const PadWidth = 4

// ErrMalformedInput reports a table that lacks an expected column.
var ErrMalformedInput = errors.New("malformed input")

// Columns maps table headers to record fields.
type Columns struct {
	PersonName string
	GroupID    string
	GroupName  string
	ResultFlag string
	Remark1    string
	Remark2    string
	PassValue  string // ResultFlag value that counts as a pass
}

// DefaultColumns returns the header names used by the registry exports.
func DefaultColumns() Columns {
	return Columns{
		PersonName: "NAME",
		GroupID:    "COLL_NO",
		GroupName:  "COLL_NAME",
		ResultFlag: "RSLT",
		Remark1:    "FREM",
		Remark2:    "RES",
		PassValue:  "P",
	}
}

// RosterEntry is one row of the roster table.
type RosterEntry struct {
	GroupID   string
	GroupName string
}

// ResultRecord is one row of the results table.
type ResultRecord struct {
	PersonName string
	GroupID    string
	ResultFlag string
	Remark1    string
	Remark2    string
}

// QualifyingRecord is a passing result joined with its group and numbered.
type QualifyingRecord struct {
	ResultRecord
	GroupName    string
	HasGroupName bool // false when the roster has no usable name for GroupID

	SequenceInGroup       int
	GroupIDPadded         string
	SequenceInGroupPadded string
}

// Qualifies reports whether a result passes with no remarks.
func (r ResultRecord) Qualifies(passValue string) bool {
	return r.ResultFlag == passValue && r.Remark1 == NullSentinel && r.Remark2 == NullSentinel
}

// LoadRoster extracts group IDs and names from the roster table.
func LoadRoster(t sheet.Table, cols Columns) ([]RosterEntry, error) {
	idx, err := columnIndexes(t, "roster", cols.GroupID, cols.GroupName)
	if err != nil {
		return nil, err
	}

	out := make([]RosterEntry, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, RosterEntry{
			GroupID:   row[idx[0]],
			GroupName: row[idx[1]],
		})
	}
	return out, nil
}

// LoadResults extracts result rows, normalizing empty remarks to NullSentinel.
func LoadResults(t sheet.Table, cols Columns) ([]ResultRecord, error) {
	idx, err := columnIndexes(t, "results",
		cols.PersonName, cols.GroupID, cols.ResultFlag, cols.Remark1, cols.Remark2)
	if err != nil {
		return nil, err
	}

	out := make([]ResultRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, ResultRecord{
			PersonName: row[idx[0]],
			GroupID:    row[idx[1]],
			ResultFlag: row[idx[2]],
			Remark1:    orNull(row[idx[3]]),
			Remark2:    orNull(row[idx[4]]),
		})
	}
	return out, nil
}

// Build loads both tables and returns the qualifying records in final order.
func Build(roster, results sheet.Table, cols Columns) ([]QualifyingRecord, error) {
	entries, err := LoadRoster(roster, cols)
	if err != nil {
		return nil, err
	}
	rows, err := LoadResults(results, cols)
	if err != nil {
		return nil, err
	}
	return Qualify(entries, rows, cols.PassValue), nil
}

// Qualify filters, joins, sorts and numbers already-loaded rows.
func Qualify(roster []RosterEntry, results []ResultRecord, passValue string) []QualifyingRecord {
	names := make(map[string]string, len(roster))
	for _, e := range roster {
		if _, seen := names[e.GroupID]; !seen {
			names[e.GroupID] = e.GroupName
		}
	}

	var out []QualifyingRecord
	for _, r := range results {
		if !r.Qualifies(passValue) {
			continue
		}
		name := names[r.GroupID]
		out = append(out, QualifyingRecord{
			ResultRecord: r,
			GroupName:    name,
			HasGroupName: name != "",
		})
	}

	slices.SortStableFunc(out, func(a, b QualifyingRecord) int {
		return CompareGroupIDs(a.GroupID, b.GroupID)
	})

	counters := make(map[string]int)
	for i := range out {
		counters[out[i].GroupID]++
		out[i].SequenceInGroup = counters[out[i].GroupID]
		out[i].GroupIDPadded = Pad(out[i].GroupID, PadWidth)
		out[i].SequenceInGroupPadded = Pad(fmt.Sprint(out[i].SequenceInGroup), PadWidth)
	}
	return out
}

// CompareGroupIDs orders integer IDs numerically before any non-integer ID,
// and non-integer IDs lexically. Integers of equal value ("01", "1") are
// ordered lexically so each distinct ID stays contiguous.
func CompareGroupIDs(a, b string) int {
	na, aok := parseInt(a)
	nb, bok := parseInt(b)
	switch {
	case aok && bok:
		if c := na.Cmp(nb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func parseInt(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}

// Pad left-pads s with zeros to width runes. Longer values are returned unchanged.
func Pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat("0", width-n) + s
}

// GroupCount is the number of records printed for one group.
type GroupCount struct {
	GroupID   string
	GroupName string
	Count     int
}

// Summary counts records per group in record order.
func Summary(recs []QualifyingRecord) []GroupCount {
	var out []GroupCount
	for _, r := range recs {
		if n := len(out); n > 0 && out[n-1].GroupID == r.GroupID {
			out[n-1].Count++
			continue
		}
		out = append(out, GroupCount{GroupID: r.GroupID, GroupName: r.GroupName, Count: 1})
	}
	return out
}

func orNull(s string) string {
	if s == "" {
		return NullSentinel
	}
	return s
}

// columnIndexes resolves header names to positions, failing on the first missing one.
func columnIndexes(t sheet.Table, table string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s table has no %q column", ErrMalformedInput, table, name)
		}
		idx[i] = j
	}
	return idx, nil
}
