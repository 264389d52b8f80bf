// Package canon re-keys top-level categories to the identifiers the study
// application hardcodes for each EASA subject.
package canon

import (
	"fmt"
	"sort"
)

// Entry binds a classification code to its canonical category id.
type Entry struct {
	Code    string `json:"code" yaml:"code"`
	ID      int64  `json:"id" yaml:"id"`
	Subject string `json:"subject" yaml:"subject"`
}

// Table is an immutable code → canonical id mapping.
type Table struct {
	entries []Entry
	byCode  map[string]int64
}

// NewTable builds a Table. Codes and ids must both be unique so that no
// two remaps can target the same id.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, len(entries)),
		byCode:  make(map[string]int64, len(entries)),
	}
	copy(t.entries, entries)

	ids := make(map[int64]string, len(entries))
	for _, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("canonical entry for id %d has an empty code", e.ID)
		}
		if _, dup := t.byCode[e.Code]; dup {
			return nil, fmt.Errorf("duplicate canonical code %q", e.Code)
		}
		if other, dup := ids[e.ID]; dup {
			return nil, fmt.Errorf("canonical id %d assigned to both %q and %q", e.ID, other, e.Code)
		}
		t.byCode[e.Code] = e.ID
		ids[e.ID] = e.Code
	}

	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].Code < t.entries[j].Code })
	return t, nil
}

// Lookup returns the canonical id for code.
func (t *Table) Lookup(code string) (int64, bool) {
	id, ok := t.byCode[code]
	return id, ok
}

// Entries returns a copy of the table sorted by code.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

var easa = mustTable([]Entry{
	{Code: "10", ID: 551, Subject: "Air Law"},
	{Code: "21", ID: 560, Subject: "Aircraft General Knowledge"},
	{Code: "22", ID: 528, Subject: "Instrumentation"},
	{Code: "31", ID: 557, Subject: "Mass and Balance"},
	{Code: "32", ID: 558, Subject: "Performance"},
	{Code: "33", ID: 559, Subject: "Flight Planning"},
	{Code: "40", ID: 552, Subject: "Human Performance"},
	{Code: "50", ID: 553, Subject: "Meteorology"},
	{Code: "61", ID: 501, Subject: "Navigation"},
	{Code: "62", ID: 500, Subject: "Radio Navigation"},
	{Code: "70", ID: 556, Subject: "Operational Procedures"},
	{Code: "81", ID: 555, Subject: "Principles of Flight"},
	{Code: "91", ID: 554, Subject: "Communications"},
})

// EASA returns the canonical top-level ids used by the study, mock exam
// and gamification screens of the app.
func EASA() *Table {
	return easa
}

func mustTable(entries []Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}
