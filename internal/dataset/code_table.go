package dataset

import "sort"

// CodeTable maps an integer code to its display label. A code that appears
// more than once keeps every label, in file order; joining against such a
// table fans the left row out once per label.
type CodeTable struct {
	Name   string
	labels map[int32][]string
	rows   int
}

func NewCodeTable(name string) *CodeTable {
	return &CodeTable{Name: name, labels: make(map[int32][]string)}
}

// Add appends a code/label pair.
func (t *CodeTable) Add(code int32, label string) {
	t.labels[code] = append(t.labels[code], label)
	t.rows++
}

// Lookup returns the labels for code, nil when there is no match.
func (t *CodeTable) Lookup(code int32) []string {
	return t.labels[code]
}

// Len is the number of rows loaded.
func (t *CodeTable) Len() int {
	return t.rows
}

// Duplicates returns the codes that map to more than one label, ascending.
func (t *CodeTable) Duplicates() []int32 {
	var dups []int32
	for code, ls := range t.labels {
		if len(ls) > 1 {
			dups = append(dups, code)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return dups
}
