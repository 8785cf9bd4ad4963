package relay

import "strings"

// entry is one answerable item. All derived keys are computed once at
// parse time and never mutated.
type entry struct {
	display   string   // hyphen-joined normalized display key, unique in the catalog
	fullMatch string   // normalized concatenation of every match fragment
	category  string   // normalized first match fragment
	element   string   // normalized last match fragment
	displays  []string // display fragments as parsed, for lossless save
	matches   []string // match fragments as parsed
}

// Catalog is the themed answer list for one game: ordered entries plus
// the set already consumed. Entry order is fixed at load time and
// matching always scans in that order, so lookups are deterministic.
type Catalog struct {
	order    []string
	byKey    map[string]*entry
	consumed map[string]struct{}
}

// ParseRows builds a catalog from tabular records of alternating
// (display, match) cells. The first blank record separates unanswered
// entries from previously answered ones; with no separator every record
// is unanswered. Records missing a display or match cell are skipped.
// Answered-section records are deduplicated by display key against
// entries already seen.
func ParseRows(rows [][]string) *Catalog {
	c := &Catalog{
		byKey:    make(map[string]*entry),
		consumed: make(map[string]struct{}),
	}

	sep := -1
	for i, row := range rows {
		if blankRow(row) {
			sep = i
			break
		}
	}

	end := len(rows)
	if sep >= 0 {
		end = sep
	}
	for _, row := range rows[:end] {
		e, ok := parseEntry(row)
		if !ok {
			continue
		}
		if _, dup := c.byKey[e.display]; !dup {
			c.order = append(c.order, e.display)
		}
		// A repeated display key keeps the later row's fragments.
		c.byKey[e.display] = e
	}

	if sep >= 0 {
		for _, row := range rows[sep+1:] {
			e, ok := parseEntry(row)
			if !ok {
				continue
			}
			if _, present := c.byKey[e.display]; !present {
				c.order = append(c.order, e.display)
				c.byKey[e.display] = e
			}
			c.consumed[e.display] = struct{}{}
		}
	}
	return c
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseEntry(row []string) (*entry, bool) {
	var displays, matches []string
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if i%2 == 0 {
			displays = append(displays, cell)
		} else {
			matches = append(matches, cell)
		}
	}
	if len(displays) == 0 || len(matches) == 0 {
		return nil, false
	}
	display := Normalize(strings.Join(displays, "-"))
	if display == "" {
		return nil, false
	}
	return &entry{
		display:   display,
		fullMatch: Normalize(strings.Join(matches, "")),
		category:  Normalize(matches[0]),
		element:   Normalize(matches[len(matches)-1]),
		displays:  displays,
		matches:   matches,
	}, true
}

// FindMatch returns the display key of the first unconsumed entry the
// input matches, scanning in catalog order. Full form: the normalized
// input equals the entry's full match string. Short form: the input
// equals the element key alone, accepted only when prevCategory equals
// the entry's category key. Ties resolve by catalog order, never by
// similarity.
func (c *Catalog) FindMatch(text, prevCategory string) (string, bool) {
	t := Normalize(text)
	for _, key := range c.order {
		if _, used := c.consumed[key]; used {
			continue
		}
		e := c.byKey[key]
		if t == e.fullMatch {
			return key, true
		}
		if prevCategory != "" && t == e.element && prevCategory == e.category {
			return key, true
		}
	}
	return "", false
}

// MarkUsed consumes the first entry matching the input, if any, and
// returns its display key.
func (c *Catalog) MarkUsed(text, prevCategory string) (string, bool) {
	key, ok := c.FindMatch(text, prevCategory)
	if ok {
		c.consumed[key] = struct{}{}
	}
	return key, ok
}

// Unmark moves a consumed entry back to the pending pool and reports
// whether anything changed.
func (c *Catalog) Unmark(key string) bool {
	if _, ok := c.consumed[key]; !ok {
		return false
	}
	delete(c.consumed, key)
	return true
}

// RemainingCount is the number of entries not yet consumed.
func (c *Catalog) RemainingCount() int {
	return len(c.order) - len(c.consumed)
}

// Size is the total number of entries.
func (c *Catalog) Size() int { return len(c.order) }

// Remaining lists unconsumed display keys in catalog order.
func (c *Catalog) Remaining() []string {
	keys := make([]string, 0, c.RemainingCount())
	for _, key := range c.order {
		if _, used := c.consumed[key]; !used {
			keys = append(keys, key)
		}
	}
	return keys
}

// Consumed lists consumed display keys in catalog order.
func (c *Catalog) Consumed() []string {
	keys := []string{}
	for _, key := range c.order {
		if _, used := c.consumed[key]; used {
			keys = append(keys, key)
		}
	}
	return keys
}

// IsConsumed reports whether the key is marked answered.
func (c *Catalog) IsConsumed(key string) bool {
	_, ok := c.consumed[key]
	return ok
}

// Category returns the category key for a display key, or "" if the
// key is unknown.
func (c *Catalog) Category(key string) string {
	if e, ok := c.byKey[key]; ok {
		return e.category
	}
	return ""
}

// categoryKeys returns the distinct category keys in first-occurrence
// order. Prefix inference depends on this order to break equal-length
// ties deterministically.
func (c *Catalog) categoryKeys() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, key := range c.order {
		cat := c.byKey[key].category
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		keys = append(keys, cat)
	}
	return keys
}

// Rows reconstructs the tabular form: unanswered entries in catalog
// order, one blank separator record, then answered entries. Each row is
// rebuilt from the entry's originally parsed fragments so a load/save
// cycle is lossless.
func (c *Catalog) Rows() [][]string {
	rows := make([][]string, 0, len(c.order)+1)
	for _, key := range c.order {
		if !c.IsConsumed(key) {
			rows = append(rows, c.byKey[key].row())
		}
	}
	rows = append(rows, nil)
	for _, key := range c.order {
		if c.IsConsumed(key) {
			rows = append(rows, c.byKey[key].row())
		}
	}
	return rows
}

func (e *entry) row() []string {
	n := min(len(e.displays), len(e.matches))
	if n == 0 {
		return []string{e.display, e.fullMatch}
	}
	row := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		row = append(row, e.displays[i], e.matches[i])
	}
	return row
}
