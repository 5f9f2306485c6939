package identifier

import (
	"strings"
	"time"
)

// Entry is one row of a market directory. Code holds the market's native
// id: an unpadded CIK for SEC, a company code for KRX.
type Entry struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Ticker   string `json:"ticker,omitempty"`
	Exchange string `json:"exchange,omitempty"`
}

// Directory is an immutable snapshot of a market's symbol table. It is never
// modified after NewDirectory returns; refreshing builds a new one.
type Directory struct {
	entries  []Entry
	byTicker map[string]int
	byName   map[string][]int
	loadedAt time.Time
}

// NewDirectory indexes entries. The slice is copied. When two entries share a
// ticker the first one wins.
func NewDirectory(entries []Entry) *Directory {
	d := &Directory{
		entries:  make([]Entry, len(entries)),
		byTicker: make(map[string]int, len(entries)),
		byName:   make(map[string][]int, len(entries)),
		loadedAt: time.Now(),
	}
	copy(d.entries, entries)

	for i, e := range d.entries {
		if e.Ticker != "" {
			t := NormalizeSymbol(e.Ticker)
			if _, dup := d.byTicker[t]; !dup {
				d.byTicker[t] = i
			}
		}
		if e.Name != "" {
			n := normalizeName(e.Name)
			d.byName[n] = append(d.byName[n], i)
		}
	}
	return d
}

// Len returns the number of entries.
func (d *Directory) Len() int { return len(d.entries) }

// LoadedAt returns when the snapshot was built.
func (d *Directory) LoadedAt() time.Time { return d.loadedAt }

// Entries returns a copy of all entries in load order.
func (d *Directory) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// LookupTicker finds an entry by ticker, case-insensitively.
func (d *Directory) LookupTicker(ticker string) (Entry, bool) {
	i, ok := d.byTicker[NormalizeSymbol(ticker)]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// SearchName finds the entry whose name matches query. An exact
// (case- and space-insensitive) match wins; otherwise a substring match is
// accepted only when it is unique. The int result is the number of
// candidates considered when no unique match exists.
func (d *Directory) SearchName(query string) (Entry, int, bool) {
	q := normalizeName(query)
	if q == "" {
		return Entry{}, 0, false
	}
	if idx := d.byName[q]; len(idx) > 0 {
		return d.entries[idx[0]], len(idx), true
	}

	var hits []int
	for i, e := range d.entries {
		if strings.Contains(normalizeName(e.Name), q) {
			hits = append(hits, i)
		}
	}
	if len(hits) == 1 {
		return d.entries[hits[0]], 1, true
	}
	return Entry{}, len(hits), false
}

// Filter returns entries whose ticker, name or code contains query
// (case-insensitive), up to limit entries. limit <= 0 means no limit.
func (d *Directory) Filter(query string, limit int) []Entry {
	q := strings.ToUpper(strings.TrimSpace(query))
	var out []Entry
	for _, e := range d.entries {
		if q != "" &&
			!strings.Contains(strings.ToUpper(e.Ticker), q) &&
			!strings.Contains(strings.ToUpper(e.Name), q) &&
			!strings.Contains(e.Code, q) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
