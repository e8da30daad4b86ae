package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// ValueEntry is one token of a value domain: either a discrete scalar
// (Lo == Hi) or an inclusive integer range [Lo, Hi].
type ValueEntry struct {
	Lo int64
	Hi int64
}

// Size is the number of candidate values the entry contributes.
func (e ValueEntry) Size() int64 {
	return e.Hi - e.Lo + 1
}

func (e ValueEntry) String() string {
	if e.Lo == e.Hi {
		return strconv.FormatInt(e.Lo, 10)
	}
	return fmt.Sprintf("%d-%d", e.Lo, e.Hi)
}

// ValueDomain is the ordered candidate space a mutation draws from, e.g.
// "[80, 8080, 10000-11000]".
type ValueDomain struct {
	Entries []ValueEntry
}

// ParseValueDomain parses a comma-separated token list inside optional
// brackets. Each token is an integer or "lo-hi" with lo <= hi. Whitespace
// around tokens is ignored. An empty token list is an error.
func ParseValueDomain(spec string) (ValueDomain, error) {
	trimmed := strings.TrimSpace(spec)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")

	var entries []ValueEntry
	for _, token := range strings.Split(trimmed, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		entry, err := parseValueEntry(token)
		if err != nil {
			return ValueDomain{}, err
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return ValueDomain{}, fmt.Errorf("value domain %q has no tokens", spec)
	}
	return ValueDomain{Entries: entries}, nil
}

func parseValueEntry(token string) (ValueEntry, error) {
	if lo, hi, ok := strings.Cut(token, "-"); ok && lo != "" {
		loVal, loErr := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
		hiVal, hiErr := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
		if loErr != nil || hiErr != nil {
			return ValueEntry{}, fmt.Errorf("range token %q is not numeric", token)
		}
		if loVal > hiVal {
			return ValueEntry{}, fmt.Errorf("range token %q is inverted", token)
		}
		return ValueEntry{Lo: loVal, Hi: hiVal}, nil
	}
	v, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return ValueEntry{}, fmt.Errorf("token %q is not an integer or range", token)
	}
	return ValueEntry{Lo: v, Hi: v}, nil
}

// Size is the total number of candidate values across all entries.
func (d ValueDomain) Size() int64 {
	var total int64
	for _, e := range d.Entries {
		total += e.Size()
	}
	return total
}

// At maps an index in [0, Size()) onto the flattened candidate space.
func (d ValueDomain) At(index int64) int64 {
	var offset int64
	for _, e := range d.Entries {
		if index < offset+e.Size() {
			return e.Lo + (index - offset)
		}
		offset += e.Size()
	}
	// Out of range indices clamp to the last candidate.
	last := d.Entries[len(d.Entries)-1]
	return last.Hi
}

// Sample draws uniformly over the flattened candidate space: a discrete
// entry weighs 1, a range [lo, hi] weighs hi-lo+1, so every integer covered
// by the domain is equally likely.
func (d ValueDomain) Sample(rng *rand.Rand) int64 {
	return d.At(rng.Int63n(d.Size()))
}

// Contains reports whether v is covered by any entry.
func (d ValueDomain) Contains(v int64) bool {
	for _, e := range d.Entries {
		if v >= e.Lo && v <= e.Hi {
			return true
		}
	}
	return false
}

// Equal compares two domains entry by entry, order included.
func (d ValueDomain) Equal(other ValueDomain) bool {
	if len(d.Entries) != len(other.Entries) {
		return false
	}
	for i, e := range d.Entries {
		if e != other.Entries[i] {
			return false
		}
	}
	return true
}

func (d ValueDomain) String() string {
	tokens := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		tokens[i] = e.String()
	}
	return "[" + strings.Join(tokens, ", ") + "]"
}
