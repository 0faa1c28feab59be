package textmatch

// Thesaurus maps a term to its related terms. Lookups work in both
// directions: if B is listed under A, A is also related to B.
type Thesaurus struct {
	forward map[string][]string
	reverse map[string][]string
}

// NewThesaurus builds a thesaurus from raw term lists. Terms are normalized
// and empty terms are dropped.
func NewThesaurus(raw map[string][]string) *Thesaurus {
	t := &Thesaurus{
		forward: make(map[string][]string, len(raw)),
		reverse: make(map[string][]string),
	}

	for term, related := range raw {
		key := Normalize(term)
		if key == "" {
			continue
		}
		for _, r := range related {
			r = Normalize(r)
			if r == "" || r == key {
				continue
			}
			t.forward[key] = appendUnique(t.forward[key], r)
			t.reverse[r] = appendUnique(t.reverse[r], key)
		}
	}

	return t
}

// Related returns the terms related to keyword, forward entries first.
func (t *Thesaurus) Related(keyword string) []string {
	if t == nil {
		return nil
	}

	out := append([]string(nil), t.forward[keyword]...)
	for _, r := range t.reverse[keyword] {
		out = appendUnique(out, r)
	}
	return out
}

// Len returns the number of terms with a forward entry.
func (t *Thesaurus) Len() int {
	if t == nil {
		return 0
	}
	return len(t.forward)
}

// Expand returns keywords followed by their related terms, deduplicated in
// first-seen order.
func (t *Thesaurus) Expand(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		out = appendUnique(out, k)
	}
	for _, k := range keywords {
		for _, r := range t.Related(k) {
			out = appendUnique(out, r)
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
