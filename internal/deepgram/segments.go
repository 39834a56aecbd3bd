package deepgram

import "strings"

// transcript accumulates finalized segments plus the in-progress interim one.
type transcript struct {
	committed []string
	interim   string
}

// observe records one result segment and returns the cumulative text.
func (t *transcript) observe(segment string, isFinal bool) string {
	segment = normalizeSpace(segment)
	if isFinal {
		t.commit(segment)
		t.interim = ""
	} else {
		t.interim = segment
	}
	return t.text()
}

// commit appends segment, folding it into the previous one when one extends the other.
func (t *transcript) commit(segment string) {
	if segment == "" {
		return
	}
	n := len(t.committed)
	if n == 0 {
		t.committed = append(t.committed, segment)
		return
	}

	last := t.committed[n-1]
	switch {
	case strings.HasPrefix(last, segment):
	case strings.HasPrefix(segment, last):
		t.committed[n-1] = segment
	default:
		t.committed = append(t.committed, segment)
	}
}

func (t *transcript) text() string {
	parts := t.committed
	if t.interim != "" {
		parts = append(parts[:len(parts):len(parts)], t.interim)
	}
	return strings.Join(parts, " ")
}

func normalizeSpace(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
