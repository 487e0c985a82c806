package freshness

import "time"

// timestamp is an extended instant that additionally supports -∞ and +∞,
// matching spec §4.3: a missing output is "newer than everything" (+∞) so
// that it forces re-execution of its node and propagates invalidation to
// dependents, while the default for "no outputs at all" on one side of a
// comparison is the opposite extreme for that side (see maxDep/minOut).
type timestamp struct {
	kind timestampKind
	at   time.Time // meaningful only when kind == timestampFinite
}

type timestampKind int

const (
	timestampNegInf timestampKind = iota
	timestampFinite
	timestampPosInf
)

var negInf = timestamp{kind: timestampNegInf}
var posInf = timestamp{kind: timestampPosInf}

func finite(t time.Time) timestamp {
	return timestamp{kind: timestampFinite, at: t}
}

// missing represents an Output whose Timestamp() reported ok=false.
func missing() timestamp { return posInf }

// after reports whether ts is strictly after other.
func (ts timestamp) after(other timestamp) bool {
	if ts.kind != other.kind {
		return ts.kind > other.kind
	}
	if ts.kind != timestampFinite {
		return false // both -∞ or both +∞: neither is after the other
	}
	return ts.at.After(other.at)
}

func maxTimestamp(a, b timestamp) timestamp {
	if a.after(b) {
		return a
	}
	return b
}

func minTimestamp(a, b timestamp) timestamp {
	if b.after(a) {
		return a
	}
	return b
}
