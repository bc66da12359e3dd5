package domain

import "math"

// Bound is one end of a committed selection. An open bound means the
// selection is unbounded on that side and resolves to the domain edge.
type Bound struct {
	Value float64 `json:"value"`
	Open  bool    `json:"open,omitempty"`
}

// OpenBound returns an unbounded endpoint.
func OpenBound() Bound {
	return Bound{Open: true}
}

// ClosedBound returns an endpoint fixed at v.
func ClosedBound(v float64) Bound {
	return Bound{Value: v}
}

// Equal compares two bounds; the value of an open bound is ignored.
func (b Bound) Equal(o Bound) bool {
	if b.Open || o.Open {
		return b.Open == o.Open
	}
	return b.Value == o.Value
}

// NumericDomain is the full legal range of a numeric attribute in the
// current result set. The zero value means no domain is known yet.
type NumericDomain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Known reports whether the domain carries real data.
func (d NumericDomain) Known() bool {
	return !(d.Min == 0 && d.Max == 0)
}

// Percent places v along the domain, 0 at Min and 100 at Max.
func (d NumericDomain) Percent(v float64) float64 {
	width := d.Max - d.Min
	if width <= 0 {
		return 0
	}
	return (v - d.Min) / width * 100
}

// Selection is a committed [from, to] selection as acknowledged by the
// query layer.
type Selection struct {
	From Bound `json:"from"`
	To   Bound `json:"to"`
}

// OpenSelection selects the whole domain.
func OpenSelection() Selection {
	return Selection{From: OpenBound(), To: OpenBound()}
}

// Equal compares two selections bound by bound.
func (s Selection) Equal(o Selection) bool {
	return s.From.Equal(o.From) && s.To.Equal(o.To)
}

// IsOpen reports whether neither side is bounded.
func (s Selection) IsOpen() bool {
	return s.From.Open && s.To.Open
}

// Range is a finite [From, To] pair.
type Range struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// IsFinite reports whether both ends are real numbers.
func (r Range) IsFinite() bool {
	return isFinite(r.From) && isFinite(r.To)
}

// ResolveDisplay substitutes the domain edges for the open bounds of sel and
// pulls closed bounds that fall outside a known domain back onto it, keeping
// From <= To. ok is false when a bound is open and no domain is known, in
// which case there is nothing to display.
func ResolveDisplay(sel Selection, dom NumericDomain) (Range, bool) {
	if !dom.Known() && (sel.From.Open || sel.To.Open) {
		return Range{}, false
	}

	r := Range{From: sel.From.Value, To: sel.To.Value}
	if sel.From.Open {
		r.From = dom.Min
	}
	if sel.To.Open {
		r.To = dom.Max
	}
	if dom.Known() {
		r = dom.Clamp(r)
	}
	return r, true
}

// Clamp moves both ends of r into the domain. An inverted result collapses
// onto its upper end.
func (d NumericDomain) Clamp(r Range) Range {
	r.From = math.Min(math.Max(r.From, d.Min), d.Max)
	r.To = math.Min(math.Max(r.To, d.Min), d.Max)
	if r.From > r.To {
		r.From = r.To
	}
	return r
}

// ObservedRange is the external state a range widget last synchronized to.
type ObservedRange struct {
	Domain    NumericDomain `json:"domain"`
	Committed Selection     `json:"committed"`
}

// Equal compares domains and committed selections by value.
func (o ObservedRange) Equal(other ObservedRange) bool {
	return o.Domain == other.Domain && o.Committed.Equal(other.Committed)
}

// RangeWidgetState holds the local views of a range widget between events.
type RangeWidgetState struct {
	Initialized bool          `json:"initialized"`
	Observed    ObservedRange `json:"observed"`
	Defined     bool          `json:"defined"`
	Slider      Range         `json:"slider"`
	Inputs      [2]string     `json:"inputs"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
