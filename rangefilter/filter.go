// Package rangefilter reconciles a dual-handle range slider and its two
// numeric inputs against the selection committed by a query layer.
//
// A Filter keeps three state slots: the external state it last observed,
// the slider values and the input texts. External changes flow into the
// local views through Sync; local changes reach the query layer only
// through DragCommit and CommitInput.
package rangefilter

import (
	"math"
	"strconv"
	"strings"

	"search-storefront/domain"
)

// State is what the query layer reports for one numeric attribute.
type State struct {
	Domain    domain.NumericDomain
	Committed domain.Selection
	CanRefine bool
}

// Binding is the query layer as seen by a Filter. Refine is fire-and-forget:
// its effect is observed later through State.
type Binding interface {
	State() State
	Refine(r domain.Range)
}

// Side selects one of the two numeric inputs.
type Side int

const (
	From Side = iota
	To
)

func (s Side) String() string {
	if s == To {
		return "to"
	}
	return "from"
}

// ParseSide maps "from"/"to" to a Side.
func ParseSide(v string) (Side, bool) {
	switch strings.ToLower(v) {
	case "from", "min":
		return From, true
	case "to", "max":
		return To, true
	}
	return From, false
}

// Filter is the range widget for one attribute. It is not safe for concurrent use.
type Filter struct {
	binding Binding
	st      domain.RangeWidgetState
}

// New creates a Filter synchronized to the binding's current state.
func New(b Binding) *Filter {
	f := &Filter{binding: b}
	f.Sync()
	return f
}

// Restore rebuilds a Filter from previously saved local views. The next
// event or render re-checks the binding before touching them.
func Restore(b Binding, st domain.RangeWidgetState) *Filter {
	return &Filter{binding: b, st: st}
}

// Snapshot returns the local views for persistence.
func (f *Filter) Snapshot() domain.RangeWidgetState {
	return f.st
}

// Sync compares the binding's domain and committed selection with the last
// observed ones and, on a change, overwrites both local views. It reports
// whether the views were reset.
func (f *Filter) Sync() bool {
	s := f.binding.State()
	observed := domain.ObservedRange{Domain: s.Domain, Committed: s.Committed}
	if f.st.Initialized && f.st.Observed.Equal(observed) {
		return false
	}

	r, ok := domain.ResolveDisplay(s.Committed, s.Domain)
	f.st = domain.RangeWidgetState{
		Initialized: true,
		Observed:    observed,
		Defined:     ok,
	}
	if ok {
		f.setViews(r)
	}
	return true
}

// DragTick follows a handle while it moves. It never refines.
func (f *Filter) DragTick(r domain.Range) bool {
	r, ok := f.dragRange(r)
	if !ok {
		return false
	}

	f.setViews(r)
	return true
}

// DragCommit refines with the final handle positions on release.
func (f *Filter) DragCommit(r domain.Range) bool {
	r, ok := f.dragRange(r)
	if !ok {
		return false
	}

	f.setViews(r)
	f.binding.Refine(r)
	return true
}

// dragRange accepts handle positions that are finite and ordered, clamped
// into the domain.
func (f *Filter) dragRange(r domain.Range) (domain.Range, bool) {
	f.Sync()
	s := f.binding.State()
	if !s.CanRefine || !f.st.Defined || !r.IsFinite() || r.From > r.To {
		return domain.Range{}, false
	}
	return s.Domain.Clamp(r), true
}

// EditInput records a keystroke in one input. Nothing is validated yet.
func (f *Filter) EditInput(side Side, text string) {
	f.Sync()
	f.st.Inputs[side] = text
}

// CommitInput validates and clamps the edited input when it loses focus,
// then refines with the resulting pair. Text that is not a finite number is
// rejected: the input reverts to the slider value and nothing is refined.
func (f *Filter) CommitInput(side Side) (domain.Range, bool) {
	f.Sync()
	s := f.binding.State()
	if !f.st.Defined {
		return domain.Range{}, false
	}

	entered, ok := parseValue(f.st.Inputs[side])
	if !ok {
		f.st.Inputs[side] = FormatValue(f.sliderValue(side))
		return domain.Range{}, false
	}

	other := side.other()
	otherValue, ok := parseValue(f.st.Inputs[other])
	if !ok {
		otherValue = f.sliderValue(other)
		f.st.Inputs[other] = FormatValue(otherValue)
	}

	clamped := ClampInput(side, entered, s.Domain, f.st.Slider)
	if clamped != entered {
		f.st.Inputs[side] = FormatValue(clamped)
	}

	r := domain.Range{From: clamped, To: otherValue}
	if side == To {
		r = domain.Range{From: otherValue, To: clamped}
	}

	f.st.Slider = r
	f.binding.Refine(r)
	return r, true
}

func (f *Filter) setViews(r domain.Range) {
	f.st.Slider = r
	f.st.Inputs = [2]string{FormatValue(r.From), FormatValue(r.To)}
}

func (f *Filter) sliderValue(side Side) float64 {
	if side == To {
		return f.st.Slider.To
	}
	return f.st.Slider.From
}

func (s Side) other() Side {
	if s == To {
		return From
	}
	return To
}

// FormatValue renders a value the way the inputs display it.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseValue(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
