package rangefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-storefront/domain"
)

type fakeBinding struct {
	state   State
	refines []domain.Range
}

func (b *fakeBinding) State() State {
	return b.state
}

func (b *fakeBinding) Refine(r domain.Range) {
	b.refines = append(b.refines, r)
}

func newBinding(min, max float64, sel domain.Selection) *fakeBinding {
	return &fakeBinding{state: State{
		Domain:    domain.NumericDomain{Min: min, Max: max},
		Committed: sel,
		CanRefine: true,
	}}
}

func closed(from, to float64) domain.Selection {
	return domain.Selection{From: domain.ClosedBound(from), To: domain.ClosedBound(to)}
}

func TestNew_OpenSelectionResolvesToDomain(t *testing.T) {
	b := newBinding(0, 100, domain.OpenSelection())
	f := New(b)

	v, ok := f.View()
	require.True(t, ok)
	assert.Equal(t, domain.Range{From: 0, To: 100}, v.Slider)
	assert.Equal(t, "0", v.From.Value)
	assert.Equal(t, "100", v.To.Value)
	assert.Empty(t, b.refines)
}

func TestView_UnknownDomainRendersNothing(t *testing.T) {
	b := &fakeBinding{state: State{Committed: domain.OpenSelection()}}
	f := New(b)

	_, ok := f.View()
	assert.False(t, ok)

	// the domain arriving later is an external change
	b.state.Domain = domain.NumericDomain{Min: 5, Max: 50}
	b.state.CanRefine = true
	v, ok := f.View()
	require.True(t, ok)
	assert.Equal(t, domain.Range{From: 5, To: 50}, v.Slider)
}

func TestDragTick_NeverRefines(t *testing.T) {
	b := newBinding(0, 100, domain.OpenSelection())
	f := New(b)

	for _, to := range []float64{95, 90, 85, 80} {
		assert.True(t, f.DragTick(domain.Range{From: 10, To: to}))
	}

	assert.Empty(t, b.refines)
	v, _ := f.View()
	assert.Equal(t, domain.Range{From: 10, To: 80}, v.Slider)
	assert.Equal(t, "10", v.From.Value)
	assert.Equal(t, "80", v.To.Value)
}

func TestDragCommit_RefinesOnce(t *testing.T) {
	b := newBinding(0, 100, closed(40, 80))
	f := New(b)

	f.DragTick(domain.Range{From: 40, To: 75})
	f.DragTick(domain.Range{From: 40, To: 68})
	f.DragTick(domain.Range{From: 40, To: 60})
	f.DragCommit(domain.Range{From: 40, To: 60})

	require.Len(t, b.refines, 1)
	assert.Equal(t, domain.Range{From: 40, To: 60}, b.refines[0])
}

func TestDrag_IgnoredWhenRefineUnavailable(t *testing.T) {
	b := newBinding(0, 100, domain.OpenSelection())
	b.state.CanRefine = false
	f := New(b)

	assert.False(t, f.DragTick(domain.Range{From: 10, To: 20}))
	assert.False(t, f.DragCommit(domain.Range{From: 10, To: 20}))
	assert.Empty(t, b.refines)

	v, ok := f.View()
	require.True(t, ok)
	assert.True(t, v.Disabled)
	assert.Equal(t, domain.Range{From: 0, To: 100}, v.Slider)
}

func TestDrag_RangeIsCheckedBeforeViewsChange(t *testing.T) {
	tests := []struct {
		name       string
		r          domain.Range
		wantOK     bool
		wantSlider domain.Range
	}{
		{
			name:       "inverted range is ignored",
			r:          domain.Range{From: 70, To: 30},
			wantSlider: domain.Range{From: 20, To: 80},
		},
		{
			name:       "range past the domain is clamped",
			r:          domain.Range{From: -15, To: 140},
			wantOK:     true,
			wantSlider: domain.Range{From: 0, To: 100},
		},
		{
			name:       "range inside the domain is kept",
			r:          domain.Range{From: 35, To: 65},
			wantOK:     true,
			wantSlider: domain.Range{From: 35, To: 65},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" on tick", func(t *testing.T) {
			b := newBinding(0, 100, closed(20, 80))
			f := New(b)

			assert.Equal(t, tt.wantOK, f.DragTick(tt.r))
			v, _ := f.View()
			assert.Equal(t, tt.wantSlider, v.Slider)
			assert.Empty(t, b.refines)
		})
		t.Run(tt.name+" on release", func(t *testing.T) {
			b := newBinding(0, 100, closed(20, 80))
			f := New(b)

			assert.Equal(t, tt.wantOK, f.DragCommit(tt.r))
			v, _ := f.View()
			assert.Equal(t, tt.wantSlider, v.Slider)
			if tt.wantOK {
				require.Len(t, b.refines, 1)
				assert.Equal(t, tt.wantSlider, b.refines[0])
			} else {
				assert.Empty(t, b.refines)
			}
		})
	}
}

func TestView_ShrunkDomainKeepsHandlesInside(t *testing.T) {
	b := newBinding(0, 100, domain.Selection{From: domain.ClosedBound(60), To: domain.OpenBound()})
	f := New(b)

	b.state.Domain = domain.NumericDomain{Min: 0, Max: 50}
	v, ok := f.View()
	require.True(t, ok)
	assert.Equal(t, domain.Range{From: 50, To: 50}, v.Slider)
	assert.Equal(t, 100.0, v.Handles[0].Percent)
	assert.Equal(t, 100.0, v.Handles[1].Percent)

	f.EditInput(To, "40")
	r, ok := f.CommitInput(To)
	require.True(t, ok)
	assert.GreaterOrEqual(t, r.From, 0.0)
	assert.LessOrEqual(t, r.To, 50.0)
	assert.LessOrEqual(t, r.From, r.To)
}

func TestEditInput_TouchesOnlyOneSide(t *testing.T) {
	b := newBinding(0, 100, closed(20, 80))
	f := New(b)

	f.EditInput(From, "3")
	f.EditInput(From, "35")

	v, _ := f.View()
	assert.Equal(t, "35", v.From.Value)
	assert.Equal(t, "80", v.To.Value)
	assert.Equal(t, domain.Range{From: 20, To: 80}, v.Slider)
	assert.Empty(t, b.refines)
}

func TestCommitInput_FromAboveToClampsToTo(t *testing.T) {
	b := newBinding(0, 100, closed(0, 80))
	f := New(b)

	f.EditInput(From, "150")
	r, ok := f.CommitInput(From)

	require.True(t, ok)
	assert.Equal(t, domain.Range{From: 80, To: 80}, r)
	require.Len(t, b.refines, 1)
	assert.Equal(t, domain.Range{From: 80, To: 80}, b.refines[0])

	v, _ := f.View()
	assert.Equal(t, "80", v.From.Value)
	assert.Equal(t, domain.Range{From: 80, To: 80}, v.Slider)
}

func TestCommitInput_Clamping(t *testing.T) {
	tests := []struct {
		name  string
		side  Side
		text  string
		want  domain.Range
		input string
	}{
		{"from below domain min", From, "-5", domain.Range{From: 10, To: 70}, "10"},
		{"from inside range", From, "25", domain.Range{From: 25, To: 70}, "25"},
		{"from equal to current to", From, "70", domain.Range{From: 70, To: 70}, "70"},
		{"to above domain max", To, "999", domain.Range{From: 30, To: 90}, "90"},
		{"to below current from", To, "12", domain.Range{From: 30, To: 30}, "30"},
		{"to inside range", To, "55.5", domain.Range{From: 30, To: 55.5}, "55.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBinding(10, 90, closed(30, 70))
			f := New(b)
			if tt.side == From {
				// the "to" input is the other half of the refined pair
				f.EditInput(To, "70")
			}

			f.EditInput(tt.side, tt.text)
			r, ok := f.CommitInput(tt.side)

			require.True(t, ok)
			assert.Equal(t, tt.want, r)
			v, _ := f.View()
			if tt.side == From {
				assert.Equal(t, tt.input, v.From.Value)
			} else {
				assert.Equal(t, tt.input, v.To.Value)
			}
		})
	}
}

func TestCommitInput_ClampInvariant(t *testing.T) {
	dom := domain.NumericDomain{Min: 0, Max: 100}
	entries := []float64{-1000, -1, 0, 1, 33.3, 49, 50, 51, 99, 100, 101, 1e6}

	for _, v := range entries {
		b := newBinding(dom.Min, dom.Max, closed(20, 60))
		f := New(b)
		f.EditInput(From, FormatValue(v))
		r, ok := f.CommitInput(From)
		require.True(t, ok)
		assert.GreaterOrEqual(t, r.From, dom.Min, "from for %v", v)
		assert.LessOrEqual(t, r.From, 60.0, "from for %v", v)

		b = newBinding(dom.Min, dom.Max, closed(20, 60))
		f = New(b)
		f.EditInput(To, FormatValue(v))
		r, ok = f.CommitInput(To)
		require.True(t, ok)
		assert.LessOrEqual(t, r.To, dom.Max, "to for %v", v)
		assert.GreaterOrEqual(t, r.To, 20.0, "to for %v", v)
	}
}

func TestCommitInput_ValidPairIsIdempotent(t *testing.T) {
	b := newBinding(0, 100, closed(20, 60))
	f := New(b)

	first, ok := f.CommitInput(From)
	require.True(t, ok)
	second, ok := f.CommitInput(To)
	require.True(t, ok)

	assert.Equal(t, domain.Range{From: 20, To: 60}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, []domain.Range{{From: 20, To: 60}, {From: 20, To: 60}}, b.refines)

	v, _ := f.View()
	assert.Equal(t, "20", v.From.Value)
	assert.Equal(t, "60", v.To.Value)
}

func TestCommitInput_RejectsNonNumericText(t *testing.T) {
	for _, text := range []string{"", "abc", "NaN", "Infinity", "1e400"} {
		t.Run(text, func(t *testing.T) {
			b := newBinding(0, 100, closed(20, 60))
			f := New(b)

			f.EditInput(To, text)
			_, ok := f.CommitInput(To)

			assert.False(t, ok)
			assert.Empty(t, b.refines)
			v, _ := f.View()
			assert.Equal(t, "60", v.To.Value)
			assert.Equal(t, domain.Range{From: 20, To: 60}, v.Slider)
		})
	}
}

func TestSync_ExternalChangeDiscardsDrag(t *testing.T) {
	b := newBinding(0, 100, closed(20, 80))
	f := New(b)

	f.DragTick(domain.Range{From: 20, To: 50})
	f.EditInput(From, "33")

	b.state.Committed = closed(10, 90)

	v, ok := f.View()
	require.True(t, ok)
	assert.Equal(t, domain.Range{From: 10, To: 90}, v.Slider)
	assert.Equal(t, "10", v.From.Value)
	assert.Equal(t, "90", v.To.Value)
}

func TestSync_UnchangedStateKeepsLocalViews(t *testing.T) {
	b := newBinding(0, 100, closed(20, 80))
	f := New(b)

	f.DragTick(domain.Range{From: 25, To: 75})

	// same values, new render
	b.state.Committed = closed(20, 80)
	assert.False(t, f.Sync())

	v, _ := f.View()
	assert.Equal(t, domain.Range{From: 25, To: 75}, v.Slider)
}

func TestSync_RunsBeforeEventHandlers(t *testing.T) {
	b := newBinding(0, 100, closed(20, 80))
	f := New(b)
	f.DragTick(domain.Range{From: 20, To: 30})

	// a fresh push lands before the blur is handled
	b.state.Committed = closed(50, 90)
	f.EditInput(From, "95")
	r, ok := f.CommitInput(From)

	require.True(t, ok)
	assert.Equal(t, domain.Range{From: 90, To: 90}, r)
}

func TestRestore_RoundTrip(t *testing.T) {
	b := newBinding(0, 100, closed(20, 80))
	f := New(b)
	f.DragTick(domain.Range{From: 30, To: 70})

	restored := Restore(b, f.Snapshot())
	v, ok := restored.View()
	require.True(t, ok)
	assert.Equal(t, domain.Range{From: 30, To: 70}, v.Slider)
}

func TestView_AdvisoryBounds(t *testing.T) {
	b := newBinding(0, 500, closed(100, 300))
	f := New(b)

	v, ok := f.View()
	require.True(t, ok)
	assert.Equal(t, "0.00", v.From.Min)
	assert.Equal(t, "299.00", v.From.Max)
	assert.Equal(t, "101.00", v.To.Min)
	assert.Equal(t, "500.00", v.To.Max)
	assert.Equal(t, 20.0, v.Handles[0].Percent)
	assert.Equal(t, 60.0, v.Handles[1].Percent)
	assert.Equal(t, 40.0, v.TrackWidth())
	assert.Greater(t, v.Handles[0].ZIndex, v.Handles[1].ZIndex)
}

func TestParseSide(t *testing.T) {
	s, ok := ParseSide("to")
	assert.True(t, ok)
	assert.Equal(t, To, s)

	s, ok = ParseSide("FROM")
	assert.True(t, ok)
	assert.Equal(t, From, s)

	_, ok = ParseSide("middle")
	assert.False(t, ok)
}
