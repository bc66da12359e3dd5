package domain

import (
	"math"
	"testing"
)

func TestResolveDisplay(t *testing.T) {
	tests := []struct {
		name   string
		sel    Selection
		dom    NumericDomain
		want   Range
		wantOK bool
	}{
		{
			name:   "open bounds resolve to domain edges",
			sel:    OpenSelection(),
			dom:    NumericDomain{Min: 0, Max: 100},
			want:   Range{From: 0, To: 100},
			wantOK: true,
		},
		{
			name:   "closed bounds are kept",
			sel:    Selection{From: ClosedBound(20), To: ClosedBound(80)},
			dom:    NumericDomain{Min: 0, Max: 100},
			want:   Range{From: 20, To: 80},
			wantOK: true,
		},
		{
			name:   "mixed bounds",
			sel:    Selection{From: ClosedBound(35), To: OpenBound()},
			dom:    NumericDomain{Min: 10, Max: 250},
			want:   Range{From: 35, To: 250},
			wantOK: true,
		},
		{
			name:   "unknown domain with open bounds has nothing to display",
			sel:    OpenSelection(),
			dom:    NumericDomain{},
			wantOK: false,
		},
		{
			name:   "closed bound above a shrunk domain is pulled back",
			sel:    Selection{From: ClosedBound(60), To: OpenBound()},
			dom:    NumericDomain{Min: 0, Max: 50},
			want:   Range{From: 50, To: 50},
			wantOK: true,
		},
		{
			name:   "closed bounds below the domain",
			sel:    Selection{From: ClosedBound(2), To: ClosedBound(8)},
			dom:    NumericDomain{Min: 10, Max: 90},
			want:   Range{From: 10, To: 10},
			wantOK: true,
		},
		{
			name:   "closed bounds straddling the domain",
			sel:    Selection{From: ClosedBound(5), To: ClosedBound(120)},
			dom:    NumericDomain{Min: 10, Max: 90},
			want:   Range{From: 10, To: 90},
			wantOK: true,
		},
		{
			name:   "unknown domain with closed bounds",
			sel:    Selection{From: ClosedBound(1), To: ClosedBound(2)},
			dom:    NumericDomain{},
			want:   Range{From: 1, To: 2},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveDisplay(tt.sel, tt.dom)
			if ok != tt.wantOK {
				t.Fatalf("ResolveDisplay() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ResolveDisplay() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveDisplay_OpenBoundsAlwaysHitDomainEdges(t *testing.T) {
	domains := []NumericDomain{
		{Min: -50, Max: 50},
		{Min: 0.5, Max: 0.75},
		{Min: 1, Max: 1e9},
	}

	for _, dom := range domains {
		got, ok := ResolveDisplay(OpenSelection(), dom)
		if !ok {
			t.Fatalf("expected display range for domain %+v", dom)
		}
		if got.From != dom.Min || got.To != dom.Max {
			t.Errorf("ResolveDisplay(open, %+v) = %+v", dom, got)
		}
	}
}

func TestResolveDisplay_StaysInsideDomain(t *testing.T) {
	dom := NumericDomain{Min: 10, Max: 50}
	bounds := []Bound{OpenBound(), ClosedBound(-5), ClosedBound(10), ClosedBound(30), ClosedBound(50), ClosedBound(75)}

	for _, from := range bounds {
		for _, to := range bounds {
			got, ok := ResolveDisplay(Selection{From: from, To: to}, dom)
			if !ok {
				t.Fatalf("expected display range for %+v..%+v", from, to)
			}
			if got.From < dom.Min || got.To > dom.Max || got.From > got.To {
				t.Errorf("ResolveDisplay(%+v, %+v) = %+v outside %+v", from, to, got, dom)
			}
		}
	}
}

func TestBound_Equal(t *testing.T) {
	if !(Bound{Open: true, Value: 12}).Equal(OpenBound()) {
		t.Error("open bounds should be equal regardless of value")
	}
	if ClosedBound(3).Equal(OpenBound()) {
		t.Error("closed bound should not equal open bound")
	}
	if !ClosedBound(3).Equal(ClosedBound(3)) {
		t.Error("closed bounds with same value should be equal")
	}
	if ClosedBound(3).Equal(ClosedBound(4)) {
		t.Error("closed bounds with different values should differ")
	}
}

func TestObservedRange_Equal(t *testing.T) {
	a := ObservedRange{Domain: NumericDomain{Min: 0, Max: 10}, Committed: OpenSelection()}
	b := ObservedRange{Domain: NumericDomain{Min: 0, Max: 10}, Committed: OpenSelection()}
	if !a.Equal(b) {
		t.Error("identical observations should be equal")
	}

	b.Domain.Max = 11
	if a.Equal(b) {
		t.Error("domain change should be detected")
	}
}

func TestNumericDomain(t *testing.T) {
	if (NumericDomain{}).Known() {
		t.Error("zero domain should be unknown")
	}
	if !(NumericDomain{Min: 0, Max: 5}).Known() {
		t.Error("non-zero domain should be known")
	}

	d := NumericDomain{Min: 0, Max: 200}
	if p := d.Percent(50); p != 25 {
		t.Errorf("Percent(50) = %v, want 25", p)
	}
	if p := (NumericDomain{Min: 3, Max: 3}).Percent(3); p != 0 {
		t.Errorf("Percent on zero-width domain = %v, want 0", p)
	}
}

func TestRange_IsFinite(t *testing.T) {
	if !(Range{From: 1, To: 2}).IsFinite() {
		t.Error("expected finite range")
	}
	if (Range{From: math.NaN(), To: 2}).IsFinite() {
		t.Error("NaN should not be finite")
	}
	if (Range{From: 1, To: math.Inf(1)}).IsFinite() {
		t.Error("Inf should not be finite")
	}
}
