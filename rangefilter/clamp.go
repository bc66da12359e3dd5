package rangefilter

import "search-storefront/domain"

// ClampInput applies the blur-time policy to a value entered on one side.
//
// From: below the domain minimum goes up to it; otherwise at or above the
// current "to" slider value comes down to that value. To is symmetric
// against the domain maximum and the "from" slider value. A zero-width
// range is allowed through the second rule.
func ClampInput(side Side, v float64, dom domain.NumericDomain, slider domain.Range) float64 {
	if side == From {
		if v < dom.Min {
			return dom.Min
		}
		if v >= slider.To {
			return slider.To
		}
		return v
	}

	if v > dom.Max {
		return dom.Max
	}
	if v <= slider.From {
		return slider.From
	}
	return v
}
