package usecase

import (
	"search-storefront/domain"
	"search-storefront/rangefilter"
)

// priceBinding exposes a session's price refinement to a rangefilter.Filter.
type priceBinding struct {
	session *domain.SearchSession
	refined bool
}

func newPriceBinding(session *domain.SearchSession) *priceBinding {
	return &priceBinding{session: session}
}

func (b *priceBinding) State() rangefilter.State {
	dom := b.session.PriceDomain
	return rangefilter.State{
		Domain:    dom,
		Committed: b.session.Price,
		CanRefine: dom.Min < dom.Max,
	}
}

// Refine records the new selection on the session. The search itself runs
// after the event handler returns.
func (b *priceBinding) Refine(r domain.Range) {
	sel, ok := refineSelection(b.State(), r)
	if !ok {
		return
	}

	b.session.Price = sel
	b.session.Page = 1
	b.refined = true
}

// refineSelection maps a requested range onto a committed selection. The
// range is clamped into the domain and bounds on the domain edge become open.
// Non-finite or inverted ranges are ignored, as is everything while the
// attribute cannot be refined.
func refineSelection(s rangefilter.State, r domain.Range) (domain.Selection, bool) {
	if !s.CanRefine || !r.IsFinite() || r.From > r.To {
		return domain.Selection{}, false
	}
	r = s.Domain.Clamp(r)

	sel := domain.Selection{From: domain.ClosedBound(r.From), To: domain.ClosedBound(r.To)}
	if r.From == s.Domain.Min {
		sel.From = domain.OpenBound()
	}
	if r.To == s.Domain.Max {
		sel.To = domain.OpenBound()
	}
	return sel, true
}
