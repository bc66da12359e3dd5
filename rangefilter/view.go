package rangefilter

import (
	"strconv"

	"search-storefront/domain"
)

// Handle is one slider handle as rendered.
type Handle struct {
	Value   float64
	Percent float64
	ZIndex  int
}

// Input is one numeric field with its advisory bounds.
type Input struct {
	Side  Side
	Value string
	Min   string
	Max   string
}

// View is everything needed to render the widget.
type View struct {
	Domain   domain.NumericDomain
	Slider   domain.Range
	From     Input
	To       Input
	Handles  [2]Handle
	Disabled bool
}

// TrackLeft and TrackWidth place the highlighted track between the handles, in percent.
func (v View) TrackLeft() float64 {
	return v.Handles[0].Percent
}

func (v View) TrackWidth() float64 {
	return v.Handles[1].Percent - v.Handles[0].Percent
}

// View synchronizes with the binding and returns the render model. ok is
// false when there is nothing to display because no domain is known.
func (f *Filter) View() (View, bool) {
	f.Sync()
	s := f.binding.State()
	if !f.st.Defined {
		return View{}, false
	}

	dom := s.Domain
	slider := f.st.Slider

	return View{
		Domain: dom,
		Slider: slider,
		From: Input{
			Side:  From,
			Value: f.st.Inputs[From],
			Min:   fixed2(dom.Min),
			Max:   fixed2(slider.To - 1),
		},
		To: Input{
			Side:  To,
			Value: f.st.Inputs[To],
			Min:   fixed2(slider.From + 1),
			Max:   fixed2(dom.Max),
		},
		Handles: [2]Handle{
			// the min handle stays on top so it can be dragged off a collapsed range
			{Value: slider.From, Percent: dom.Percent(slider.From), ZIndex: 2},
			{Value: slider.To, Percent: dom.Percent(slider.To), ZIndex: 1},
		},
		Disabled: !s.CanRefine,
	}, true
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
