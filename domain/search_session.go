package domain

import "time"

// SearchSession is the per-visitor state of the search page: what the query
// layer knows plus the local views of the price widget.
type SearchSession struct {
	ID          string              `json:"id"`
	Query       string              `json:"query"`
	Refinements map[string][]string `json:"refinements,omitempty"`
	Page        int                 `json:"page"`
	Price       Selection           `json:"price"`
	PriceDomain NumericDomain       `json:"price_domain"`
	PriceWidget RangeWidgetState    `json:"price_widget"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewSearchSession starts an unfiltered session on page 1.
func NewSearchSession(id string) *SearchSession {
	return &SearchSession{
		ID:          id,
		Page:        1,
		Price:       OpenSelection(),
		Refinements: map[string][]string{},
	}
}

// ToggleRefinement adds value to the refinements of attribute, or removes it
// if already selected. The page resets to 1.
func (s *SearchSession) ToggleRefinement(attribute, value string) {
	if s.Refinements == nil {
		s.Refinements = map[string][]string{}
	}

	values := s.Refinements[attribute]
	for i, v := range values {
		if v == value {
			values = append(values[:i], values[i+1:]...)
			if len(values) == 0 {
				delete(s.Refinements, attribute)
			} else {
				s.Refinements[attribute] = values
			}
			s.Page = 1
			return
		}
	}

	s.Refinements[attribute] = append(values, value)
	s.Page = 1
}

// IsRefined reports whether value is selected for attribute.
func (s *SearchSession) IsRefined(attribute, value string) bool {
	for _, v := range s.Refinements[attribute] {
		if v == value {
			return true
		}
	}
	return false
}
