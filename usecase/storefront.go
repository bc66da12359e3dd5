package usecase

import (
	"context"
	"errors"
	"fmt"

	"search-storefront/domain"
	"search-storefront/logger"
	"search-storefront/port"
	"search-storefront/rangefilter"
	"search-storefront/utils"
	"search-storefront/utils/otel"
)

// PriceEventKind names the range widget events the page posts.
type PriceEventKind string

const (
	PriceTick    PriceEventKind = "tick"
	PriceRelease PriceEventKind = "release"
	PriceEdit    PriceEventKind = "edit"
	PriceBlur    PriceEventKind = "blur"
)

// ParsePriceEventKind validates an event name from the URL.
func ParsePriceEventKind(v string) (PriceEventKind, error) {
	switch k := PriceEventKind(v); k {
	case PriceTick, PriceRelease, PriceEdit, PriceBlur:
		return k, nil
	}
	return "", &domain.ValidationError{Field: "event", Reason: fmt.Sprintf("unknown price event %q", v)}
}

// PriceEvent is one interaction with the price widget. Range is used by
// tick and release, Side by edit and blur, Text by edit. A blur with
// HasText set carries the final input text and applies it before committing.
type PriceEvent struct {
	Kind    PriceEventKind
	Range   domain.Range
	Side    rangefilter.Side
	Text    string
	HasText bool
}

// Refinement toggles one value of a facet attribute.
type Refinement struct {
	Attribute string
	Value     string
}

// SearchInput changes the query side of a session. Nil Query and zero Page
// keep the current values.
type SearchInput struct {
	Query  *string
	Page   int
	Toggle []Refinement
}

// PriceWidget is the render model of the price filter.
type PriceWidget struct {
	View    rangefilter.View
	Visible bool
}

// PageModel is what one request renders. Results is nil when the request did
// not need a new search.
type PageModel struct {
	Session *domain.SearchSession
	Results *SearchPage
	Price   PriceWidget
}

type StorefrontUsecase struct {
	sessions  port.SessionStore
	search    *SearchProductsUsecase
	sanitizer *utils.QuerySanitizer
	locks     *sessionLocks
}

func NewStorefrontUsecase(sessions port.SessionStore, search *SearchProductsUsecase) *StorefrontUsecase {
	return &StorefrontUsecase{
		sessions:  sessions,
		search:    search,
		sanitizer: utils.NewQuerySanitizer(utils.DefaultSecurityConfig()),
		locks:     newSessionLocks(),
	}
}

// Show renders the full page for a session, creating the session if needed.
func (u *StorefrontUsecase) Show(ctx context.Context, sessionID string) (*PageModel, error) {
	return u.Search(ctx, sessionID, SearchInput{})
}

// Search applies query, page and facet changes, runs the search and
// reconciles the price widget with the new result.
func (u *StorefrontUsecase) Search(ctx context.Context, sessionID string, in SearchInput) (*PageModel, error) {
	var query string
	if in.Query != nil {
		query = u.sanitizer.SanitizeQuery(ctx, *in.Query)
		if err := domain.ValidateQuery(query); err != nil {
			return nil, err
		}
	}
	if in.Page < 0 {
		return nil, &domain.ValidationError{Field: "page", Reason: "must be positive"}
	}
	for _, r := range in.Toggle {
		if err := domain.ValidateRefinement(r.Attribute, r.Value); err != nil {
			return nil, err
		}
	}

	unlock := u.locks.lock(sessionID)
	defer unlock()

	session, err := u.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if in.Query != nil && query != session.Query {
		session.Query = query
		session.Page = 1
	}
	for _, r := range in.Toggle {
		session.ToggleRefinement(r.Attribute, r.Value)
	}
	if err := domain.ValidateRefinements(session.Refinements); err != nil {
		return nil, err
	}
	if in.Page > 0 {
		session.Page = in.Page
	}

	results, err := u.search.Execute(ctx, session)
	if err != nil {
		logger.FromContext(ctx).Error("search failed", "error", err)
		return nil, err
	}
	session.PriceDomain = results.PriceDomain

	filter := rangefilter.Restore(newPriceBinding(session), session.PriceWidget)
	model := &PageModel{Session: session, Results: results, Price: renderPrice(filter)}
	session.PriceWidget = filter.Snapshot()

	if err := u.save(ctx, session); err != nil {
		return nil, err
	}
	return model, nil
}

// ApplyPriceEvent feeds one widget event to the session's price filter. A
// refine re-runs the search; a failed search leaves the stored session as it
// was.
func (u *StorefrontUsecase) ApplyPriceEvent(ctx context.Context, sessionID string, ev PriceEvent) (*PageModel, error) {
	ctx = logger.WithWidgetEvent(ctx, string(ev.Kind))

	unlock := u.locks.lock(sessionID)
	defer unlock()

	session, err := u.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var results *SearchPage
	if !session.PriceWidget.Initialized {
		// Nothing rendered yet for this session; learn the domain first.
		if results, err = u.search.Execute(ctx, session); err != nil {
			logger.FromContext(ctx).Error("search failed", "error", err)
			return nil, err
		}
		session.PriceDomain = results.PriceDomain
	}

	binding := newPriceBinding(session)
	filter := rangefilter.Restore(binding, session.PriceWidget)

	switch ev.Kind {
	case PriceTick:
		filter.DragTick(ev.Range)
	case PriceRelease:
		filter.DragCommit(ev.Range)
	case PriceEdit:
		filter.EditInput(ev.Side, ev.Text)
	case PriceBlur:
		if ev.HasText {
			filter.EditInput(ev.Side, ev.Text)
		}
		filter.CommitInput(ev.Side)
	default:
		return nil, &domain.ValidationError{Field: "event", Reason: fmt.Sprintf("unknown price event %q", ev.Kind)}
	}

	otel.Metrics.RecordWidgetEvent(ctx, string(ev.Kind), binding.refined)

	if binding.refined {
		logger.FromContext(ctx).Info("price refined",
			"from", session.Price.From,
			"to", session.Price.To,
		)
		if results, err = u.search.Execute(ctx, session); err != nil {
			logger.FromContext(ctx).Error("search after refine failed", "error", err)
			return nil, err
		}
		session.PriceDomain = results.PriceDomain
	}

	model := &PageModel{Session: session, Results: results, Price: renderPrice(filter)}
	session.PriceWidget = filter.Snapshot()

	if err := u.save(ctx, session); err != nil {
		return nil, err
	}
	return model, nil
}

func renderPrice(filter *rangefilter.Filter) PriceWidget {
	view, ok := filter.View()
	return PriceWidget{View: view, Visible: ok}
}

func (u *StorefrontUsecase) loadOrCreate(ctx context.Context, sessionID string) (*domain.SearchSession, error) {
	session, err := u.sessions.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		logger.FromContext(ctx).Debug("starting new search session")
		return domain.NewSearchSession(sessionID), nil
	}
	if err != nil {
		otel.Metrics.RecordSessionError(ctx, "load")
		logger.FromContext(ctx).Error("failed to load session", "error", err)
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

func (u *StorefrontUsecase) save(ctx context.Context, session *domain.SearchSession) error {
	if err := u.sessions.Save(ctx, session); err != nil {
		otel.Metrics.RecordSessionError(ctx, "save")
		logger.FromContext(ctx).Error("failed to save session", "error", err)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
