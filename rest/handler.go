package rest

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"search-storefront/domain"
	"search-storefront/logger"
	"search-storefront/rangefilter"
	"search-storefront/usecase"
)

// FragmentTargetHeader tells the page script which element a widget
// response replaces.
const FragmentTargetHeader = "X-Storefront-Target"

// Handler serves the storefront page, its widget events and the JSON API.
type Handler struct {
	storefront    *usecase.StorefrontUsecase
	secureCookies bool
}

func NewHandler(storefront *usecase.StorefrontUsecase, secureCookies bool) *Handler {
	return &Handler{
		storefront:    storefront,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes mounts every storefront route on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.HandleIndex)
	e.GET("/search", h.HandleSearch)
	e.POST("/widgets/price/:event", h.HandlePriceEvent)
	e.GET("/api/search", h.HandleSearchJSON)
	e.GET("/health", h.HandleHealth)
}

func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleIndex renders the full page for the current session.
func (h *Handler) HandleIndex(c echo.Context) error {
	id := h.sessionID(c)
	ctx := logger.WithOperation(c.Request().Context(), "show")

	model, err := h.storefront.Show(ctx, id)
	if err != nil {
		return h.renderError(c, err)
	}
	return h.render(c, http.StatusOK, "page", newPageView(model))
}

// HandleSearch applies q, page and refine[attr] parameters, then renders the
// page. Requests from the page script ask for the results fragment only.
func (h *Handler) HandleSearch(c echo.Context) error {
	id := h.sessionID(c)
	ctx := logger.WithOperation(c.Request().Context(), "search")

	in, err := parseSearchInput(c.QueryParams())
	if err != nil {
		return h.renderError(c, err)
	}

	model, err := h.storefront.Search(ctx, id, in)
	if err != nil {
		return h.renderError(c, err)
	}

	if isFragmentRequest(c) {
		return h.render(c, http.StatusOK, "results", newPageView(model))
	}
	return h.render(c, http.StatusOK, "page", newPageView(model))
}

// HandlePriceEvent feeds one price widget event to the session. Events that
// refine answer with the whole results block, the others with the widget.
func (h *Handler) HandlePriceEvent(c echo.Context) error {
	id := h.sessionID(c)
	ctx := logger.WithOperation(c.Request().Context(), "price_event")

	ev, err := parsePriceEvent(c)
	if err != nil {
		return h.renderError(c, err)
	}

	model, err := h.storefront.ApplyPriceEvent(ctx, id, ev)
	if err != nil {
		return h.renderError(c, err)
	}

	if model.Results != nil {
		c.Response().Header().Set(FragmentTargetHeader, "#results")
		return h.render(c, http.StatusOK, "results", newPageView(model))
	}
	c.Response().Header().Set(FragmentTargetHeader, "#price")
	return h.render(c, http.StatusOK, "price", newPageView(model))
}

// HandleSearchJSON accepts the same parameters as HandleSearch and answers
// with the page model as JSON.
func (h *Handler) HandleSearchJSON(c echo.Context) error {
	id := h.sessionID(c)
	ctx := logger.WithOperation(c.Request().Context(), "search_api")

	in, err := parseSearchInput(c.QueryParams())
	if err != nil {
		return h.jsonError(c, err)
	}

	model, err := h.storefront.Search(ctx, id, in)
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, newSearchResponse(model))
}

type SearchResponse struct {
	Query       string              `json:"query"`
	Page        int                 `json:"page"`
	Refinements map[string][]string `json:"refinements"`
	Price       *PriceResponse      `json:"price,omitempty"`
	Results     *usecase.SearchPage `json:"results"`
}

// PriceResponse is the price widget state: the domain, the slider position
// and the committed bounds (nil when open).
type PriceResponse struct {
	Min       float64     `json:"min"`
	Max       float64     `json:"max"`
	From      float64     `json:"from"`
	To        float64     `json:"to"`
	Committed [2]*float64 `json:"committed"`
	Disabled  bool        `json:"disabled"`
}

func newSearchResponse(model *usecase.PageModel) SearchResponse {
	resp := SearchResponse{
		Query:       model.Session.Query,
		Page:        model.Session.Page,
		Refinements: model.Session.Refinements,
		Results:     model.Results,
	}
	if resp.Refinements == nil {
		resp.Refinements = map[string][]string{}
	}

	if model.Price.Visible {
		v := model.Price.View
		price := &PriceResponse{
			Min:      v.Domain.Min,
			Max:      v.Domain.Max,
			From:     v.Slider.From,
			To:       v.Slider.To,
			Disabled: v.Disabled,
		}
		if b := model.Session.Price.From; !b.Open {
			price.Committed[0] = &b.Value
		}
		if b := model.Session.Price.To; !b.Open {
			price.Committed[1] = &b.Value
		}
		resp.Price = price
	}
	return resp
}

// parseSearchInput reads q, page and refine[attr]=value parameters.
// A missing q keeps the session query; an empty q clears it.
func parseSearchInput(params url.Values) (usecase.SearchInput, error) {
	var in usecase.SearchInput

	if params.Has("q") {
		q := params.Get("q")
		in.Query = &q
	}

	if raw := params.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return in, &domain.ValidationError{Field: "page", Reason: "must be a positive integer"}
		}
		in.Page = page
	}

	for key, values := range params {
		if !strings.HasPrefix(key, "refine[") || !strings.HasSuffix(key, "]") {
			continue
		}
		attribute := key[len("refine[") : len(key)-1]
		for _, v := range values {
			in.Toggle = append(in.Toggle, usecase.Refinement{Attribute: attribute, Value: v})
		}
	}

	return in, nil
}

// parsePriceEvent reads the form of a widget event. tick and release carry
// from and to, edit carries side and value, blur carries side and
// optionally value.
func parsePriceEvent(c echo.Context) (usecase.PriceEvent, error) {
	kind, err := usecase.ParsePriceEventKind(c.Param("event"))
	if err != nil {
		return usecase.PriceEvent{}, err
	}
	ev := usecase.PriceEvent{Kind: kind}

	switch kind {
	case usecase.PriceTick, usecase.PriceRelease:
		from, err := parseFloatField(c, "from")
		if err != nil {
			return ev, err
		}
		to, err := parseFloatField(c, "to")
		if err != nil {
			return ev, err
		}
		ev.Range = domain.Range{From: from, To: to}
	case usecase.PriceEdit, usecase.PriceBlur:
		side, ok := rangefilter.ParseSide(c.FormValue("side"))
		if !ok {
			return ev, &domain.ValidationError{Field: "side", Reason: "must be from or to"}
		}
		ev.Side = side
		ev.Text = c.FormValue("value")
		if form, err := c.FormParams(); err == nil {
			ev.HasText = form.Has("value")
		}
	}

	return ev, nil
}

func parseFloatField(c echo.Context, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue(field)), 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: field, Reason: "must be a number"}
	}
	return v, nil
}

func isFragmentRequest(c echo.Context) bool {
	return c.Request().Header.Get("X-Storefront-Fragment") == "true"
}

// errorStatus maps use case errors to HTTP statuses.
func errorStatus(err error) (int, string) {
	var validationErr *domain.ValidationError
	var sessionErr *domain.SessionStoreError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &sessionErr):
		return http.StatusServiceUnavailable, "Your session is temporarily unavailable. Please try again."
	default:
		return http.StatusBadGateway, "Search is temporarily unavailable. Please try again."
	}
}

func (h *Handler) renderError(c echo.Context, err error) error {
	status, message := errorStatus(err)
	logger.FromContext(c.Request().Context()).Warn("request failed",
		"status", status,
		"error", err,
	)
	return h.render(c, status, "error", errorView{Status: status, Message: message})
}

func (h *Handler) jsonError(c echo.Context, err error) error {
	status, message := errorStatus(err)
	logger.FromContext(c.Request().Context()).Warn("api request failed",
		"status", status,
		"error", err,
	)
	return c.JSON(status, map[string]string{"error": message})
}
