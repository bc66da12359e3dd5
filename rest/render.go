package rest

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"search-storefront/rangefilter"
	"search-storefront/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("storefront").Funcs(template.FuncMap{
	"num":       rangefilter.FormatValue,
	"percent":   formatPercent,
	"refineURL": refineURL,
	"pageURL":   pageURL,
	"inc":       func(n int) int { return n + 1 },
	"dec":       func(n int) int { return n - 1 },
}).ParseFS(templateFS, "templates/*.html"))

// pageView is the data every template receives.
type pageView struct {
	Query   string
	Results *usecase.SearchPage
	Price   usecase.PriceWidget
}

func newPageView(model *usecase.PageModel) pageView {
	return pageView{
		Query:   model.Session.Query,
		Results: model.Results,
		Price:   model.Price,
	}
}

type errorView struct {
	Status  int
	Message string
}

func (h *Handler) render(c echo.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func refineURL(attribute, value string) string {
	params := url.Values{}
	params.Set("refine["+attribute+"]", value)
	return "/search?" + params.Encode()
}

func pageURL(page int) string {
	return "/search?page=" + strconv.Itoa(page)
}
