package utils

import (
	"fmt"

	"github.com/kataras/iris/v12"
)

const (
	defaultPerPage = 25
	maxPerPage     = 100
)

type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// PageParams reads page and per_page from the query string, falling back to
// page 1 of 25 on missing or out of range values.
func PageParams(ctx iris.Context) (page, perPage int) {
	page = ctx.URLParamIntDefault("page", 1)
	perPage = ctx.URLParamIntDefault("per_page", defaultPerPage)
	if perPage <= 0 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	return page, perPage
}

// JSONPage writes one page of a listing with prev/next links relative to the
// request path.
func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	pages := (total + int64(perPage) - 1) / int64(perPage)
	links := iris.Map{}
	if page > 1 {
		links["prev"] = pageLink(ctx, page-1, perPage)
	}
	if int64(page) < pages {
		links["next"] = pageLink(ctx, page+1, perPage)
	}
	ctx.JSON(iris.Map{
		"data":  data,
		"meta":  PageMeta{Page: page, PerPage: perPage, Total: total, TotalPages: pages},
		"links": links,
	})
}

func pageLink(ctx iris.Context, page, perPage int) string {
	q := ctx.Request().URL.Query()
	q.Set("page", fmt.Sprint(page))
	q.Set("per_page", fmt.Sprint(perPage))
	return ctx.Path() + "?" + q.Encode()
}

// JSONError writes the {error, message} body shared with service errors.
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StopWithJSON(status, iris.Map{"error": code, "message": message})
}
