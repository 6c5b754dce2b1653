package dto

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"insurai/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string.
// Malformed values are ignored. With withDefaults, a missing page or limit falls
// back to the package defaults. Limit is capped at constant.MaxValueLimit either way.
func (q *QueryParams) FromRequest(r *http.Request, withDefaults bool) {
	query := r.URL.Query()

	q.Page = positiveInt(query.Get(constant.RequestParamPage), q.Page)
	q.Limit = min(positiveInt(query.Get(constant.RequestParamLimit), q.Limit), constant.MaxValueLimit)

	if sortBy := strings.TrimSpace(query.Get(constant.RequestParamSortBy)); sortBy != constant.Empty {
		q.SortBy = sortBy
	}

	if dir := strings.ToUpper(query.Get(constant.RequestParamSortDir)); dir == SortDirAsc || dir == SortDirDesc {
		q.SortDir = dir
	}

	if !withDefaults {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

// Sorted keeps SortBy only when it names an allowed column and otherwise falls back
// to fallback in dir. The column is returned qualified with table so joins stay unambiguous.
func (q QueryParams) Sorted(table string, allowed []string, fallback, dir string) QueryParams {
	if !slices.Contains(allowed, q.SortBy) {
		q.SortBy = fallback
		q.SortDir = dir
	}

	if q.SortDir == constant.Empty {
		q.SortDir = dir
	}

	if table != constant.Empty {
		q.SortBy = table + "." + q.SortBy
	}

	return q
}

func positiveInt(raw string, current int) int {
	if raw == constant.Empty {
		return current
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return current
	}

	return n
}
