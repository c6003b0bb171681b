// Package blogquery turns the optional search parameters of the blog listing into a
// store-independent query and executes it against a Store.
package blogquery

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params are the raw listing parameters as received from the client. Zero values mean absent.
type Params struct {
	Title      string
	AuthorName string
	Category   string
	Tags       []string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// ParseParams reads Params from a query string. tags may be comma separated, repeated, or both.
// Numbers that fail to parse are left zero so Build applies the defaults.
func ParseParams(values url.Values) Params {
	p := Params{
		Title:      strings.TrimSpace(values.Get("title")),
		AuthorName: strings.TrimSpace(values.Get("authorName")),
		Category:   strings.TrimSpace(values.Get("category")),
		SortBy:     strings.TrimSpace(values.Get("sortBy")),
		SortOrder:  strings.TrimSpace(values.Get("sortOrder")),
	}
	p.Page, _ = strconv.Atoi(strings.TrimSpace(values.Get("page")))
	p.Limit, _ = strconv.Atoi(strings.TrimSpace(values.Get("limit")))

	for _, raw := range values["tags"] {
		p.Tags = append(p.Tags, strings.Split(raw, ",")...)
	}
	return p
}
