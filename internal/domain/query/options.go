// Package query turns untrusted list-endpoint query strings into an explicit
// options structure. Every field defaults safely: unrecognized or malformed
// input means "no filter", "ascending", or "unbounded", never an error.
// Ownership is not part of these options; repositories bind the acting
// account themselves so a call site cannot forget it.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Options are the three independent list parameters of a collection read.
type Options struct {
	// Completed is the optional equality filter; nil means no filter.
	Completed *bool
	// SortField is passed through opaquely; the storage layer decides which
	// fields are sortable. Empty means the storage layer's default order.
	SortField string
	SortDesc  bool
	// Limit and Skip are non-negative. Zero Limit means unbounded; zero Skip
	// means start at the beginning.
	Limit int
	Skip  int
}

// Parse builds Options from raw query values.
func Parse(values url.Values) Options {
	var opts Options

	switch values.Get("completed") {
	case "true":
		v := true
		opts.Completed = &v
	case "false":
		v := false
		opts.Completed = &v
	}

	if sortBy := values.Get("sortBy"); sortBy != "" {
		field, dir, _ := strings.Cut(sortBy, ":")
		if field != "" {
			opts.SortField = field
			opts.SortDesc = dir == "desc"
		}
	}

	opts.Limit = nonNegativeInt(values.Get("limit"))
	opts.Skip = nonNegativeInt(values.Get("skip"))

	return opts
}

func nonNegativeInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
