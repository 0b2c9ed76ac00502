package search

import (
	"math"
	"strconv"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	// page and limit are capped so that Skip cannot overflow
	maxPageValue = math.MaxInt32
)

// PageRequest is the validated page and limit of a request. Both are at least 1.
type PageRequest struct {
	Page  int
	Limit int
}

// ParsePage reads page and limit. Non-numeric values fall back to the
// defaults and values are clamped to [1, math.MaxInt32]. maxLimit caps limit
// when positive.
func ParsePage(params Params, maxLimit int) PageRequest {
	page := parsePositive(params, "page", DefaultPage)
	limit := parsePositive(params, "limit", DefaultLimit)
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Skip() int {
	return (p.Page - 1) * p.Limit
}

func (p PageRequest) Window() common.Window {
	return common.Window{Offset: p.Skip(), Limit: p.Limit}
}

func parsePositive(params Params, key string, fallback int) int {
	raw, ok := params.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// "2.0" style numbers from loosely typed clients, and integers past int range
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fallback
		}
		switch {
		case f < 1:
			return 1
		case f > maxPageValue:
			return maxPageValue
		}
		n = int(f)
	}
	switch {
	case n < 1:
		return 1
	case n > maxPageValue:
		return maxPageValue
	}
	return n
}
