package database

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

// likeEscape is used instead of backslash so the same pattern works on
// sqlite and postgres regardless of string literal settings.
const likeEscape = "!"

// Columns maps document field paths to storage columns, e.g.
// "shippingInfor.phone" -> "shipping_phone". Only mapped fields can be
// filtered or sorted on.
type Columns map[string]string

func (c Columns) Resolve(field string) (string, error) {
	col, ok := c[field]
	if !ok || col == "" {
		return "", errors.Errorf("no column mapped for field %q", field)
	}
	return col, nil
}

// containsPattern builds a lower-cased LIKE pattern matching value anywhere,
// with wildcards in value taken literally.
func containsPattern(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('%')
	for _, r := range strings.ToLower(value) {
		switch r {
		case '!', '%', '_':
			b.WriteString(likeEscape)
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}

// firstMatchOrder is the ordering used to pick "the first" related document:
// oldest first, id as tiebreak.
func firstMatchOrder(columns Columns, idField string) []common.SortSpec {
	specs := make([]common.SortSpec, 0, 2)
	if _, ok := columns["createdAt"]; ok {
		specs = append(specs, common.SortSpec{Field: "createdAt", Direction: common.Ascending})
	}
	return append(specs, common.SortSpec{Field: idField, Direction: common.Ascending})
}
