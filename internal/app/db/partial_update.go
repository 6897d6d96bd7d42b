package db

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PartialUpdate builds the SET clause of an UPDATE from the fields present in data.
//
// columns maps a field name to its column; unmapped fields are used as column names
// verbatim. Fields are emitted in sorted order so the same input always produces the
// same statement, and every column is quoted. Placeholders start at $1; the caller
// appends its WHERE arguments after the returned values.
func PartialUpdate(data map[string]any, columns map[string]string) (string, []any, error) {
	if len(data) == 0 {
		return "", nil, ErrNoUpdateData
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	values := make([]any, 0, len(keys))

	for i, k := range keys {
		col, ok := columns[k]
		if !ok {
			col = k
		}
		sets = append(sets, fmt.Sprintf("%s=$%d", pgx.Identifier{col}.Sanitize(), i+1))
		values = append(values, data[k])
	}

	return strings.Join(sets, ", "), values, nil
}
