package postgres

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// jsonColumn marshals a value for storage in a jsonb column.
func jsonColumn(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// scanJSON unmarshals a nullable jsonb column into v; NULL and empty columns
// leave v untouched.
func scanJSON(col sql.NullString, v any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), v)
}

// joinList stores a string slice as a comma-separated column value so SQL
// can expand it with string_to_array.
func joinList(vals []string) string {
	return strings.Join(vals, ",")
}

// splitList reverses joinList. An empty column yields nil.
func splitList(col string) []string {
	if strings.TrimSpace(col) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(col, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
