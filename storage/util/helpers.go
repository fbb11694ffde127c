package util

import "fmt"

// DeriveTableName builds a table name from an optional prefix. A nil prefix
// means "ingest"; an empty prefix yields the bare table name.
func DeriveTableName(prefix *string, table string) string {
	p := "ingest"
	if prefix != nil {
		p = *prefix
	}

	if p == "" {
		return table
	}

	return fmt.Sprintf("%s_%s", p, table)
}
