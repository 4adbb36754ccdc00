package migrations

import (
	"fmt"
	"strings"
)

var dialect = "postgres"

// SetDialect tells the Go migrations which SQL flavour the runner uses.
func SetDialect(name string) {
	dialect = name
}

func isPostgres() bool {
	return dialect == "postgres"
}

// bind rewrites ? placeholders to $n for PostgreSQL.
func bind(query string) string {
	if !isPostgres() {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
