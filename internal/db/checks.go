package db

import (
	"regexp"
	"strings"

	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/schema"
)

var quotedLiteral = regexp.MustCompile(`'((?:[^']|'')*)'`)

// attachChecks sets CheckConstraint and EnumValues on the columns whose
// named CHECK constraint appears in checks
func attachChecks(table string, columns []schema.Column, checks map[string]string) {
	for i := range columns {
		clause, ok := checks[ddl.CheckName(table, columns[i].Name)]
		if !ok {
			continue
		}
		clause = strings.TrimSpace(clause)
		columns[i].CheckConstraint = &clause
		if len(columns[i].EnumValues) == 0 {
			columns[i].EnumValues = splitQuotedList(clause)
		}
	}
}

// splitQuotedList returns every single-quoted literal in s, in order
func splitQuotedList(s string) []string {
	var values []string
	for _, m := range quotedLiteral.FindAllStringSubmatch(s, -1) {
		values = append(values, strings.ReplaceAll(m[1], "''", "'"))
	}
	return values
}
