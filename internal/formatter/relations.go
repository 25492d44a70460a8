package formatter

import (
	"fmt"
	"strings"

	"github.com/tordrt/schoolschema/internal/schema"
)

// IncomingRelation is a foreign key of another table pointing at this one
type IncomingRelation struct {
	schema.Relation
	SourceTable string
}

// incomingRelations finds all foreign keys pointing to tableName
func incomingRelations(tableName string, s *schema.Schema) []IncomingRelation {
	if s == nil {
		return nil
	}
	var incoming []IncomingRelation
	for _, table := range s.Tables {
		for _, rel := range table.Relations {
			if rel.TargetTable == tableName {
				incoming = append(incoming, IncomingRelation{Relation: rel, SourceTable: table.Name})
			}
		}
	}
	return incoming
}

// onDelete renders the delete rule, omitting the default
func onDelete(rel schema.Relation) string {
	switch strings.ToUpper(rel.OnDelete) {
	case "", "NO ACTION", "RESTRICT":
		return ""
	default:
		return ", on delete " + strings.ToLower(rel.OnDelete)
	}
}

func typeWithValues(col schema.Column) string {
	if len(col.EnumValues) == 0 {
		return col.Type
	}
	return fmt.Sprintf("%s (%s)", col.Type, strings.Join(col.EnumValues, "|"))
}
