package schema

import (
	"fmt"
	"slices"
	"strings"
)

// Drift is one difference between a declared and a live schema
type Drift struct {
	Table  string
	Object string // table, column, relation, index
	Name   string
	Detail string
}

func (d Drift) String() string {
	return fmt.Sprintf("%s %s.%s: %s", d.Object, d.Table, d.Name, d.Detail)
}

// Diff reports what the live schema lacks compared to the declared one.
// Extra live objects (auto-created FK indexes, unrelated tables) are ignored.
func Diff(declared, live *Schema) []Drift {
	var drifts []Drift

	for _, want := range declared.Tables {
		got := live.FindTable(want.Name)
		if got == nil {
			drifts = append(drifts, Drift{Table: want.Name, Object: "table", Name: want.Name, Detail: "missing"})
			continue
		}

		for _, col := range want.Columns {
			gotCol := got.FindColumn(col.Name)
			if gotCol == nil {
				drifts = append(drifts, Drift{Table: want.Name, Object: "column", Name: col.Name, Detail: "missing"})
				continue
			}
			if gotCol.Nullable != col.Nullable && !slices.Contains(want.PrimaryKey, col.Name) {
				drifts = append(drifts, Drift{
					Table: want.Name, Object: "column", Name: col.Name,
					Detail: fmt.Sprintf("nullable is %t, want %t", gotCol.Nullable, col.Nullable),
				})
			}
		}

		for _, rel := range want.Relations {
			gotRel := findRelation(got, rel.SourceColumn)
			if gotRel == nil || gotRel.TargetTable != rel.TargetTable {
				drifts = append(drifts, Drift{
					Table: want.Name, Object: "relation", Name: rel.SourceColumn,
					Detail: fmt.Sprintf("missing reference to %s.%s", rel.TargetTable, rel.TargetColumn),
				})
				continue
			}
			if gotRel.OnDelete != "" && !strings.EqualFold(gotRel.OnDelete, rel.OnDelete) {
				drifts = append(drifts, Drift{
					Table: want.Name, Object: "relation", Name: rel.SourceColumn,
					Detail: fmt.Sprintf("on delete is %s, want %s", gotRel.OnDelete, rel.OnDelete),
				})
			}
		}

		for _, idx := range want.Indexes {
			if !hasIndex(got, idx) {
				drifts = append(drifts, Drift{
					Table: want.Name, Object: "index", Name: idx.Name,
					Detail: fmt.Sprintf("missing index on (%s)", strings.Join(idx.Columns, ", ")),
				})
			}
		}
	}

	return drifts
}

func findRelation(t *Table, column string) *Relation {
	for i := range t.Relations {
		if t.Relations[i].SourceColumn == column {
			return &t.Relations[i]
		}
	}
	return nil
}

// hasIndex matches by column list so renamed indexes still count
func hasIndex(t *Table, want Index) bool {
	for _, idx := range t.Indexes {
		if slices.Equal(idx.Columns, want.Columns) && (idx.IsUnique || !want.IsUnique) {
			return true
		}
	}
	return false
}
