package migrations

import (
	"fmt"

	"github.com/tordrt/schoolschema/dberr"
)

// Validate checks that versions strictly increase, table names are unique
// and every foreign key references a table created earlier in list.
// A self-reference within the same table is allowed.
func Validate(list []Migration) error {
	created := make(map[string]bool)
	var last int64

	for _, mig := range list {
		if mig.Version <= last {
			return fmt.Errorf("migration %d_%s: version must be greater than %d", mig.Version, mig.Name, last)
		}
		last = mig.Version

		for _, t := range mig.Tables {
			if created[t.Name] {
				return &dberr.SchemaConflict{Object: "table", Name: t.Name}
			}
			for _, col := range t.References() {
				if col.Ref.Table == t.Name || created[col.Ref.Table] {
					continue
				}
				return &dberr.DependencyOrderError{
					Migration:  mig.Name,
					Table:      t.Name,
					Column:     col.Name,
					References: col.Ref.Table,
				}
			}
			created[t.Name] = true
		}
	}
	return nil
}
