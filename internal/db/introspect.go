package db

import (
	"context"
	"fmt"

	"github.com/tordrt/schoolschema/internal/schema"
)

// tableReader is the per-dialect half of schema extraction
type tableReader interface {
	tableNames(ctx context.Context) ([]string, error)
	columns(ctx context.Context, table string) ([]schema.Column, error)
	primaryKey(ctx context.Context, table string) ([]string, error)
	relations(ctx context.Context, table string) ([]schema.Relation, error)
	indexes(ctx context.Context, table string) ([]schema.Index, error)
}

// extract reads the requested tables, or every table when none are requested
func extract(ctx context.Context, r tableReader, requested []string) (*schema.Schema, error) {
	names := requested
	if len(names) == 0 {
		var err error
		names, err = r.tableNames(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get table names: %w", err)
		}
	}

	s := &schema.Schema{}
	for _, name := range names {
		table, err := extractTable(ctx, r, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, *table)
	}
	return s, nil
}

func extractTable(ctx context.Context, r tableReader, name string) (*schema.Table, error) {
	table := &schema.Table{Name: name}
	var err error

	if table.Columns, err = r.columns(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if table.PrimaryKey, err = r.primaryKey(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	if table.Relations, err = r.relations(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	if table.Indexes, err = r.indexes(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	return table, nil
}
