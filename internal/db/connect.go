package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/schoolschema/internal/ddl"
	"github.com/tordrt/schoolschema/internal/schema"
)

// SchemaExtractor reads the live schema of a database
type SchemaExtractor interface {
	ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error)
}

// Conn is an open database together with its dialect and extractor
type Conn struct {
	Dialect   ddl.Dialect
	DB        *sql.DB
	Extractor SchemaExtractor
	closer    func() error
}

// Open connects to a database of the given type ("postgres", "mysql" or
// "sqlite"). schemaName applies to PostgreSQL and MySQL; empty selects
// "public" or the database named in the DSN.
func Open(ctx context.Context, dbType, connStr, schemaName string) (*Conn, error) {
	switch dbType {
	case ddl.PostgresName:
		client, err := NewPostgresClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if schemaName == "" {
			schemaName = "public"
		}
		return &Conn{
			Dialect:   ddl.Postgres{},
			DB:        client.GetDB(),
			Extractor: NewExtractor(client, schemaName),
			closer:    client.Close,
		}, nil

	case ddl.MySQLName:
		client, err := NewMySQLClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		if schemaName == "" {
			schemaName, err = ParseDatabaseName(connStr)
			if err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("failed to determine database name: %w", err)
			}
		}
		return &Conn{
			Dialect:   ddl.MySQL{},
			DB:        client.GetDB(),
			Extractor: NewMySQLExtractor(client, schemaName),
			closer:    client.Close,
		}, nil

	case ddl.SQLiteName:
		client, err := NewSQLiteClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return &Conn{
			Dialect:   ddl.SQLite{},
			DB:        client.GetDB(),
			Extractor: NewSQLiteExtractor(client),
			closer:    client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// Close releases the connection
func (c *Conn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
