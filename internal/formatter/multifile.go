package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tordrt/schoolschema/internal/schema"
)

const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// MultiFileFormatter writes an overview plus one file per table
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the schema to multiple files
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	if err := os.MkdirAll(f.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range s.Tables {
		if err := f.writeTableFile(table, s); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}
	return nil
}

func (f *MultiFileFormatter) writeOverview(s *schema.Schema) error {
	ext := f.extension()

	tables := slices.Clone(s.Tables)
	slices.SortFunc(tables, func(a, b schema.Table) int { return strings.Compare(a.Name, b.Name) })

	var b strings.Builder
	if f.OutputFormat == FormatMarkdown {
		fmt.Fprintf(&b, "# Schema Overview\n\nEach table has a corresponding file: `<table_name>%s`\n\n## Tables\n\n", ext)
	} else {
		fmt.Fprintf(&b, "SCHEMA OVERVIEW\nEach table has a file: <table_name>%s\n\n", ext)
	}

	for _, table := range tables {
		if f.OutputFormat == FormatMarkdown {
			fmt.Fprintf(&b, "- **%s**", table.Name)
		} else {
			b.WriteString(table.Name)
		}
		if len(table.Relations) > 0 {
			var targets []string
			for _, rel := range table.Relations {
				if !slices.Contains(targets, rel.TargetTable) {
					targets = append(targets, rel.TargetTable)
				}
			}
			fmt.Fprintf(&b, " (references: %s)", strings.Join(targets, ", "))
		}
		b.WriteString("\n")
	}

	return os.WriteFile(filepath.Join(f.OutputDir, "_overview"+ext), []byte(b.String()), 0o644)
}

func (f *MultiFileFormatter) writeTableFile(table schema.Table, s *schema.Schema) error {
	file, err := os.Create(filepath.Join(f.OutputDir, table.Name+f.extension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		return NewMarkdownFormatter(file).FormatTable(table, s)
	}
	return NewTextFormatter(file).FormatTable(table, s)
}

func (f *MultiFileFormatter) extension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
