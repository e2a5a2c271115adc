package database

import (
	"strings"
	"testing"

	"obetrack/internal/domain/outcome"

	"gorm.io/gorm/schema"
)

func TestCacheTableNameMatchesGormPluralization(t *testing.T) {
	want := (schema.NamingStrategy{}).TableName("StudentProgramPloCache")
	got := outcome.StudentProgramPloCache{}.TableName()
	if got != want {
		t.Errorf("Expected table name '%s', got '%s'", want, got)
	}
}

func TestGeneratedColumnStatementsTargetCacheTable(t *testing.T) {
	table := outcome.StudentProgramPloCache{}.TableName()
	statements := generatedColumnStatements()
	if len(statements) != 4 {
		t.Fatalf("Expected 4 statements, got %d", len(statements))
	}
	for i, stmt := range statements {
		if !strings.Contains(stmt, "ALTER TABLE "+table) {
			t.Errorf("Statement %d does not target table '%s': %s", i, table, stmt)
		}
	}
}
