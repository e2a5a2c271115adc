package repository

import (
	"strings"
	"testing"

	"obetrack/internal/domain/outcome"
)

func TestReportQueriesTargetCacheTable(t *testing.T) {
	table := outcome.StudentProgramPloCache{}.TableName()
	for name, query := range map[string]string{
		"batchesWithPloDataQuery": batchesWithPloDataQuery,
		"batchStatisticsQuery":    batchStatisticsQuery,
	} {
		if !strings.Contains(query, table) {
			t.Errorf("%s does not reference table '%s'", name, table)
		}
	}
}
