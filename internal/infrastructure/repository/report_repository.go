package repository

import (
	"context"
	"strconv"
	"strings"

	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// ReportRepository serves the read-only report projections with raw SQL over
// sqlx; aggregate shapes with joins and window-style grouping are awkward to
// express through the ORM.
type ReportRepository struct {
	db  *gorm.DB
	sdb *sqlx.DB
}

// NewReportRepository creates a new report projection repository
func NewReportRepository(db *gorm.DB, sdb *sqlx.DB) interfaces.ReportRepository {
	return &ReportRepository{
		db:  db,
		sdb: sdb,
	}
}

const batchesWithPloDataQuery = `
SELECT b.id                         AS batch_id,
       b.name                       AS batch_name,
       b.year                       AS batch_year,
       COALESCE(p.name, '')         AS program_name,
       COUNT(DISTINCT c.roll_no)    AS student_count
FROM student_program_plo_caches c
JOIN batches b ON b.id = c.batch_id
LEFT JOIN programs p ON p.id = b.program_id
GROUP BY b.id, b.name, b.year, p.name
ORDER BY b.year DESC, b.name ASC`

// BatchesWithPloData lists every batch with at least one attainment cache row.
func (r *ReportRepository) BatchesWithPloData(ctx context.Context) ([]*outcome.BatchWithPloData, error) {
	var batches []*outcome.BatchWithPloData
	if err := r.sdb.SelectContext(ctx, &batches, batchesWithPloDataQuery); err != nil {
		return nil, err
	}
	return batches, nil
}

const batchStatisticsQuery = `
SELECT plo_number,
       COUNT(*)                                                AS student_count,
       ROUND((AVG(average_attainment) * 100)::numeric, 2)      AS batch_average,
       ROUND((MIN(average_attainment) * 100)::numeric, 2)      AS min_attainment,
       ROUND((MAX(average_attainment) * 100)::numeric, 2)      AS max_attainment,
       COUNT(*) FILTER (WHERE is_achieved)                     AS achieved_count
FROM student_program_plo_caches
WHERE batch_id = $1
GROUP BY plo_number
ORDER BY plo_number ASC`

// BatchStatistics aggregates the cache per PLO across one batch, scaled to
// the 0-100 display range.
func (r *ReportRepository) BatchStatistics(ctx context.Context, batchID uint) ([]*outcome.BatchPloStatistic, error) {
	var stats []*outcome.BatchPloStatistic
	if err := r.sdb.SelectContext(ctx, &stats, batchStatisticsQuery, batchID); err != nil {
		return nil, err
	}
	return stats, nil
}

// PloTitles resolves the program's outcomes keyed by number, matching codes of
// the form PLO-<n>.
func (r *ReportRepository) PloTitles(ctx context.Context, programID uint) (map[int]*outcome.Plo, error) {
	var plos []*outcome.Plo
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Find(&plos).Error
	if err != nil {
		return nil, err
	}

	titles := make(map[int]*outcome.Plo, len(plos))
	for _, plo := range plos {
		numPart := strings.TrimPrefix(plo.Code, "PLO-")
		n, convErr := strconv.Atoi(numPart)
		if convErr != nil {
			continue
		}
		titles[n] = plo
	}
	return titles, nil
}
