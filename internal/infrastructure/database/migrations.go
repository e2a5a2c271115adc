package database

import (
	"fmt"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	"obetrack/pkg/logger"

	"gorm.io/gorm"
)

// RunMigrations creates the schema and the generated achievement columns on
// the attainment cache. is_achieved and achievement_level are derived by the
// database from average_attainment; the application never writes them.
func RunMigrations(db *gorm.DB) error {
	logger.Info("Running schema migrations")

	err := db.AutoMigrate(
		&academic.Program{},
		&academic.Batch{},
		&academic.Semester{},
		&academic.Course{},
		&academic.User{},
		&academic.FacultyProfile{},
		&academic.CourseOffering{},
		&academic.PreRegisteredStudent{},
		&academic.ActivityLog{},
		&outcome.Clo{},
		&outcome.Plo{},
		&outcome.CloPloMapping{},
		&outcome.CourseStudentPloResult{},
		&outcome.StudentProgramPloCache{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	if err := createGeneratedColumns(db); err != nil {
		return fmt.Errorf("generated column migration failed: %w", err)
	}

	logger.Info("Schema migrations completed")
	return nil
}

func createGeneratedColumns(db *gorm.DB) error {
	for _, stmt := range generatedColumnStatements() {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// generatedColumnStatements builds the cache DDL from the model's table name
// so the migration cannot drift from the table AutoMigrate creates.
func generatedColumnStatements() []string {
	table := outcome.StudentProgramPloCache{}.TableName()
	return []string{
		fmt.Sprintf(`ALTER TABLE %s DROP COLUMN IF EXISTS is_achieved`, table),
		fmt.Sprintf(`ALTER TABLE %s
			ADD COLUMN is_achieved BOOLEAN
			GENERATED ALWAYS AS (average_attainment >= 0.5) STORED`, table),
		fmt.Sprintf(`ALTER TABLE %s DROP COLUMN IF EXISTS achievement_level`, table),
		fmt.Sprintf(`ALTER TABLE %s
			ADD COLUMN achievement_level VARCHAR(20)
			GENERATED ALWAYS AS (
				CASE
					WHEN average_attainment >= 0.8 THEN 'High'
					WHEN average_attainment >= 0.7 THEN 'Medium'
					ELSE 'Low'
				END
			) STORED`, table),
	}
}
