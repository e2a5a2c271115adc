package outcome

import (
	"time"

	"obetrack/internal/domain/academic"
	"obetrack/pkg/apperror"

	"gorm.io/datatypes"
)

// PloCount is the fixed number of program learning outcomes tracked per
// student per course offering.
const PloCount = 12

// Achievement thresholds on the 0-1 attainment scale.
const (
	AchievedThreshold = 0.5
	MediumThreshold   = 0.7
	HighThreshold     = 0.8
)

// Clo is a course learning outcome, unique per (course_id, clo_number).
type Clo struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CourseID    uint      `json:"course_id" gorm:"not null;uniqueIndex:uniq_course_clo"`
	CloNumber   int       `json:"clo_number" gorm:"not null;uniqueIndex:uniq_course_clo"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Course *academic.Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// Plo is a program learning outcome, unique per (program_id, code).
type Plo struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProgramID   uint      `json:"program_id" gorm:"not null;uniqueIndex:uniq_program_plo"`
	Code        string    `json:"code" gorm:"size:50;not null;uniqueIndex:uniq_program_plo"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Program *academic.Program `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
}

// CloPloMapping is one flattened row per (course, clo, plo) triple carrying
// the Bloom's-taxonomy domain, level and weightage.
type CloPloMapping struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"not null;index"`
	CloID     uint      `json:"clo_id" gorm:"not null;index"`
	PloID     uint      `json:"plo_id" gorm:"not null;index"`
	Domain    string    `json:"domain" gorm:"size:1;not null"`
	Level     int       `json:"level" gorm:"not null"`
	Weightage float64   `json:"weightage" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Clo *Clo `json:"clo,omitempty" gorm:"foreignKey:CloID"`
	Plo *Plo `json:"plo,omitempty" gorm:"foreignKey:PloID"`
}

// bloomRange bounds the Bloom level per taxonomy domain.
type bloomRange struct {
	Min  int
	Max  int
	Name string
}

var bloomRanges = map[string]bloomRange{
	"C": {Min: 1, Max: 6, Name: "Cognitive"},
	"P": {Min: 1, Max: 7, Name: "Psychomotor"},
	"A": {Min: 1, Max: 5, Name: "Affective"},
}

// ValidateBloomLevel rejects levels outside the domain-specific range,
// naming the domain and the bounds so the caller can fix the row.
func ValidateBloomLevel(domain string, level int) error {
	r, ok := bloomRanges[domain]
	if !ok {
		return apperror.Invalid("Invalid domain: %s", domain)
	}
	if level < r.Min || level > r.Max {
		return apperror.Invalid("%s domain (%s) level must be between %d and %d, got %d",
			r.Name, domain, r.Min, r.Max, level)
	}
	return nil
}

// CourseStudentPloResult is one row per (course_offering, student) holding up
// to 12 nullable attainments as 0-1 fractions. Upserted by bulk upload, never
// deleted by the normal flow.
type CourseStudentPloResult struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	CourseOfferingID uint      `json:"course_offering_id" gorm:"not null;uniqueIndex:uniq_student_course_offering;index"`
	CourseID         uint      `json:"course_id" gorm:"not null;index"`
	BatchID          uint      `json:"batch_id" gorm:"not null;index"`
	SemesterID       uint      `json:"semester_id" gorm:"not null"`
	StudentID        uint      `json:"student_id" gorm:"not null;uniqueIndex:uniq_student_course_offering;index"`
	RollNo           string    `json:"roll_no" gorm:"size:50;not null;index"`
	StudentName      string    `json:"student_name" gorm:"size:255;not null"`
	Plo1Value        *float64  `json:"plo1_value"`
	Plo2Value        *float64  `json:"plo2_value"`
	Plo3Value        *float64  `json:"plo3_value"`
	Plo4Value        *float64  `json:"plo4_value"`
	Plo5Value        *float64  `json:"plo5_value"`
	Plo6Value        *float64  `json:"plo6_value"`
	Plo7Value        *float64  `json:"plo7_value"`
	Plo8Value        *float64  `json:"plo8_value"`
	Plo9Value        *float64  `json:"plo9_value"`
	Plo10Value       *float64  `json:"plo10_value"`
	Plo11Value       *float64  `json:"plo11_value"`
	Plo12Value       *float64  `json:"plo12_value"`
	UploadTimestamp  time.Time `json:"upload_timestamp" gorm:"autoCreateTime"`
	UploadedBy       uint      `json:"uploaded_by" gorm:"not null"`

	Course *academic.Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// PloValue returns the attainment for PLO n (1-12), or nil when absent.
func (r *CourseStudentPloResult) PloValue(n int) *float64 {
	switch n {
	case 1:
		return r.Plo1Value
	case 2:
		return r.Plo2Value
	case 3:
		return r.Plo3Value
	case 4:
		return r.Plo4Value
	case 5:
		return r.Plo5Value
	case 6:
		return r.Plo6Value
	case 7:
		return r.Plo7Value
	case 8:
		return r.Plo8Value
	case 9:
		return r.Plo9Value
	case 10:
		return r.Plo10Value
	case 11:
		return r.Plo11Value
	case 12:
		return r.Plo12Value
	}
	return nil
}

// SetPloValue stores the attainment for PLO n (1-12).
func (r *CourseStudentPloResult) SetPloValue(n int, v *float64) {
	switch n {
	case 1:
		r.Plo1Value = v
	case 2:
		r.Plo2Value = v
	case 3:
		r.Plo3Value = v
	case 4:
		r.Plo4Value = v
	case 5:
		r.Plo5Value = v
	case 6:
		r.Plo6Value = v
	case 7:
		r.Plo7Value = v
	case 8:
		r.Plo8Value = v
	case 9:
		r.Plo9Value = v
	case 10:
		r.Plo10Value = v
	case 11:
		r.Plo11Value = v
	case 12:
		r.Plo12Value = v
	}
}

// ContributingCourse is one entry of the contributing_courses JSON column.
type ContributingCourse struct {
	CourseCode string  `json:"course_code"`
	Attainment float64 `json:"attainment"`
}

// StudentProgramPloCache is the aggregation engine's materialized output, one
// row per (roll_no, plo_number). batch_id is stored but deliberately not part
// of the unique key: roll numbers are globally unique in this system.
// IsAchieved and AchievementLevel are database-generated columns; the write
// path must omit them, which the read-only gorm tags enforce.
type StudentProgramPloCache struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	RollNo              string         `json:"roll_no" gorm:"size:50;not null;uniqueIndex:uniq_rollno_plo;index:idx_rollno_batch"`
	BatchID             uint           `json:"batch_id" gorm:"not null;index:idx_rollno_batch;index:idx_batch_plo"`
	PloNumber           int            `json:"plo_number" gorm:"not null;uniqueIndex:uniq_rollno_plo;index:idx_batch_plo;check:plo_number BETWEEN 1 AND 12"`
	TotalAttainment     float64        `json:"total_attainment" gorm:"not null;default:0"`
	CourseCount         int            `json:"course_count" gorm:"not null;default:0"`
	AverageAttainment   float64        `json:"average_attainment" gorm:"not null;default:0"`
	IsAchieved          bool           `json:"is_achieved" gorm:"->"`
	AchievementLevel    string         `json:"achievement_level" gorm:"->"`
	ContributingCourses datatypes.JSON `json:"contributing_courses"`
	LastCalculated      time.Time      `json:"last_calculated"`
	CreatedAt           time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName pins the cache table name; the generated-column DDL and the raw
// report queries reference it directly.
func (StudentProgramPloCache) TableName() string {
	return "student_program_plo_caches"
}

// Achieved derives the achievement flag from the 0-1 average, matching the
// database-generated column.
func Achieved(average float64) bool {
	return average >= AchievedThreshold
}

// LevelFor derives the achievement level from the 0-1 average, matching the
// database-generated column.
func LevelFor(average float64) string {
	switch {
	case average >= HighThreshold:
		return "High"
	case average >= MediumThreshold:
		return "Medium"
	default:
		return "Low"
	}
}

// Request DTOs

// CreateCloRequest creates one CLO.
type CreateCloRequest struct {
	CourseID    uint   `json:"course_id" validate:"required,gt=0"`
	CloNumber   int    `json:"clo_number" validate:"required,gt=0"`
	Description string `json:"description" validate:"required"`
}

// UpdateCloRequest mutates CLO number and/or description.
type UpdateCloRequest struct {
	CloNumber   int    `json:"clo_number" validate:"omitempty,gt=0"`
	Description string `json:"description"`
}

// CreatePloRequest creates one PLO under a program.
type CreatePloRequest struct {
	ProgramID   uint   `json:"program_id" validate:"required,gt=0"`
	Code        string `json:"code" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// PloMappingItem is one PLO attachment inside a bulk mapping request.
type PloMappingItem struct {
	PloID     uint    `json:"plo_id" validate:"required,gt=0"`
	Domain    string  `json:"domain" validate:"required,oneof=C P A"`
	Level     int     `json:"level" validate:"required,gte=1,lte=7"`
	Weightage float64 `json:"weightage" validate:"gte=0,lte=1"`
}

// CloMappingEntry groups the PLO attachments of one CLO.
type CloMappingEntry struct {
	CloID       uint             `json:"clo_id" validate:"required,gt=0"`
	PloMappings []PloMappingItem `json:"plo_mappings" validate:"required,min=1,dive"`
}

// BulkCloPloMappingRequest replaces all mappings of the referenced CLOs under
// one course with the flattened set it carries.
type BulkCloPloMappingRequest struct {
	CourseID uint              `json:"course_id" validate:"required,gt=0"`
	Mappings []CloMappingEntry `json:"mappings" validate:"required,min=1,dive"`
}

// StudentPloRow is one upload row; values arrive on the 0-100 scale and are
// stored as 0-1 fractions.
type StudentPloRow struct {
	RollNo      string   `json:"roll_no" validate:"required"`
	StudentName string   `json:"student_name" validate:"required"`
	Plo1        *float64 `json:"plo1" validate:"omitempty,gte=0,lte=100"`
	Plo2        *float64 `json:"plo2" validate:"omitempty,gte=0,lte=100"`
	Plo3        *float64 `json:"plo3" validate:"omitempty,gte=0,lte=100"`
	Plo4        *float64 `json:"plo4" validate:"omitempty,gte=0,lte=100"`
	Plo5        *float64 `json:"plo5" validate:"omitempty,gte=0,lte=100"`
	Plo6        *float64 `json:"plo6" validate:"omitempty,gte=0,lte=100"`
	Plo7        *float64 `json:"plo7" validate:"omitempty,gte=0,lte=100"`
	Plo8        *float64 `json:"plo8" validate:"omitempty,gte=0,lte=100"`
	Plo9        *float64 `json:"plo9" validate:"omitempty,gte=0,lte=100"`
	Plo10       *float64 `json:"plo10" validate:"omitempty,gte=0,lte=100"`
	Plo11       *float64 `json:"plo11" validate:"omitempty,gte=0,lte=100"`
	Plo12       *float64 `json:"plo12" validate:"omitempty,gte=0,lte=100"`
}

// Plo returns the raw 0-100 upload value for PLO n, or nil when absent.
func (r *StudentPloRow) Plo(n int) *float64 {
	switch n {
	case 1:
		return r.Plo1
	case 2:
		return r.Plo2
	case 3:
		return r.Plo3
	case 4:
		return r.Plo4
	case 5:
		return r.Plo5
	case 6:
		return r.Plo6
	case 7:
		return r.Plo7
	case 8:
		return r.Plo8
	case 9:
		return r.Plo9
	case 10:
		return r.Plo10
	case 11:
		return r.Plo11
	case 12:
		return r.Plo12
	}
	return nil
}

// UploadCoursePloResultsRequest is the bulk result upload payload.
type UploadCoursePloResultsRequest struct {
	CourseOfferingID uint            `json:"course_offering_id" validate:"required,gt=0"`
	Students         []StudentPloRow `json:"students" validate:"required,min=1,dive"`
}

// UploadStats summarizes one bulk upload.
type UploadStats struct {
	TotalReceived         int      `json:"total_received"`
	SuccessfullyProcessed int      `json:"successfully_processed"`
	Inserted              int      `json:"inserted"`
	Updated               int      `json:"updated"`
	Warnings              []string `json:"warnings,omitempty"`
}

// UploadResult is the bulk upload response.
type UploadResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Stats   UploadStats `json:"stats"`
}
