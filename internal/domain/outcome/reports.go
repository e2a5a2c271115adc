package outcome

import "time"

// Read-only projection shapes served by the attainment query service. All
// attainment values here are scaled to 0-100 for display; the cache stores
// 0-1 fractions.

// BatchWithPloData is one batch that has at least one cache row.
type BatchWithPloData struct {
	BatchID      uint   `json:"batch_id" db:"batch_id"`
	BatchName    string `json:"batch_name" db:"batch_name"`
	BatchYear    int    `json:"batch_year" db:"batch_year"`
	ProgramName  string `json:"program_name" db:"program_name"`
	StudentCount int    `json:"student_count" db:"student_count"`
}

// ContributingCourseView resolves a contributing course code to its name.
type ContributingCourseView struct {
	CourseCode string  `json:"course_code"`
	CourseName string  `json:"course_name,omitempty"`
	Attainment float64 `json:"attainment"`
}

// PloAttainmentView is one cache row projected for display.
type PloAttainmentView struct {
	PloNumber           int                      `json:"plo_number"`
	PloTitle            string                   `json:"plo_title,omitempty"`
	PloDescription      string                   `json:"plo_description,omitempty"`
	AverageAttainment   float64                  `json:"average_attainment"`
	CourseCount         int                      `json:"course_count"`
	IsAchieved          bool                     `json:"is_achieved"`
	AchievementLevel    string                   `json:"achievement_level"`
	ContributingCourses []ContributingCourseView `json:"contributing_courses"`
	LastCalculated      time.Time                `json:"last_calculated"`
}

// OverallAchievement summarizes achieved PLOs over PLOs with data.
type OverallAchievement struct {
	TotalPlos             int     `json:"total_plos"`
	AchievedPlos          int     `json:"achieved_plos"`
	AchievementPercentage float64 `json:"achievement_percentage"`
}

// StudentBatchRow is one student inside a batch attainment report.
type StudentBatchRow struct {
	StudentID          uint                `json:"student_id"`
	RollNo             string              `json:"roll_no"`
	StudentName        string              `json:"student_name"`
	PloAttainments     []PloAttainmentView `json:"plo_attainments"`
	OverallAchievement OverallAchievement  `json:"overall_achievement"`
}

// BatchRef identifies the batch a report belongs to.
type BatchRef struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Year        int    `json:"year"`
	ProgramName string `json:"program_name"`
}

// BatchAttainmentReport is the full batch-level report.
type BatchAttainmentReport struct {
	Batch    BatchRef          `json:"batch"`
	Students []StudentBatchRow `json:"students"`
}

// StudentRef identifies the student a report belongs to.
type StudentRef struct {
	ID        uint   `json:"id"`
	RollNo    string `json:"roll_no"`
	Name      string `json:"name"`
	BatchName string `json:"batch_name"`
}

// StudentSummary extends OverallAchievement with the not-achieved count and
// the mean attainment across PLOs with data.
type StudentSummary struct {
	TotalPlos         int     `json:"total_plos"`
	AchievedPlos      int     `json:"achieved_plos"`
	NotAchievedPlos   int     `json:"not_achieved_plos"`
	OverallPercentage float64 `json:"overall_percentage"`
}

// StudentAttainmentReport is the full per-student report.
type StudentAttainmentReport struct {
	Student        StudentRef          `json:"student"`
	PloAttainments []PloAttainmentView `json:"plo_attainments"`
	Summary        StudentSummary      `json:"summary"`
}

// BatchPloStatistic is one per-PLO aggregate across a batch.
type BatchPloStatistic struct {
	PloNumber     int     `json:"plo_number" db:"plo_number"`
	StudentCount  int     `json:"student_count" db:"student_count"`
	BatchAverage  float64 `json:"batch_average" db:"batch_average"`
	MinAttainment float64 `json:"min_attainment" db:"min_attainment"`
	MaxAttainment float64 `json:"max_attainment" db:"max_attainment"`
	AchievedCount int     `json:"achieved_count" db:"achieved_count"`
}
