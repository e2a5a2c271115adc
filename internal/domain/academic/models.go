package academic

import (
	"time"

	"gorm.io/datatypes"
)

// Batch lifecycle statuses
const (
	BatchStatusActive    = "Active"
	BatchStatusGraduated = "Graduated"
	BatchStatusInactive  = "Inactive"
)

// Principal roles supplied by the identity service
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleFaculty    = "Faculty"
	RoleStudent    = "Student"
)

// SemestersPerBatch is fixed: every batch gets exactly 8 semesters at creation.
const SemestersPerBatch = 8

// Principal is the authenticated caller as supplied by the identity
// collaborator. The core only uses ID for attribution and Role for the
// uploader-profile bootstrap.
type Principal struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

// Program represents an academic program
type Program struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Code       string    `json:"code" gorm:"size:50;unique;not null"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	Department string    `json:"department" gorm:"size:255"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Batch represents a student cohort tied to a program
type Batch struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"size:100;unique;not null"`
	Year               int       `json:"year" gorm:"not null"`
	ProgramID          *uint     `json:"program_id"`
	CurrentSemester    int       `json:"current_semester" gorm:"not null;default:1"`
	SemesterStartDay   int       `json:"semester_start_day" gorm:"not null"`
	SemesterStartMonth int       `json:"semester_start_month" gorm:"not null"`
	SemesterEndDay     int       `json:"semester_end_day" gorm:"not null"`
	SemesterEndMonth   int       `json:"semester_end_month" gorm:"not null"`
	Status             string    `json:"status" gorm:"size:20;not null;default:Active"`
	CreatedBy          uint      `json:"created_by"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Program   *Program   `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
	Semesters []Semester `json:"semesters,omitempty" gorm:"foreignKey:BatchID"`
}

// Semester belongs to a batch; at most one is active per batch, and a locked
// semester rejects any course offering or result mutation under it.
type Semester struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BatchID   uint      `json:"batch_id" gorm:"not null;index"`
	Number    int       `json:"number" gorm:"not null;check:number >= 1 AND number <= 8"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:false"`
	IsLocked  bool      `json:"is_locked" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Batch *Batch `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

// Course belongs to a program
type Course struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ProgramID      uint      `json:"program_id" gorm:"not null;index"`
	CourseCode     string    `json:"course_code" gorm:"size:50;unique;not null"`
	CourseName     string    `json:"course_name" gorm:"size:255;not null"`
	CreditHours    int       `json:"credit_hours" gorm:"not null"`
	SemesterNumber *int      `json:"semester_number"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Program *Program `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
}

// User is the identity collaborator's account record; the core reads it only
// to check the instructor role and to denormalize names.
type User struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:255;not null"`
	Email string `json:"email" gorm:"size:255;unique;not null"`
	Role  string `json:"role" gorm:"size:50;not null"`
}

// FacultyProfile credits a principal as a result uploader or instructor.
// Admin principals without one get a profile provisioned lazily on upload.
type FacultyProfile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	Designation string    `json:"designation" gorm:"size:100"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// CourseOffering binds one course to one semester with one instructor.
// Unique on (course_id, semester_id); the anchor for all outcome results.
type CourseOffering struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CourseID     uint      `json:"course_id" gorm:"not null;uniqueIndex:uniq_course_semester"`
	SemesterID   uint      `json:"semester_id" gorm:"not null;uniqueIndex:uniq_course_semester"`
	InstructorID uint      `json:"instructor_id" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Course     *Course         `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Semester   *Semester       `json:"semester,omitempty" gorm:"foreignKey:SemesterID"`
	Instructor *FacultyProfile `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
}

// PreRegisteredStudent is the canonical student identity for the attainment
// pipeline: roll_no is globally unique and attainment is tracked against it
// whether or not the student has activated an account.
type PreRegisteredStudent struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	RollNo           string    `json:"roll_no" gorm:"size:50;unique;not null"`
	StudentName      string    `json:"student_name" gorm:"size:255;not null"`
	BatchID          uint      `json:"batch_id" gorm:"not null;index"`
	IsRegistered     bool      `json:"is_registered" gorm:"not null;default:false"`
	RegisteredUserID *uint     `json:"registered_user_id"`
	CreatedBy        uint      `json:"created_by"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`

	Batch *Batch `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

// ActivityLog is the audit trail row every mutating core operation appends
// inside the same transaction as the mutation it describes.
type ActivityLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Action    string         `json:"action" gorm:"size:100;not null"`
	Entity    string         `json:"entity" gorm:"size:100;not null"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// Request DTOs

// CreateBatchRequest creates a batch plus its 8 generated semesters.
type CreateBatchRequest struct {
	Name               string `json:"name" validate:"required"`
	Year               int    `json:"year" validate:"required,gte=2000"`
	ProgramID          *uint  `json:"program_id"`
	SemesterStartDay   int    `json:"semester_start_day" validate:"required,gte=1,lte=31"`
	SemesterStartMonth int    `json:"semester_start_month" validate:"required,gte=1,lte=12"`
	SemesterEndDay     int    `json:"semester_end_day" validate:"required,gte=1,lte=31"`
	SemesterEndMonth   int    `json:"semester_end_month" validate:"required,gte=1,lte=12"`
}

// UpdateBatchRequest mutates name/status only.
type UpdateBatchRequest struct {
	Name   string `json:"name"`
	Status string `json:"status" validate:"omitempty,oneof=Active Graduated Inactive"`
}

// CreateOfferingRequest creates a course offering.
type CreateOfferingRequest struct {
	CourseID     uint `json:"course_id" validate:"required,gt=0"`
	SemesterID   uint `json:"semester_id" validate:"required,gt=0"`
	InstructorID uint `json:"instructor_id" validate:"required,gt=0"`
}

// UpdateOfferingRequest reassigns the instructor; course and semester are
// immutable after creation.
type UpdateOfferingRequest struct {
	InstructorID uint `json:"instructor_id" validate:"required,gt=0"`
}

// OfferingQuery filters offering listings.
type OfferingQuery struct {
	SemesterID   uint `form:"semester_id"`
	InstructorID uint `form:"instructor_id"`
	BatchID      uint `form:"batch_id"`
	Page         int  `form:"page"`
	Limit        int  `form:"limit"`
}

// OfferingResponse is the denormalized flat shape every offering read returns.
type OfferingResponse struct {
	ID              uint      `json:"id"`
	CourseID        uint      `json:"course_id"`
	CourseCode      string    `json:"course_code"`
	CourseTitle     string    `json:"course_title"`
	SemesterID      uint      `json:"semester_id"`
	SemesterNumber  int       `json:"semester_number"`
	BatchID         uint      `json:"batch_id"`
	BatchName       string    `json:"batch_name"`
	InstructorID    uint      `json:"instructor_id"`
	InstructorName  string    `json:"instructor_name"`
	InstructorEmail string    `json:"instructor_email"`
	CreatedAt       time.Time `json:"created_at"`
}

// PreRegisterStudentsRequest bulk pre-seeds roll numbers into a batch.
type PreRegisterStudentsRequest struct {
	BatchID  uint                      `json:"batch_id" validate:"required,gt=0"`
	Students []PreRegisterStudentEntry `json:"students" validate:"required,min=1,dive"`
}

// PreRegisterStudentEntry is one roster row.
type PreRegisterStudentEntry struct {
	RollNo      string `json:"roll_no" validate:"required"`
	StudentName string `json:"student_name" validate:"required"`
}
