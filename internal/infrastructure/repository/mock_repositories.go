package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
)

// In-memory repository implementations for testing. They mirror the GORM
// repositories' observable behavior, including the not-found (nil, nil)
// convention and the attainment cache's generated achievement columns.

// MockProgramRepository is an in-memory ProgramRepository
type MockProgramRepository struct {
	mu       sync.RWMutex
	programs map[uint]*academic.Program
	nextID   uint
}

func NewMockProgramRepository() *MockProgramRepository {
	return &MockProgramRepository{programs: make(map[uint]*academic.Program), nextID: 1}
}

func (r *MockProgramRepository) Create(_ context.Context, program *academic.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if program.ID == 0 {
		program.ID = r.nextID
		r.nextID++
	}
	r.programs[program.ID] = program
	return nil
}

func (r *MockProgramRepository) GetByID(_ context.Context, id uint) (*academic.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.programs[id], nil
}

func (r *MockProgramRepository) CountBatches(_ context.Context, _ uint) (int64, error) {
	return 0, nil
}

func (r *MockProgramRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.programs, id)
	return nil
}

// MockSemesterRepository is an in-memory SemesterRepository
type MockSemesterRepository struct {
	mu        sync.RWMutex
	semesters map[uint]*academic.Semester
	nextID    uint
}

func NewMockSemesterRepository() *MockSemesterRepository {
	return &MockSemesterRepository{semesters: make(map[uint]*academic.Semester), nextID: 1}
}

func (r *MockSemesterRepository) Add(semester *academic.Semester) *academic.Semester {
	r.mu.Lock()
	defer r.mu.Unlock()
	if semester.ID == 0 {
		semester.ID = r.nextID
		r.nextID++
	}
	r.semesters[semester.ID] = semester
	return semester
}

func (r *MockSemesterRepository) GetByID(_ context.Context, id uint) (*academic.Semester, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.semesters[id], nil
}

func (r *MockSemesterRepository) GetByBatch(_ context.Context, batchID uint) ([]*academic.Semester, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*academic.Semester
	for _, sem := range r.semesters {
		if sem.BatchID == batchID {
			out = append(out, sem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *MockSemesterRepository) GetByIDAndBatch(_ context.Context, id, batchID uint) (*academic.Semester, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sem := r.semesters[id]
	if sem == nil || sem.BatchID != batchID {
		return nil, nil
	}
	return sem, nil
}

// MockBatchRepository is an in-memory BatchRepository backed by a shared
// semester repository so lifecycle mutations stay visible to both.
type MockBatchRepository struct {
	mu      sync.RWMutex
	batches map[uint]*academic.Batch
	semRepo *MockSemesterRepository
	nextID  uint
	Logs    []*academic.ActivityLog
}

func NewMockBatchRepository(semRepo *MockSemesterRepository) *MockBatchRepository {
	return &MockBatchRepository{batches: make(map[uint]*academic.Batch), semRepo: semRepo, nextID: 1}
}

func (r *MockBatchRepository) Add(batch *academic.Batch) *academic.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	if batch.ID == 0 {
		batch.ID = r.nextID
		r.nextID++
	}
	r.batches[batch.ID] = batch
	return batch
}

func (r *MockBatchRepository) CreateWithSemesters(_ context.Context, batch *academic.Batch, semesters []*academic.Semester, log *academic.ActivityLog) error {
	r.mu.Lock()
	if batch.ID == 0 {
		batch.ID = r.nextID
		r.nextID++
	}
	r.batches[batch.ID] = batch
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	r.mu.Unlock()

	for _, sem := range semesters {
		sem.BatchID = batch.ID
		r.semRepo.Add(sem)
	}
	return nil
}

func (r *MockBatchRepository) GetByID(_ context.Context, id uint) (*academic.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.batches[id], nil
}

func (r *MockBatchRepository) GetByName(_ context.Context, name string) (*academic.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, batch := range r.batches {
		if batch.Name == name {
			return batch, nil
		}
	}
	return nil, nil
}

func (r *MockBatchRepository) List(_ context.Context, page, limit int) ([]*academic.Batch, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*academic.Batch
	for _, batch := range r.batches {
		out = append(out, batch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *MockBatchRepository) Update(_ context.Context, batch *academic.Batch, log *academic.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	return nil
}

func (r *MockBatchRepository) DeleteWithSemesters(_ context.Context, id uint, log *academic.ActivityLog) error {
	r.mu.Lock()
	delete(r.batches, id)
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	r.mu.Unlock()

	r.semRepo.mu.Lock()
	defer r.semRepo.mu.Unlock()
	for semID, sem := range r.semRepo.semesters {
		if sem.BatchID == id {
			delete(r.semRepo.semesters, semID)
		}
	}
	return nil
}

func (r *MockBatchRepository) AdvanceSemester(_ context.Context, batchID, currentID, nextID uint, newCurrent int, log *academic.ActivityLog) error {
	r.semRepo.mu.Lock()
	if sem := r.semRepo.semesters[currentID]; sem != nil {
		sem.IsActive = false
		sem.IsLocked = true
	}
	if next := r.semRepo.semesters[nextID]; nextID != 0 && next != nil {
		next.IsActive = true
	}
	r.semRepo.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if batch := r.batches[batchID]; batch != nil {
		batch.CurrentSemester = newCurrent
	}
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	return nil
}

func (r *MockBatchRepository) Graduate(_ context.Context, batchID, finalSemesterID uint, log *academic.ActivityLog) error {
	r.semRepo.mu.Lock()
	if sem := r.semRepo.semesters[finalSemesterID]; sem != nil {
		sem.IsActive = false
		sem.IsLocked = true
	}
	r.semRepo.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if batch := r.batches[batchID]; batch != nil {
		batch.Status = academic.BatchStatusGraduated
	}
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	return nil
}

// MockCourseRepository is an in-memory CourseRepository
type MockCourseRepository struct {
	mu      sync.RWMutex
	courses map[uint]*academic.Course
	nextID  uint
}

func NewMockCourseRepository() *MockCourseRepository {
	return &MockCourseRepository{courses: make(map[uint]*academic.Course), nextID: 1}
}

func (r *MockCourseRepository) Create(_ context.Context, course *academic.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if course.ID == 0 {
		course.ID = r.nextID
		r.nextID++
	}
	r.courses[course.ID] = course
	return nil
}

func (r *MockCourseRepository) GetByID(_ context.Context, id uint) (*academic.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.courses[id], nil
}

func (r *MockCourseRepository) GetByCodes(_ context.Context, codes []string) ([]*academic.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}
	var out []*academic.Course
	for _, course := range r.courses {
		if wanted[course.CourseCode] {
			out = append(out, course)
		}
	}
	return out, nil
}

// MockOfferingRepository is an in-memory OfferingRepository
type MockOfferingRepository struct {
	mu        sync.RWMutex
	offerings map[uint]*academic.CourseOffering
	nextID    uint
	Logs      []*academic.ActivityLog
}

func NewMockOfferingRepository() *MockOfferingRepository {
	return &MockOfferingRepository{offerings: make(map[uint]*academic.CourseOffering), nextID: 1}
}

func (r *MockOfferingRepository) Add(offering *academic.CourseOffering) *academic.CourseOffering {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offering.ID == 0 {
		offering.ID = r.nextID
		r.nextID++
	}
	r.offerings[offering.ID] = offering
	return offering
}

func (r *MockOfferingRepository) Create(_ context.Context, offering *academic.CourseOffering, log *academic.ActivityLog) error {
	r.Add(offering)
	r.mu.Lock()
	defer r.mu.Unlock()
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	return nil
}

func (r *MockOfferingRepository) GetByID(_ context.Context, id uint) (*academic.CourseOffering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.offerings[id], nil
}

func (r *MockOfferingRepository) GetByCourseAndSemester(_ context.Context, courseID, semesterID uint) (*academic.CourseOffering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, offering := range r.offerings {
		if offering.CourseID == courseID && offering.SemesterID == semesterID {
			return offering, nil
		}
	}
	return nil, nil
}

func (r *MockOfferingRepository) Update(_ context.Context, offering *academic.CourseOffering, log *academic.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offerings[offering.ID] = offering
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	return nil
}

func (r *MockOfferingRepository) Delete(_ context.Context, id uint, log *academic.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.offerings, id)
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	return nil
}

func (r *MockOfferingRepository) List(_ context.Context, query *academic.OfferingQuery) ([]*academic.CourseOffering, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*academic.CourseOffering
	for _, offering := range r.offerings {
		if query.SemesterID != 0 && offering.SemesterID != query.SemesterID {
			continue
		}
		if query.InstructorID != 0 && offering.InstructorID != query.InstructorID {
			continue
		}
		out = append(out, offering)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *MockOfferingRepository) ListByInstructor(_ context.Context, instructorID uint) ([]*academic.CourseOffering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*academic.CourseOffering
	for _, offering := range r.offerings {
		if offering.InstructorID == instructorID {
			out = append(out, offering)
		}
	}
	return out, nil
}

func (r *MockOfferingRepository) ListBySemester(_ context.Context, semesterID uint) ([]*academic.CourseOffering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*academic.CourseOffering
	for _, offering := range r.offerings {
		if offering.SemesterID == semesterID {
			out = append(out, offering)
		}
	}
	return out, nil
}

// MockFacultyRepository is an in-memory FacultyRepository
type MockFacultyRepository struct {
	mu       sync.RWMutex
	profiles map[uint]*academic.FacultyProfile
	nextID   uint
}

func NewMockFacultyRepository() *MockFacultyRepository {
	return &MockFacultyRepository{profiles: make(map[uint]*academic.FacultyProfile), nextID: 1}
}

func (r *MockFacultyRepository) Add(profile *academic.FacultyProfile) *academic.FacultyProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID == 0 {
		profile.ID = r.nextID
		r.nextID++
	}
	r.profiles[profile.ID] = profile
	return profile
}

func (r *MockFacultyRepository) GetByID(_ context.Context, id uint) (*academic.FacultyProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[id], nil
}

func (r *MockFacultyRepository) GetByUserID(_ context.Context, userID uint) (*academic.FacultyProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, profile := range r.profiles {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return nil, nil
}

func (r *MockFacultyRepository) Create(_ context.Context, profile *academic.FacultyProfile) error {
	r.Add(profile)
	return nil
}

// MockUserRepository is an in-memory UserRepository
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[uint]*academic.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*academic.User)}
}

func (r *MockUserRepository) Add(user *academic.User) *academic.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return user
}

func (r *MockUserRepository) GetByID(_ context.Context, id uint) (*academic.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[id], nil
}

// MockStudentRepository is an in-memory StudentRepository
type MockStudentRepository struct {
	mu       sync.RWMutex
	students map[uint]*academic.PreRegisteredStudent
	nextID   uint
}

func NewMockStudentRepository() *MockStudentRepository {
	return &MockStudentRepository{students: make(map[uint]*academic.PreRegisteredStudent), nextID: 1}
}

func (r *MockStudentRepository) Add(student *academic.PreRegisteredStudent) *academic.PreRegisteredStudent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if student.ID == 0 {
		student.ID = r.nextID
		r.nextID++
	}
	r.students[student.ID] = student
	return student
}

func (r *MockStudentRepository) CreateMany(_ context.Context, students []*academic.PreRegisteredStudent, _ *academic.ActivityLog) error {
	for _, student := range students {
		r.Add(student)
	}
	return nil
}

func (r *MockStudentRepository) GetByID(_ context.Context, id uint) (*academic.PreRegisteredStudent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.students[id], nil
}

func (r *MockStudentRepository) GetByRollNo(_ context.Context, rollNo string) (*academic.PreRegisteredStudent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(rollNo))
	for _, student := range r.students {
		if strings.ToLower(student.RollNo) == needle {
			return student, nil
		}
	}
	return nil, nil
}

func (r *MockStudentRepository) GetByBatch(_ context.Context, batchID uint) ([]*academic.PreRegisteredStudent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*academic.PreRegisteredStudent
	for _, student := range r.students {
		if student.BatchID == batchID {
			out = append(out, student)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RollNo < out[j].RollNo })
	return out, nil
}

func (r *MockStudentRepository) CountByBatch(_ context.Context, batchID uint) (int64, error) {
	students, _ := r.GetByBatch(context.Background(), batchID)
	return int64(len(students)), nil
}

// MockCloRepository is an in-memory CloRepository
type MockCloRepository struct {
	mu     sync.RWMutex
	clos   map[uint]*outcome.Clo
	nextID uint
}

func NewMockCloRepository() *MockCloRepository {
	return &MockCloRepository{clos: make(map[uint]*outcome.Clo), nextID: 1}
}

func (r *MockCloRepository) Add(clo *outcome.Clo) *outcome.Clo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if clo.ID == 0 {
		clo.ID = r.nextID
		r.nextID++
	}
	r.clos[clo.ID] = clo
	return clo
}

func (r *MockCloRepository) Create(_ context.Context, clo *outcome.Clo, _ *academic.ActivityLog) error {
	r.Add(clo)
	return nil
}

func (r *MockCloRepository) CreateMany(_ context.Context, clos []*outcome.Clo, _ *academic.ActivityLog) error {
	for _, clo := range clos {
		r.Add(clo)
	}
	return nil
}

func (r *MockCloRepository) GetByID(_ context.Context, id uint) (*outcome.Clo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clos[id], nil
}

func (r *MockCloRepository) GetByIDs(_ context.Context, ids []uint) ([]*outcome.Clo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*outcome.Clo
	for _, id := range ids {
		if clo, ok := r.clos[id]; ok {
			out = append(out, clo)
		}
	}
	return out, nil
}

func (r *MockCloRepository) GetByCourse(_ context.Context, courseID uint) ([]*outcome.Clo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*outcome.Clo
	for _, clo := range r.clos {
		if clo.CourseID == courseID {
			out = append(out, clo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CloNumber < out[j].CloNumber })
	return out, nil
}

func (r *MockCloRepository) GetByCourseAndNumber(_ context.Context, courseID uint, cloNumber int) (*outcome.Clo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, clo := range r.clos {
		if clo.CourseID == courseID && clo.CloNumber == cloNumber {
			return clo, nil
		}
	}
	return nil, nil
}

func (r *MockCloRepository) Update(_ context.Context, clo *outcome.Clo, _ *academic.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clos[clo.ID] = clo
	return nil
}

func (r *MockCloRepository) Delete(_ context.Context, id uint, _ *academic.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clos, id)
	return nil
}

// MockPloRepository is an in-memory PloRepository
type MockPloRepository struct {
	mu     sync.RWMutex
	plos   map[uint]*outcome.Plo
	nextID uint
}

func NewMockPloRepository() *MockPloRepository {
	return &MockPloRepository{plos: make(map[uint]*outcome.Plo), nextID: 1}
}

func (r *MockPloRepository) Add(plo *outcome.Plo) *outcome.Plo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if plo.ID == 0 {
		plo.ID = r.nextID
		r.nextID++
	}
	r.plos[plo.ID] = plo
	return plo
}

func (r *MockPloRepository) Create(_ context.Context, plo *outcome.Plo, _ *academic.ActivityLog) error {
	r.Add(plo)
	return nil
}

func (r *MockPloRepository) GetByID(_ context.Context, id uint) (*outcome.Plo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plos[id], nil
}

func (r *MockPloRepository) GetByIDs(_ context.Context, ids []uint) ([]*outcome.Plo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*outcome.Plo
	for _, id := range ids {
		if plo, ok := r.plos[id]; ok {
			out = append(out, plo)
		}
	}
	return out, nil
}

func (r *MockPloRepository) GetByProgram(_ context.Context, programID uint) ([]*outcome.Plo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*outcome.Plo
	for _, plo := range r.plos {
		if plo.ProgramID == programID {
			out = append(out, plo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MockPloRepository) GetByProgramAndCode(_ context.Context, programID uint, code string) (*outcome.Plo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, plo := range r.plos {
		if plo.ProgramID == programID && plo.Code == code {
			return plo, nil
		}
	}
	return nil, nil
}

// MockMappingRepository is an in-memory MappingRepository
type MockMappingRepository struct {
	mu       sync.RWMutex
	mappings map[uint]*outcome.CloPloMapping
	nextID   uint
}

func NewMockMappingRepository() *MockMappingRepository {
	return &MockMappingRepository{mappings: make(map[uint]*outcome.CloPloMapping), nextID: 1}
}

func (r *MockMappingRepository) Add(mapping *outcome.CloPloMapping) *outcome.CloPloMapping {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mapping.ID == 0 {
		mapping.ID = r.nextID
		r.nextID++
	}
	r.mappings[mapping.ID] = mapping
	return mapping
}

func (r *MockMappingRepository) ReplaceForCourse(_ context.Context, courseID uint, cloIDs []uint, rows []*outcome.CloPloMapping, _ *academic.ActivityLog) error {
	r.mu.Lock()
	replaced := make(map[uint]bool, len(cloIDs))
	for _, cloID := range cloIDs {
		replaced[cloID] = true
	}
	for id, mapping := range r.mappings {
		if mapping.CourseID == courseID && replaced[mapping.CloID] {
			delete(r.mappings, id)
		}
	}
	r.mu.Unlock()

	for _, row := range rows {
		r.Add(row)
	}
	return nil
}

func (r *MockMappingRepository) GetByID(_ context.Context, id uint) (*outcome.CloPloMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mappings[id], nil
}

func (r *MockMappingRepository) GetByCourse(_ context.Context, courseID uint) ([]*outcome.CloPloMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*outcome.CloPloMapping
	for _, mapping := range r.mappings {
		if mapping.CourseID == courseID {
			out = append(out, mapping)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MockMappingRepository) Delete(_ context.Context, id uint, _ *academic.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mappings, id)
	return nil
}

func (r *MockMappingRepository) DeleteAllForCourse(_ context.Context, courseID uint, _ *academic.ActivityLog) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, mapping := range r.mappings {
		if mapping.CourseID == courseID {
			delete(r.mappings, id)
			deleted++
		}
	}
	return deleted, nil
}

// MockResultRepository is an in-memory ResultRepository. Courses maps course
// IDs to course rows so reads can attach the relation the way the GORM
// repository preloads it.
type MockResultRepository struct {
	mu      sync.RWMutex
	results map[uint]*outcome.CourseStudentPloResult
	nextID  uint
	Courses map[uint]*academic.Course
	Logs    []*academic.ActivityLog
}

func NewMockResultRepository() *MockResultRepository {
	return &MockResultRepository{
		results: make(map[uint]*outcome.CourseStudentPloResult),
		nextID:  1,
		Courses: make(map[uint]*academic.Course),
	}
}

func (r *MockResultRepository) Add(result *outcome.CourseStudentPloResult) *outcome.CourseStudentPloResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result.ID == 0 {
		result.ID = r.nextID
		r.nextID++
	}
	r.results[result.ID] = result
	return result
}

// Len reports the number of stored result rows.
func (r *MockResultRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.results)
}

func (r *MockResultRepository) BulkUpsert(_ context.Context, records []*outcome.CourseStudentPloResult, _ int, log *academic.ActivityLog) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var inserted, updated int
	for _, record := range records {
		var prior *outcome.CourseStudentPloResult
		for _, existing := range r.results {
			if existing.CourseOfferingID == record.CourseOfferingID && existing.StudentID == record.StudentID {
				prior = existing
				break
			}
		}
		if prior != nil {
			record.ID = prior.ID
			record.UploadTimestamp = time.Now().UTC()
			r.results[record.ID] = record
			updated++
		} else {
			record.ID = r.nextID
			r.nextID++
			r.results[record.ID] = record
			inserted++
		}
	}
	if log != nil {
		r.Logs = append(r.Logs, log)
	}
	return inserted, updated, nil
}

func (r *MockResultRepository) GetByRollNoAndBatch(_ context.Context, rollNo string, batchID uint) ([]*outcome.CourseStudentPloResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(rollNo))
	var out []*outcome.CourseStudentPloResult
	for _, result := range r.results {
		if strings.ToLower(result.RollNo) == needle && result.BatchID == batchID {
			if result.Course == nil {
				result.Course = r.Courses[result.CourseID]
			}
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (r *MockResultRepository) DistinctRollNos(_ context.Context, batchID uint) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, result := range r.results {
		if result.BatchID == batchID && !seen[result.RollNo] {
			seen[result.RollNo] = true
			out = append(out, result.RollNo)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MockResultRepository) DeleteByOfferingAndStudent(_ context.Context, offeringID, studentID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, result := range r.results {
		if result.CourseOfferingID == offeringID && result.StudentID == studentID {
			delete(r.results, id)
		}
	}
	return nil
}

// MockPloCacheRepository is an in-memory PloCacheRepository. It fills in the
// achievement columns the database generates.
type MockPloCacheRepository struct {
	mu     sync.RWMutex
	rows   map[string]*outcome.StudentProgramPloCache
	nextID uint
}

func NewMockPloCacheRepository() *MockPloCacheRepository {
	return &MockPloCacheRepository{rows: make(map[string]*outcome.StudentProgramPloCache), nextID: 1}
}

func cacheKey(rollNo string, ploNumber int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(rollNo), ploNumber)
}

func (r *MockPloCacheRepository) ReplaceForStudent(_ context.Context, rollNo string, upserts []*outcome.StudentProgramPloCache, removePloNumbers []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range upserts {
		row.IsAchieved = outcome.Achieved(row.AverageAttainment)
		row.AchievementLevel = outcome.LevelFor(row.AverageAttainment)
		key := cacheKey(row.RollNo, row.PloNumber)
		if prior, ok := r.rows[key]; ok {
			row.ID = prior.ID
			row.CreatedAt = prior.CreatedAt
		} else {
			row.ID = r.nextID
			r.nextID++
		}
		r.rows[key] = row
	}
	for _, ploNumber := range removePloNumbers {
		delete(r.rows, cacheKey(rollNo, ploNumber))
	}
	return nil
}

func (r *MockPloCacheRepository) GetByRollNo(_ context.Context, rollNo string) ([]*outcome.StudentProgramPloCache, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(rollNo)
	var out []*outcome.StudentProgramPloCache
	for _, row := range r.rows {
		if strings.ToLower(row.RollNo) == needle {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PloNumber < out[j].PloNumber })
	return out, nil
}

func (r *MockPloCacheRepository) GetByRollNoAndBatch(_ context.Context, rollNo string, batchID uint) ([]*outcome.StudentProgramPloCache, error) {
	rows, _ := r.GetByRollNo(context.Background(), rollNo)
	var out []*outcome.StudentProgramPloCache
	for _, row := range rows {
		if row.BatchID == batchID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *MockPloCacheRepository) DistinctRollNos(_ context.Context, batchID uint) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, row := range r.rows {
		if row.BatchID == batchID && !seen[row.RollNo] {
			seen[row.RollNo] = true
			out = append(out, row.RollNo)
		}
	}
	sort.Strings(out)
	return out, nil
}
