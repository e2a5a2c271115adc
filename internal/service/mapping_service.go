package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/apperror"
	"obetrack/pkg/logger"
	"obetrack/pkg/validator"
)

var _ serviceInterfaces.MappingService = (*MappingService)(nil)

// MappingService manages CLO-PLO mappings with replace semantics: a bulk
// request substitutes the full mapping set of the CLOs it names.
type MappingService struct {
	courseRepo  interfaces.CourseRepository
	cloRepo     interfaces.CloRepository
	ploRepo     interfaces.PloRepository
	mappingRepo interfaces.MappingRepository
}

// NewMappingService creates a new CLO-PLO mapping service
func NewMappingService(
	courseRepo interfaces.CourseRepository,
	cloRepo interfaces.CloRepository,
	ploRepo interfaces.PloRepository,
	mappingRepo interfaces.MappingRepository,
) *MappingService {
	return &MappingService{
		courseRepo:  courseRepo,
		cloRepo:     cloRepo,
		ploRepo:     ploRepo,
		mappingRepo: mappingRepo,
	}
}

// BulkReplace validates the whole request before any write: every CLO must
// belong to the course, every PLO to the course's program, and every Bloom
// level to its domain's range. On success the flattened rows replace all
// prior mappings of the referenced CLOs in one transaction; on any failure
// nothing changes. Returns the number of rows written.
func (s *MappingService) BulkReplace(ctx context.Context, principal *academic.Principal, req *outcome.BulkCloPloMappingRequest) (int, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return 0, validationError(err)
	}

	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return 0, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return 0, apperror.NotFound("Course %d not found", req.CourseID)
	}

	cloIDs := make([]uint, 0, len(req.Mappings))
	for _, entry := range req.Mappings {
		cloIDs = append(cloIDs, entry.CloID)
	}
	clos, err := s.cloRepo.GetByIDs(ctx, cloIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load CLOs: %w", err)
	}
	cloByID := make(map[uint]*outcome.Clo, len(clos))
	for _, clo := range clos {
		cloByID[clo.ID] = clo
	}
	missingClos := missingIDs(cloIDs, func(id uint) bool { _, ok := cloByID[id]; return ok })
	if len(missingClos) > 0 {
		return 0, apperror.NotFound("CLO IDs not found: %s", joinIDs(missingClos))
	}
	for _, entry := range req.Mappings {
		clo := cloByID[entry.CloID]
		if clo.CourseID != course.ID {
			return 0, apperror.Invalid("CLO %d belongs to course %d, not course %d", clo.ID, clo.CourseID, course.ID)
		}
	}

	ploIDSet := make(map[uint]bool)
	ploIDs := make([]uint, 0)
	for _, entry := range req.Mappings {
		for _, item := range entry.PloMappings {
			if !ploIDSet[item.PloID] {
				ploIDSet[item.PloID] = true
				ploIDs = append(ploIDs, item.PloID)
			}
		}
	}
	plos, err := s.ploRepo.GetByIDs(ctx, ploIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load PLOs: %w", err)
	}
	ploByID := make(map[uint]*outcome.Plo, len(plos))
	for _, plo := range plos {
		ploByID[plo.ID] = plo
	}
	missingPlos := missingIDs(ploIDs, func(id uint) bool { _, ok := ploByID[id]; return ok })
	if len(missingPlos) > 0 {
		return 0, apperror.NotFound("PLO IDs not found: %s", joinIDs(missingPlos))
	}

	rows := make([]*outcome.CloPloMapping, 0)
	for _, entry := range req.Mappings {
		for _, item := range entry.PloMappings {
			plo := ploByID[item.PloID]
			if plo.ProgramID != course.ProgramID {
				return 0, apperror.Invalid("PLO %d belongs to program %d, not program %d of course %s",
					plo.ID, plo.ProgramID, course.ProgramID, course.CourseCode)
			}
			if err := outcome.ValidateBloomLevel(item.Domain, item.Level); err != nil {
				return 0, err
			}
			rows = append(rows, &outcome.CloPloMapping{
				CourseID:  course.ID,
				CloID:     entry.CloID,
				PloID:     item.PloID,
				Domain:    item.Domain,
				Level:     item.Level,
				Weightage: item.Weightage,
			})
		}
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"course_id":     course.ID,
		"clo_count":     len(cloIDs),
		"mapping_count": len(rows),
	})
	log := &academic.ActivityLog{
		UserID:   principal.ID,
		Action:   "replace_clo_plo_mappings",
		Entity:   "clo_plo_mapping",
		Metadata: metadata,
	}
	if err := s.mappingRepo.ReplaceForCourse(ctx, course.ID, cloIDs, rows, log); err != nil {
		return 0, fmt.Errorf("failed to replace mappings: %w", err)
	}

	logger.Info("Replaced mappings for course %s: %d CLOs, %d rows", course.CourseCode, len(cloIDs), len(rows))
	return len(rows), nil
}

func (s *MappingService) ListByCourse(ctx context.Context, courseID uint) ([]*outcome.CloPloMapping, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return nil, apperror.NotFound("Course %d not found", courseID)
	}
	return s.mappingRepo.GetByCourse(ctx, courseID)
}

func (s *MappingService) Delete(ctx context.Context, principal *academic.Principal, id uint) error {
	mapping, err := s.mappingRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load mapping: %w", err)
	}
	if mapping == nil {
		return apperror.NotFound("Mapping %d not found", id)
	}

	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "delete_clo_plo_mapping",
		Entity: "clo_plo_mapping",
	}
	return s.mappingRepo.Delete(ctx, id, log)
}

func (s *MappingService) DeleteAllForCourse(ctx context.Context, principal *academic.Principal, courseID uint) (int64, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return 0, apperror.NotFound("Course %d not found", courseID)
	}

	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "delete_course_mappings",
		Entity: "clo_plo_mapping",
	}
	return s.mappingRepo.DeleteAllForCourse(ctx, courseID, log)
}

// missingIDs returns the distinct ids, in first-seen order, for which found
// reports false.
func missingIDs(ids []uint, found func(uint) bool) []uint {
	seen := make(map[uint]bool, len(ids))
	missing := make([]uint, 0)
	for _, id := range ids {
		if seen[id] || found(id) {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	return missing
}

func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ", ")
}
