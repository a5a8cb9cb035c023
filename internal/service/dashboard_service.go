package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hari13172/alumni-portal-api/internal/dto"
	"github.com/hari13172/alumni-portal-api/internal/models"
	"github.com/hari13172/alumni-portal-api/pkg/datefmt"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
	"github.com/hari13172/alumni-portal-api/pkg/export"
	"github.com/hari13172/alumni-portal-api/pkg/jobs"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type selfieLinker interface {
	SelfieURL(key string) string
}

// JobTypeSelfiePurge labels queued selfie deletions.
const JobTypeSelfiePurge = "selfie.purge"

// AuditMeta carries request attribution for audit entries.
type AuditMeta struct {
	AdminID   string
	IPAddress string
	UserAgent string
}

// ExportFormat selects the roster export encoding.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
)

// ExportResult is a rendered roster export ready to stream.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// DashboardService backs the admin roster screens: filtered listing,
// facet options, stats, exports and profile removal.
type DashboardService struct {
	repo    alumniRepository
	audit   auditWriter
	selfies selfieRemover
	links   selfieLinker
	purge   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger

	jsonExporter *export.JSONExporter
	csvExporter  *export.CSVExporter
	pdfExporter  *export.PDFExporter
}

// NewDashboardService constructs the dashboard service. The purge queue
// and metrics are optional; without the queue selfie removal happens
// inline.
func NewDashboardService(repo alumniRepository, audit auditWriter, selfies selfieRemover, links selfieLinker, purge jobEnqueuer, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:         repo,
		audit:        audit,
		selfies:      selfies,
		links:        links,
		purge:        purge,
		metrics:      metrics,
		logger:       logger,
		jsonExporter: export.NewJSONExporter(),
		csvExporter:  export.NewCSVExporter(),
		pdfExporter:  export.NewPDFExporter(),
	}
}

// FilterRoster applies the dashboard predicates to a roster. The search
// term matches name or email case-insensitively as a substring; the
// department and year predicates are exact matches neutralised by the
// "All" sentinel or an empty value. Predicates combine with AND.
func FilterRoster(roster []models.Alumni, filter dto.RosterFilter) []models.Alumni {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	dept := strings.TrimSpace(filter.Department)
	year := strings.TrimSpace(filter.Year)

	out := make([]models.Alumni, 0, len(roster))
	for _, a := range roster {
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.Email), search) {
			continue
		}
		if dept != "" && dept != dto.FilterAll && string(a.Department) != dept {
			continue
		}
		if year != "" && year != dto.FilterAll && a.GraduationYear != year {
			continue
		}
		out = append(out, a)
	}
	return out
}

// BuildFacets derives the distinct filter options from the full roster.
// Both lists lead with the "All" sentinel; years are sorted newest first.
func BuildFacets(roster []models.Alumni) dto.FacetOptions {
	deptSet := make(map[string]struct{})
	yearSet := make(map[string]struct{})
	for _, a := range roster {
		deptSet[string(a.Department)] = struct{}{}
		yearSet[a.GraduationYear] = struct{}{}
	}

	departments := make([]string, 0, len(deptSet)+1)
	departments = append(departments, dto.FilterAll)
	for d := range deptSet {
		departments = append(departments, d)
	}
	sort.Strings(departments[1:])

	years := make([]string, 0, len(yearSet)+1)
	years = append(years, dto.FilterAll)
	tail := make([]string, 0, len(yearSet))
	for y := range yearSet {
		tail = append(tail, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(tail)))
	years = append(years, tail...)

	return dto.FacetOptions{Departments: departments, Years: years}
}

// loadRoster fetches the active roster with query timing recorded.
func (s *DashboardService) loadRoster(ctx context.Context) ([]models.Alumni, error) {
	start := time.Now()
	roster, err := s.repo.ListActive(ctx)
	s.metrics.ObserveDBQuery("alumni_list_active", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return roster, nil
}

// findAlumni fetches a single profile with query timing recorded.
func (s *DashboardService) findAlumni(ctx context.Context, id string) (*models.Alumni, error) {
	start := time.Now()
	alumni, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("alumni_find_by_id", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "alumni profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alumni")
	}
	return alumni, nil
}

// List returns the filtered roster shaped for the dashboard table.
func (s *DashboardService) List(ctx context.Context, filter dto.RosterFilter) ([]dto.AlumniRow, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	return s.toRows(FilterRoster(roster, filter)), nil
}

// Facets returns the filter options for the dashboard controls.
func (s *DashboardService) Facets(ctx context.Context) (*dto.FacetOptions, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	facets := BuildFacets(roster)
	return &facets, nil
}

// Get returns a single roster entry.
func (s *DashboardService) Get(ctx context.Context, id string) (*dto.AlumniRow, error) {
	alumni, err := s.findAlumni(ctx, id)
	if err != nil {
		return nil, err
	}
	row := s.toRow(*alumni)
	return &row, nil
}

// Delete soft-deletes a profile and schedules its selfie for purging.
// The audit write is best effort; a failure there never rolls back the
// delete.
func (s *DashboardService) Delete(ctx context.Context, id string, meta AuditMeta) error {
	alumni, err := s.findAlumni(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "alumni profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete alumni")
	}

	s.purgeSelfie(alumni.SelfieKey)
	s.recordAudit(ctx, meta, models.AuditActionAlumniDelete, "alumni", id, map[string]string{
		"name":  alumni.Name,
		"email": alumni.Email,
	})
	return nil
}

// Stats summarises the roster for the dashboard stat cards. The filtered
// count reflects the caller's current filter; the breakdowns always cover
// the full roster.
func (s *DashboardService) Stats(ctx context.Context, filter dto.RosterFilter) (*dto.RosterStats, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.RosterStats{
		TotalAlumni:   len(roster),
		ByDepartment:  make(map[string]int),
		ByYear:        make(map[string]int),
		FilteredCount: len(FilterRoster(roster, filter)),
	}
	for _, a := range roster {
		stats.ByDepartment[string(a.Department)]++
		stats.ByYear[a.GraduationYear]++
	}
	return stats, nil
}

// Export renders the filtered roster in the requested format. The export
// always reflects the filtered view, never the full roster.
func (s *DashboardService) Export(ctx context.Context, filter dto.RosterFilter, format ExportFormat, meta AuditMeta) (*ExportResult, error) {
	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	rows := s.toRows(FilterRoster(roster, filter))

	var result *ExportResult
	switch format {
	case ExportJSON, "":
		data, renderErr := s.jsonExporter.Render(rows)
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		result = &ExportResult{Data: data, ContentType: "application/json", Filename: exportFilename("json")}
	case ExportCSV:
		data, renderErr := s.csvExporter.Render(rosterDataset(rows))
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		result = &ExportResult{Data: data, ContentType: "text/csv", Filename: exportFilename("csv")}
	case ExportPDF:
		data, renderErr := s.pdfExporter.Render(rosterDataset(rows), "Alumni Roster")
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		result = &ExportResult{Data: data, ContentType: "application/pdf", Filename: exportFilename("pdf")}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	s.recordAudit(ctx, meta, models.AuditActionRosterExport, "alumni", "", map[string]string{
		"format": string(format),
		"count":  fmt.Sprintf("%d", len(rows)),
	})
	return result, nil
}

func (s *DashboardService) toRows(roster []models.Alumni) []dto.AlumniRow {
	rows := make([]dto.AlumniRow, 0, len(roster))
	for _, a := range roster {
		rows = append(rows, s.toRow(a))
	}
	return rows
}

func (s *DashboardService) toRow(a models.Alumni) dto.AlumniRow {
	return dto.AlumniRow{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Phone:          a.Phone,
		GraduationYear: a.GraduationYear,
		Department:     string(a.Department),
		Job:            a.Job,
		SelfieURL:      s.links.SelfieURL(a.SelfieKey),
		SubmittedAt:    datefmt.IST(a.CreatedAt),
	}
}

// purgeSelfie prefers the background queue and falls back to inline
// removal when the queue is unavailable or full.
func (s *DashboardService) purgeSelfie(key string) {
	if key == "" {
		return
	}
	if s.purge != nil {
		err := s.purge.Enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeSelfiePurge,
			Payload: key,
		})
		if err == nil {
			return
		}
		s.logger.Warn("selfie purge enqueue failed, removing inline", zap.String("key", key), zap.Error(err))
	}
	if err := s.selfies.Remove(key); err != nil {
		s.logger.Warn("failed to remove selfie", zap.String("key", key), zap.Error(err))
	}
}

func (s *DashboardService) recordAudit(ctx context.Context, meta AuditMeta, action models.AuditAction, resource, resourceID string, values map[string]string) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(values)
	entry := &models.AuditLog{
		ID:        uuid.NewString(),
		Action:    action,
		Resource:  resource,
		NewValues: payload,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: time.Now().UTC(),
	}
	if meta.AdminID != "" {
		entry.AdminID = &meta.AdminID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", string(action)), zap.Error(err))
	}
}

func rosterDataset(rows []dto.AlumniRow) export.Dataset {
	ds := export.Dataset{
		Headers: []string{"Name", "Email", "Phone", "Graduation Year", "Department", "Job", "Submitted At"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, map[string]string{
			"Name":            r.Name,
			"Email":           r.Email,
			"Phone":           r.Phone,
			"Graduation Year": r.GraduationYear,
			"Department":      r.Department,
			"Job":             r.Job,
			"Submitted At":    r.SubmittedAt,
		})
	}
	return ds
}

func exportFilename(ext string) string {
	return fmt.Sprintf("alumni-roster-%s.%s", time.Now().UTC().Format("20060102-150405"), ext)
}
