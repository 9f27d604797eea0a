package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/staffplan-api/internal/allocation"
	"github.com/noah-isme/staffplan-api/internal/dto"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
	"github.com/noah-isme/staffplan-api/pkg/export"
)

const exportPageSize = 500

// Export column headers.
const (
	columnPersonID  = "Person ID"
	columnName      = "Name"
	columnProfile   = "Profile"
	columnContract  = "Contract"
	columnDay       = "Day"
	columnAllocated = "Allocated %"
	columnExcess    = "Over by %"
)

type overallocationReporter interface {
	OverallocationReport(ctx context.Context, query dto.OverallocationReportQuery) (*dto.OverallocationReport, bool, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Title string
}

// ExportResult is a rendered report ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportService renders the overallocation report as a downloadable file.
type ExportService struct {
	reports overallocationReporter
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(reports overallocationReporter, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Overallocation report"
	}
	return &ExportService{reports: reports, logger: logger, cfg: cfg}
}

// Overallocation renders every overallocated day of every matching person.
// Pagination in the query is ignored; the export always covers all pages.
func (s *ExportService) Overallocation(ctx context.Context, query dto.ExportQuery) (*ExportResult, error) {
	format := export.Format(query.Format)
	if format == "" {
		format = export.FormatCSV
	}
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, err.Error())
	}

	report, err := s.collect(ctx, query.OverallocationReportQuery)
	if err != nil {
		return nil, err
	}

	dataset := s.buildDataset(report)
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("overallocation-%s-%s-%s.%s",
		report.StartDate, report.EndDate, uuid.NewString()[:8], renderer.Extension())
	s.logger.Info("overallocation report exported",
		zap.String("format", string(format)),
		zap.Int("people", report.PeopleTotal),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &ExportResult{
		Filename:    filename,
		ContentType: renderer.ContentType(),
		Body:        payload,
		Rows:        len(dataset.Rows),
	}, nil
}

func (s *ExportService) collect(ctx context.Context, query dto.OverallocationReportQuery) (*dto.OverallocationReport, error) {
	if s.reports == nil {
		return nil, errors.New("export service has no report source")
	}
	query.PageSize = exportPageSize
	query.Page = 1

	first, _, err := s.reports.OverallocationReport(ctx, query)
	if err != nil {
		return nil, err
	}
	merged := *first
	merged.People = append(merged.People[:0:0], first.People...)
	for len(merged.People) < merged.PeopleTotal {
		query.Page++
		next, _, err := s.reports.OverallocationReport(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(next.People) == 0 {
			break
		}
		merged.People = append(merged.People, next.People...)
	}
	return &merged, nil
}

func (s *ExportService) buildDataset(report *dto.OverallocationReport) export.Dataset {
	dataset := export.Dataset{
		Title:   fmt.Sprintf("%s %s to %s", s.cfg.Title, report.StartDate, report.EndDate),
		Headers: []string{columnPersonID, columnName, columnProfile, columnContract, columnDay, columnAllocated, columnExcess},
		Numeric: map[string]bool{columnAllocated: true, columnExcess: true},
	}
	limit := decimal.NewFromFloat(allocation.Tolerance)
	for _, entry := range report.People {
		for _, day := range entry.Days {
			total := decimal.NewFromFloat(day.TotalAllocation)
			dataset.Rows = append(dataset.Rows, map[string]string{
				columnPersonID:  entry.Person.ID,
				columnName:      entry.Person.Name,
				columnProfile:   entry.Person.Profile,
				columnContract:  entry.Person.ContractType,
				columnDay:       day.Day.String(),
				columnAllocated: percent(total),
				columnExcess:    percent(total.Sub(limit)),
			})
		}
	}
	return dataset
}

func percent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(1)
}
