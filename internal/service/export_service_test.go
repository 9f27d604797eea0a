package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/staffplan-api/internal/allocation"
	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/models"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

// pagedReports serves one person per page.
type pagedReports struct {
	people  []dto.PersonOverallocation
	err     error
	queries []dto.OverallocationReportQuery
}

func (p *pagedReports) OverallocationReport(_ context.Context, query dto.OverallocationReportQuery) (*dto.OverallocationReport, bool, error) {
	p.queries = append(p.queries, query)
	if p.err != nil {
		return nil, false, p.err
	}
	report := &dto.OverallocationReport{
		StartDate:   day("2024-01-01"),
		EndDate:     day("2024-01-31"),
		Tolerance:   allocation.Tolerance,
		PeopleTotal: len(p.people),
		People:      []dto.PersonOverallocation{},
	}
	if idx := query.Page - 1; idx < len(p.people) {
		report.People = append(report.People, p.people[idx])
	}
	return report, false, nil
}

func reportFixture() *pagedReports {
	return &pagedReports{people: []dto.PersonOverallocation{
		{
			Person:         models.Person{ID: "p1", Name: "Ada", Profile: "engineer", ContractType: "full_time"},
			PeakAllocation: 1.3,
			Days: []allocation.DayReport{
				{Day: day("2024-01-15"), TotalAllocation: 1.3},
				{Day: day("2024-01-16"), TotalAllocation: 1.1},
			},
		},
		{
			Person:         models.Person{ID: "p2", Name: "Grace, H.", Profile: "designer"},
			PeakAllocation: 1.5,
			Days:           []allocation.DayReport{{Day: day("2024-01-20"), TotalAllocation: 1.5}},
		},
	}}
}

func TestExportServiceOverallocationCSV(t *testing.T) {
	reports := reportFixture()
	svc := NewExportService(reports, ExportConfig{}, zap.NewNop())

	result, err := svc.Overallocation(context.Background(), dto.ExportQuery{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "overallocation-2024-01-01-2024-01-31-"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	assert.Equal(t, 3, result.Rows)

	lines := strings.Split(strings.TrimSpace(string(result.Body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Person ID,Name,Profile,Contract,Day,Allocated %,Over by %", lines[0])
	assert.Equal(t, "p1,Ada,engineer,full_time,2024-01-15,130.0,25.0", lines[1])
	assert.Equal(t, `p2,"Grace, H.",designer,,2024-01-20,150.0,45.0`, lines[3])

	require.Len(t, reports.queries, 2)
	assert.Equal(t, exportPageSize, reports.queries[0].PageSize)
	assert.Equal(t, 2, reports.queries[1].Page)
}

func TestExportServiceOverallocationPDF(t *testing.T) {
	svc := NewExportService(reportFixture(), ExportConfig{Title: "Load"}, zap.NewNop())

	result, err := svc.Overallocation(context.Background(), dto.ExportQuery{Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Body), "%PDF"))
}

func TestExportServiceErrors(t *testing.T) {
	svc := NewExportService(reportFixture(), ExportConfig{}, zap.NewNop())
	_, err := svc.Overallocation(context.Background(), dto.ExportQuery{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)

	failing := &pagedReports{err: appErrors.Clone(appErrors.ErrValidation, "bad filter")}
	svc = NewExportService(failing, ExportConfig{}, zap.NewNop())
	_, err = svc.Overallocation(context.Background(), dto.ExportQuery{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	svc = NewExportService(nil, ExportConfig{}, zap.NewNop())
	_, err = svc.Overallocation(context.Background(), dto.ExportQuery{})
	assert.True(t, err != nil && !errors.Is(err, appErrors.ErrValidation))
}
