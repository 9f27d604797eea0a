package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staffplan-api/internal/dto"
	"github.com/noah-isme/staffplan-api/internal/service"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

type planningEnvelope struct {
	Data       map[string]interface{} `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) planningEnvelope {
	t.Helper()
	var envelope planningEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
		c.Request = httptest.NewRequest(method, target, reader)
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	return c, rec
}

type fakeAllocationSrv struct {
	checkResp *dto.OverallocationResponse
	checkErr  error
	lastCheck dto.CheckOverallocationRequest

	totalsResp   *dto.DailyTotalsResponse
	lastPersonID string
	lastQuery    dto.DailyTotalsQuery

	breakdownResp *dto.BreakdownResponse
	lastDay       string
}

func (f *fakeAllocationSrv) Check(_ context.Context, req dto.CheckOverallocationRequest) (*dto.OverallocationResponse, error) {
	f.lastCheck = req
	return f.checkResp, f.checkErr
}

func (f *fakeAllocationSrv) DailyTotals(_ context.Context, personID string, query dto.DailyTotalsQuery) (*dto.DailyTotalsResponse, error) {
	f.lastPersonID = personID
	f.lastQuery = query
	return f.totalsResp, nil
}

func (f *fakeAllocationSrv) Breakdown(_ context.Context, personID, day string) (*dto.BreakdownResponse, error) {
	f.lastPersonID = personID
	f.lastDay = day
	return f.breakdownResp, nil
}

func TestAllocationHandlerCheck(t *testing.T) {
	srv := &fakeAllocationSrv{checkResp: &dto.OverallocationResponse{PersonID: "p1", Overallocated: true}}
	handler := NewAllocationHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/allocations/check",
		`{"person_id":"p1","start_date":"2024-01-08","end_date":"2024-01-12","allocation_percent":10}`)
	handler.Check(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Data["overallocated"])
	assert.Equal(t, "2024-01-08", srv.lastCheck.StartDate.String())
	require.NotNil(t, srv.lastCheck.AllocationPercent)
	assert.Equal(t, 10.0, *srv.lastCheck.AllocationPercent)
	assert.Nil(t, srv.lastCheck.Allocation)
}

func TestAllocationHandlerCheckRejectsMalformedDate(t *testing.T) {
	handler := NewAllocationHandler(&fakeAllocationSrv{})

	c, rec := newTestContext(http.MethodPost, "/allocations/check", `{"person_id":"p1","start_date":"2024-1-8x"}`)
	handler.Check(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, rec).Error["code"])
}

func TestAllocationHandlerCheckMapsServiceErrors(t *testing.T) {
	handler := NewAllocationHandler(&fakeAllocationSrv{checkErr: appErrors.Clone(appErrors.ErrInvalidRange, "start after end")})

	c, rec := newTestContext(http.MethodPost, "/allocations/check", `{"person_id":"p1"}`)
	handler.Check(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RANGE", decodeEnvelope(t, rec).Error["code"])
}

func TestAllocationHandlerDailyTotalsAndBreakdown(t *testing.T) {
	srv := &fakeAllocationSrv{
		totalsResp:    &dto.DailyTotalsResponse{PersonID: "p1", OverallocatedDays: 2},
		breakdownResp: &dto.BreakdownResponse{PersonID: "p1"},
	}
	handler := NewAllocationHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/people/p1/allocations?start=2024-01-01&end=2024-01-31", "")
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	handler.DailyTotals(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", srv.lastPersonID)
	assert.Equal(t, dto.DailyTotalsQuery{Start: "2024-01-01", End: "2024-01-31"}, srv.lastQuery)
	assert.Equal(t, 2.0, decodeEnvelope(t, rec).Data["overallocated_days"])

	c, rec = newTestContext(http.MethodGet, "/people/p1/allocations/2024-01-05", "")
	c.Params = gin.Params{{Key: "id", Value: "p1"}, {Key: "day", Value: "2024-01-05"}}
	handler.Breakdown(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-05", srv.lastDay)
}

func TestAllocationHandlerWithoutService(t *testing.T) {
	handler := NewAllocationHandler(nil)

	c, rec := newTestContext(http.MethodGet, "/people/p1/allocations/2024-01-05", "")
	handler.Breakdown(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type fakeReportSrv struct {
	report    *dto.OverallocationReport
	hit       bool
	lastQuery dto.OverallocationReportQuery
}

func (f *fakeReportSrv) OverallocationReport(_ context.Context, query dto.OverallocationReportQuery) (*dto.OverallocationReport, bool, error) {
	f.lastQuery = query
	return f.report, f.hit, nil
}

type fakeExporter struct {
	result *service.ExportResult
	err    error
	last   dto.ExportQuery
}

func (f *fakeExporter) Overallocation(_ context.Context, query dto.ExportQuery) (*service.ExportResult, error) {
	f.last = query
	return f.result, f.err
}

func TestReportHandlerOverallocation(t *testing.T) {
	reports := &fakeReportSrv{
		report: &dto.OverallocationReport{PeopleTotal: 7, People: []dto.PersonOverallocation{{}, {}}},
		hit:    true,
	}
	handler := NewReportHandler(reports, nil)

	c, rec := newTestContext(http.MethodGet, "/reports/overallocation?profile=engineer&profile=designer&status=active&start=2024-01-01&page=2&page_size=2", "")
	handler.Overallocation(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, 7.0, envelope.Pagination["total_count"])
	assert.Equal(t, 2.0, envelope.Pagination["page"])
	assert.Equal(t, []string{"engineer", "designer"}, reports.lastQuery.Profiles)
	assert.Equal(t, []string{"active"}, reports.lastQuery.Statuses)
	assert.Equal(t, "2024-01-01", reports.lastQuery.Start)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestReportHandlerExport(t *testing.T) {
	exporter := &fakeExporter{result: &service.ExportResult{
		Filename:    "overallocation.csv",
		ContentType: "text/csv",
		Body:        []byte("Person ID\n"),
	}}
	handler := NewReportHandler(nil, exporter)

	c, rec := newTestContext(http.MethodGet, "/reports/overallocation/export?format=csv&status=inactive", "")
	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exporter.last.Format)
	assert.Equal(t, []string{"inactive"}, exporter.last.Statuses)
	assert.Equal(t, `attachment; filename="overallocation.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Person ID\n", rec.Body.String())

	exporter.err = appErrors.Clone(appErrors.ErrUnsupportedFormat, "unsupported export format")
	c, rec = newTestContext(http.MethodGet, "/reports/overallocation/export?format=xlsx", "")
	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeTimelineSrv struct {
	layoutResp *dto.LayoutResponse
	layoutErr  error
	hit        bool
	lastQuery  dto.TimelineQuery
	lastLayout dto.LayoutRequest
	lastSnap   dto.SnapRequest
}

func (f *fakeTimelineSrv) Layout(_ context.Context, req dto.LayoutRequest) (*dto.LayoutResponse, error) {
	f.lastLayout = req
	return f.layoutResp, f.layoutErr
}

func (f *fakeTimelineSrv) LayoutForFilter(_ context.Context, query dto.TimelineQuery) (*dto.LayoutResponse, bool, error) {
	f.lastQuery = query
	return f.layoutResp, f.hit, f.layoutErr
}

func (f *fakeTimelineSrv) Snap(_ context.Context, req dto.SnapRequest) (*dto.SnapResponse, error) {
	f.lastSnap = req
	return &dto.SnapResponse{SnappedDeltaPx: 40, DeltaDays: 1}, nil
}

func (f *fakeTimelineSrv) Select(_ context.Context, req dto.SelectionRequest) (*dto.SelectionResponse, error) {
	return &dto.SelectionResponse{Days: 4}, nil
}

func (f *fakeTimelineSrv) Expand(_ context.Context, req dto.ExpandRequest) (*dto.ExpandResponse, error) {
	return &dto.ExpandResponse{Viewport: req.Viewport, AddedDays: 29}, nil
}

func TestTimelineHandlerTimelineBindsQuery(t *testing.T) {
	srv := &fakeTimelineSrv{layoutResp: &dto.LayoutResponse{TotalWidthPx: 1240}}
	handler := NewTimelineHandler(srv)

	c, rec := newTestContext(http.MethodGet,
		"/timeline?window_start=2024-01-01&window_end=2024-01-31&day_width=40&scroll_left=120&visible_width=800&profile=engineer&overallocated_only=true&dragging_id=a1", "")
	handler.Timeline(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-01", srv.lastQuery.WindowStart)
	assert.Equal(t, 40.0, srv.lastQuery.DayWidthPx)
	assert.Equal(t, 120.0, srv.lastQuery.ScrollLeftPx)
	assert.Equal(t, 800.0, srv.lastQuery.VisibleWidthPx)
	assert.True(t, srv.lastQuery.OverallocatedOnly)
	assert.Equal(t, []string{"engineer"}, srv.lastQuery.Profiles)
	assert.Equal(t, "a1", srv.lastQuery.DraggingID)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, 1240.0, envelope.Data["total_width_px"])
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestTimelineHandlerLayout(t *testing.T) {
	srv := &fakeTimelineSrv{layoutResp: &dto.LayoutResponse{}}
	handler := NewTimelineHandler(srv)

	body := `{
		"people":[{"id":"p1","name":"Ada"}],
		"projects":[{"id":"pr1","name":"Apollo"}],
		"assignments":[{"id":"a1","person_id":"p1","project_id":"pr1","start_date":"2024-01-02","end_date":"2024-01-05","allocation":0.5}],
		"viewport":{"window_start":"2024-01-01","window_end":"2024-03-31","day_width_px":40},
		"skip_unresolved":true
	}`
	c, rec := newTestContext(http.MethodPost, "/timeline/layout", body)
	handler.Layout(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, srv.lastLayout.Assignments, 1)
	assert.Equal(t, calendarday.MustParse("2024-01-05"), srv.lastLayout.Assignments[0].EndDay)
	assert.Equal(t, 40.0, srv.lastLayout.Viewport.DayWidthPx)
	assert.True(t, srv.lastLayout.SkipUnresolved)

	srv.layoutErr = appErrors.Clone(appErrors.ErrMissingReference, "unknown person")
	c, rec = newTestContext(http.MethodPost, "/timeline/layout", body)
	handler.Layout(c)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTimelineHandlerInteractions(t *testing.T) {
	srv := &fakeTimelineSrv{}
	handler := NewTimelineHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/timeline/snap",
		`{"assignment":{"id":"a1","start_date":"2024-01-10","end_date":"2024-01-12","allocation":0.5},"mode":"move","delta_px":55,"day_width_px":40}`)
	handler.Snap(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 55.0, srv.lastSnap.DeltaPx)
	assert.Equal(t, 1.0, decodeEnvelope(t, rec).Data["delta_days"])

	c, rec = newTestContext(http.MethodPost, "/timeline/snap", `{"assignment":`)
	handler.Snap(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/timeline/selection",
		`{"viewport":{"window_start":"2024-01-01","window_end":"2024-01-31","day_width_px":40},"down_px":130,"move_px":10}`)
	handler.Selection(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.0, decodeEnvelope(t, rec).Data["days"])

	c, rec = newTestContext(http.MethodPost, "/timeline/expand",
		`{"viewport":{"window_start":"2024-03-01","window_end":"2024-03-31","day_width_px":40},"direction":"start","months":1}`)
	handler.Expand(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 29.0, decodeEnvelope(t, rec).Data["added_days"])
}

func TestMetricsHandlerReady(t *testing.T) {
	healthy := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
	})
	c, rec := newTestContext(http.MethodGet, "/ready", "")
	healthy.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	degraded := NewMetricsHandler(nil, map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	c, rec = newTestContext(http.MethodGet, "/ready", "")
	degraded.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "connection refused", body.Checks["redis"])

	c, rec = newTestContext(http.MethodGet, "/metrics", "")
	degraded.Prometheus(c)
	c.Writer.WriteHeaderNow() // gin's engine flushes the status after handlers; bare test contexts do not
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
