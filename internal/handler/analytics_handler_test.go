package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/handler"
	"github.com/noah-isme/fairshare-api/internal/models"
	"github.com/noah-isme/fairshare-api/internal/service"
)

type mockAnalyticsService struct {
	report     dto.ContributionReport
	projectID  string
	alertInput dto.AlertCreateRequest
	resolvedID string
	err        error
}

func (m *mockAnalyticsService) ContributionReport(_ context.Context, projectID string) (dto.ContributionReport, error) {
	m.projectID = projectID
	if m.err != nil {
		return dto.ContributionReport{}, m.err
	}
	return m.report, nil
}

func (m *mockAnalyticsService) ListOpenAlerts(_ context.Context, projectID string) ([]dto.AlertResponse, error) {
	m.projectID = projectID
	return []dto.AlertResponse{}, m.err
}

func (m *mockAnalyticsService) CreateAlert(_ context.Context, payload dto.AlertCreateRequest) (dto.AlertResponse, error) {
	m.alertInput = payload
	if m.err != nil {
		return dto.AlertResponse{}, m.err
	}
	return dto.AlertResponse{ID: "a-1", ProjectID: payload.ProjectID, Severity: payload.Severity}, nil
}

func (m *mockAnalyticsService) ResolveAlert(_ context.Context, id string) (dto.AlertResponse, error) {
	m.resolvedID = id
	if m.err != nil {
		return dto.AlertResponse{}, m.err
	}
	return dto.AlertResponse{ID: id, IsResolved: true}, nil
}

func newAnalyticsApp(svc service.AnalyticsService, role string) *fiber.App {
	app := fiber.New()
	handler.NewAnalyticsHandler(svc, zerolog.Nop()).Register(app.Group("/api/analytics", asUser("u-1", role)))
	return app
}

func sampleReport() dto.ContributionReport {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	first := now.Add(-72 * time.Hour)
	avg := 4.5

	return dto.ContributionReport{
		Project: dto.ProjectResponse{
			ID: "p-1", Title: "Capstone", FacultyID: "f-1",
			StartDate: "2024-05-01", EndDate: "2024-06-30", Status: models.ProjectStatusActive,
		},
		GeneratedAt: now,
		Groups: []dto.ReportGroup{{
			GroupID:   "g-1",
			GroupName: "Team Red",
			Members: []dto.ReportMember{
				{
					StudentID: "s-1", StudentName: "Alice", Email: "alice@campus.test",
					ActivityMetrics: dto.StudentActivityMetrics{
						TotalActivities: 12, TotalEffort: 30, AvgEffort: 2.5, ActiveDays: 4,
						FirstActivity: &first, LastActivity: &now, Creates: 4, Updates: 6, Comments: 2,
					},
					PeerFeedback: dto.PeerFeedbackSummary{AvgContribution: &avg, AvgQuality: &avg, AvgCollaboration: &avg, FeedbackCount: 1},
				},
				{
					StudentID: "s-2", StudentName: "Bob", Email: "bob@campus.test",
					ActivityMetrics: dto.StudentActivityMetrics{},
				},
			},
			Statistics: dto.GroupStatistics{AvgEffort: 15, MaxEffort: 30, MinEffort: 0, EffortVariance: 30, ImbalanceRatio: 30},
			Issues: []dto.ContributionIssue{
				{StudentID: "s-2", Student: "Bob", Type: dto.IssueLowContribution, Severity: models.SeverityHigh, Message: "Bob has significantly lower contribution (0.0 vs avg 15.0)"},
				{StudentID: "s-2", Student: "Bob", Type: dto.IssueInactive, Severity: models.SeverityMedium, Message: "Bob has been active only 0 days"},
				{StudentID: "s-2", Student: "Bob", Type: dto.IssueDormant, Severity: models.SeverityHigh, Message: "Bob has been inactive for 999 days"},
			},
		}},
	}
}

func TestAnalyticsHandler_ContributionReportContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "contribution_report.schema.json"))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)

	svc := &mockAnalyticsService{report: sampleReport()}
	resp := perform(t, newAnalyticsApp(svc, "faculty"), jsonRequest(t, http.MethodGet, "/api/analytics/contribution-report/p-1", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "p-1", svc.projectID)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestAnalyticsHandler_FacultyOnly(t *testing.T) {
	svc := &mockAnalyticsService{report: sampleReport()}
	app := newAnalyticsApp(svc, "student")

	for _, req := range []*http.Request{
		jsonRequest(t, http.MethodGet, "/api/analytics/contribution-report/p-1", nil),
		jsonRequest(t, http.MethodGet, "/api/analytics/alerts/p-1", nil),
		jsonRequest(t, http.MethodPost, "/api/analytics/alerts", map[string]string{"project_id": "p-1"}),
		jsonRequest(t, http.MethodPatch, "/api/analytics/alerts/a-1/resolve", nil),
	} {
		resp := perform(t, app, req)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode, req.URL.Path)
	}
	require.Empty(t, svc.projectID)
	require.Empty(t, svc.resolvedID)
}

func TestAnalyticsHandler_ReportProjectNotFound(t *testing.T) {
	svc := &mockAnalyticsService{err: service.ErrProjectNotFound}
	resp := perform(t, newAnalyticsApp(svc, "faculty"), jsonRequest(t, http.MethodGet, "/api/analytics/contribution-report/nope", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAnalyticsHandler_AlertLifecycle(t *testing.T) {
	svc := &mockAnalyticsService{}
	app := newAnalyticsApp(svc, "faculty")

	resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/analytics/alerts", map[string]string{
		"project_id": "p-1", "group_id": "g-1", "alert_type": "low_contribution", "severity": "high", "message": "check in",
	}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "high", svc.alertInput.Severity)

	resp = perform(t, app, jsonRequest(t, http.MethodPatch, "/api/analytics/alerts/a-1/resolve", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "a-1", svc.resolvedID)

	var body struct {
		Data dto.AlertResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Data.IsResolved)

	svc.err = service.ErrAlertNotFound
	resp = perform(t, app, jsonRequest(t, http.MethodPatch, "/api/analytics/alerts/missing/resolve", nil))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
