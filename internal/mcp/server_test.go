package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/NomuraAI/SIGADES-sub000/internal/sqlite"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSession struct {
	session *sdkmcp.ClientSession
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	backend := sqlite.NewLocalBackend(db, sqlite.LocalOptions{})
	activities := sqlite.NewActivityRepository(db)
	versions := dataset.NewVersionRegistry(backend, nil, nil)

	server := NewServer(Config{
		Services: Services{
			Datasets: dataset.NewService(backend, versions, activities, dataset.Options{PageSize: 2, BatchSize: 2}, nil),
			Records:  project.NewService(backend, activities, versions, nil),
			Activity: activity.NewService(activities, nil),
		},
		TransportMode: "stdio",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
		serverSession.Close()
		cancel()
	})
	return &testSession{session: session}
}

func (s *testSession) call(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)
	return result
}

func (s *testSession) callOK(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	result := s.call(t, name, args)
	require.False(t, result.IsError, "Tool %s returned error: %s", name, textOf(t, result))
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), out))
}

func (s *testSession) callErr(t *testing.T, name string, args map[string]any) APIError {
	t.Helper()
	result := s.call(t, name, args)
	require.True(t, result.IsError, "Tool %s should fail", name)
	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &apiErr))
	return apiErr
}

func textOf(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	t.Fatalf("no text content")
	return ""
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.csv")
	data := "Kode Desa,Nama Kegiatan,Sub Kegiatan,Pagu\n" +
		"3301012001,Jalan Desa,Rabat Beton,100.000\n" +
		"3301012001,Jalan Desa,Drainase,50.000\n" +
		"3301012002,Posyandu,,25.000\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestServer_ListsTools(t *testing.T) {
	s := newTestSession(t)

	tools, err := s.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"list_versions", "list_records", "import_spreadsheet", "create_record", "update_record",
		"delete_record", "clear_version", "clear_all", "get_recent_activity",
	}, names)
}

func TestServer_ImportWorkflow(t *testing.T) {
	s := newTestSession(t)
	path := writeCSV(t)

	var first importResponse
	s.callOK(t, "import_spreadsheet", map[string]any{"path": path, "version": "2025"}, &first)
	assert.Equal(t, 3, first.Inserted)
	assert.Equal(t, 0, first.Updated)
	assert.Contains(t, first.Message, "3 inserted")

	var second importResponse
	s.callOK(t, "import_spreadsheet", map[string]any{"path": path, "version": "2025"}, &second)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 3, second.Updated)

	var versions versionsResponse
	s.callOK(t, "list_versions", nil, &versions)
	assert.Equal(t, "local", versions.Backend)
	assert.Equal(t, []string{"2025"}, versions.Versions)

	var page project.Page
	s.callOK(t, "list_records", map[string]any{"version": "2025"}, &page)
	assert.Len(t, page.Records, 3)
	assert.False(t, page.HasMore)

	var recent struct {
		Entries []activity.ActivityEntry `json:"entries"`
	}
	s.callOK(t, "get_recent_activity", map[string]any{"type": "import"}, &recent)
	require.Len(t, recent.Entries, 2)
	assert.Equal(t, "2025", recent.Entries[0].Version)
}

func TestServer_ImportNeedsConfirmationForAppend(t *testing.T) {
	s := newTestSession(t)
	path := writeCSV(t)

	apiErr := s.callErr(t, "import_spreadsheet", map[string]any{"path": path, "mode": "replace_append"})
	assert.Equal(t, "CONFIRMATION_REQUIRED", apiErr.Code)

	var res importResponse
	s.callOK(t, "import_spreadsheet", map[string]any{"path": path, "mode": "replace_append", "confirm": true}, &res)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, project.DefaultVersion, res.Version)
}

func TestServer_ImportRejectsBadInput(t *testing.T) {
	s := newTestSession(t)

	apiErr := s.callErr(t, "import_spreadsheet", map[string]any{"path": writeCSV(t), "mode": "overwrite"})
	assert.Equal(t, "INVALID_MODE", apiErr.Code)

	apiErr = s.callErr(t, "import_spreadsheet", map[string]any{"path": "projects.pdf"})
	assert.Equal(t, "INVALID_SPREADSHEET", apiErr.Code)
}

func TestServer_RecordCommands(t *testing.T) {
	s := newTestSession(t)

	var created project.Project
	s.callOK(t, "create_record", map[string]any{
		"version": "2025",
		"fields":  map[string]any{"kode_desa": "3301012001", "pekerjaan": "Jalan Desa", "pagu": "1.500.000", "latitude": "-7,25"},
	}, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, int64(1500000), created.Allocation)
	require.NotNil(t, created.Latitude)
	assert.InDelta(t, -7.25, *created.Latitude, 1e-9)

	var updated project.Project
	s.callOK(t, "update_record", map[string]any{
		"id":      created.ID,
		"version": "2025",
		"fields":  map[string]any{"kode_desa": "3301012001", "pekerjaan": "Jalan Desa", "pagu": "2.000.000"},
	}, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(2000000), updated.Allocation)
	assert.Nil(t, updated.Latitude)

	apiErr := s.callErr(t, "update_record", map[string]any{
		"id":     "missing",
		"fields": map[string]any{"kode_desa": "1"},
	})
	assert.Equal(t, "NOT_FOUND", apiErr.Code)

	apiErr = s.callErr(t, "create_record", map[string]any{"fields": map[string]any{"pagu": "10"}})
	assert.Equal(t, "INVALID_INPUT", apiErr.Code)

	var deleted map[string]string
	s.callOK(t, "delete_record", map[string]any{"id": created.ID}, &deleted)
	assert.Equal(t, created.ID, deleted["deleted"])

	var page project.Page
	s.callOK(t, "list_records", map[string]any{"all": true}, &page)
	assert.Empty(t, page.Records)
}

func TestServer_ClearCommands(t *testing.T) {
	s := newTestSession(t)
	path := writeCSV(t)

	var res importResponse
	s.callOK(t, "import_spreadsheet", map[string]any{"path": path, "version": "a"}, &res)
	s.callOK(t, "import_spreadsheet", map[string]any{"path": path, "version": "b"}, &res)

	apiErr := s.callErr(t, "clear_version", map[string]any{"version": "a"})
	assert.Equal(t, "CONFIRMATION_REQUIRED", apiErr.Code)

	var cleared clearResponse
	s.callOK(t, "clear_version", map[string]any{"version": "a", "confirm": true}, &cleared)
	assert.Equal(t, 3, cleared.Deleted)

	var versions versionsResponse
	s.callOK(t, "list_versions", nil, &versions)
	assert.Equal(t, []string{"b"}, versions.Versions)

	s.callOK(t, "clear_all", map[string]any{"confirm": true}, &cleared)
	assert.Equal(t, 3, cleared.Deleted)
}

func TestServer_ReadsDocResources(t *testing.T) {
	s := newTestSession(t)

	for _, doc := range docResources {
		res, err := s.session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: doc.URI})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, doc.Content, res.Contents[0].Text)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("update x: %w", repository.ErrNotFound), "NOT_FOUND"},
		{project.ErrProjectNotFound, "NOT_FOUND"},
		{fmt.Errorf("clear: %w", repository.ErrPermissionDenied), "PERMISSION_DENIED"},
		{fmt.Errorf("list page 2: %w: %w", repository.ErrTransient, context.DeadlineExceeded), "TRANSIENT_BACKEND"},
		{fmt.Errorf("import: %w", dataset.ErrConfirmationRequired), "CONFIRMATION_REQUIRED"},
		{project.ErrInvalidInput, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		apiErr := MapError(tt.err)
		require.NotNil(t, apiErr, tt.err.Error())
		assert.Equal(t, tt.code, apiErr.Code)
	}

	assert.Nil(t, MapError(nil))
	assert.Nil(t, MapError(fmt.Errorf("boom")))
}

func TestErrorResult_CarriesDetails(t *testing.T) {
	summary := &dataset.Summary{Version: "2025", Inserted: 50}
	res := errorResult(fmt.Errorf("write batch: %w", repository.ErrTransient), summary)

	require.True(t, res.IsError)
	var apiErr struct {
		Code    string          `json:"code"`
		Details dataset.Summary `json:"details"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &apiErr))
	assert.Equal(t, "TRANSIENT_BACKEND", apiErr.Code)
	assert.Equal(t, 50, apiErr.Details.Inserted)
}
