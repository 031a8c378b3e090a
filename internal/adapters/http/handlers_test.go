package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/missionsketch/internal/adapters/http"
	"github.com/samirrijal/missionsketch/internal/adapters/sketch"
	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/usecases"
)

// ---- Mocks ----

type mockNotifier struct {
	successes []string
	errs      []string
}

func (m *mockNotifier) ReportSuccess(ctx context.Context, missionID, message string) error {
	m.successes = append(m.successes, message)
	return nil
}

func (m *mockNotifier) ReportError(ctx context.Context, missionID, message string) error {
	m.errs = append(m.errs, message)
	return nil
}

type mockExportRepo struct {
	listFn func(ctx context.Context, missionID string) ([]domain.ExportRecord, error)
}

func (m *mockExportRepo) Insert(ctx context.Context, rec *domain.ExportRecord) error { return nil }
func (m *mockExportRepo) Delete(ctx context.Context, id string) error               { return nil }
func (m *mockExportRepo) ListByMission(ctx context.Context, missionID string) ([]domain.ExportRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, missionID)
	}
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps, handler.RouterConfig{})
	return app
}

func makeDeps(opts ...func(*usecases.MissionServiceConfig)) *handler.Dependencies {
	cfg := usecases.MissionServiceConfig{
		Surface: sketch.NewSurface(0),
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &handler.Dependencies{Missions: usecases.NewMissionService(cfg)}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func do(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeSnapshot(t *testing.T, resp *http.Response) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func decodeError(t *testing.T, resp *http.Response) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return apiErr
}

func createMission(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := do(t, app, "POST", "/v1/missions", `{"name":"Survey"}`)
	if resp.StatusCode != 201 {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	return decodeSnapshot(t, resp).Mission.ID
}

// drawLine draws a line through the given clicks and finishes it.
func drawLine(t *testing.T, app *fiber.App, id string, clicks ...string) {
	t.Helper()
	if resp := do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"line"}`); resp.StatusCode != 200 {
		t.Fatalf("start draw: expected 200, got %d", resp.StatusCode)
	}
	for _, c := range clicks {
		if resp := do(t, app, "POST", "/v1/missions/"+id+"/draw/vertices", c); resp.StatusCode != 200 {
			t.Fatalf("add vertex %s: expected 200, got %d", c, resp.StatusCode)
		}
	}
	if resp := do(t, app, "POST", "/v1/missions/"+id+"/draw/finish", ""); resp.StatusCode != 200 {
		t.Fatalf("finish: expected 200, got %d", resp.StatusCode)
	}
}

// ---- Mission lifecycle ----

func TestCreateMission(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/missions", `{"name":"Harbour survey"}`)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	snap := decodeSnapshot(t, resp)
	if snap.Mission.Name != "Harbour survey" {
		t.Errorf("expected name 'Harbour survey', got %q", snap.Mission.Name)
	}
	if snap.State != domain.StateIdle {
		t.Errorf("expected idle session, got %s", snap.State)
	}
	if len(snap.Route) != 0 {
		t.Errorf("expected empty route, got %d elements", len(snap.Route))
	}
	if snap.Hint == "" {
		t.Error("expected navigation hint on a new mission")
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/missions/"+snap.Mission.ID {
		t.Errorf("unexpected Location %q", loc)
	}
}

func TestCreateMission_WithoutBody(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/v1/missions", "")
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if snap := decodeSnapshot(t, resp); !strings.HasPrefix(snap.Mission.Name, "Mission ") {
		t.Errorf("expected default name, got %q", snap.Mission.Name)
	}
}

func TestListMissions_Pagination(t *testing.T) {
	app := setupApp(makeDeps())
	for range 3 {
		createMission(t, app)
	}

	resp := do(t, app, "GET", "/v1/missions?offset=1&limit=1", "")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Mission   `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 1 {
		t.Errorf("expected 1 mission in page, got %d", len(result.Data))
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) || !strings.Contains(link, `rel="prev"`) {
		t.Errorf("expected prev and next links, got %q", link)
	}
}

func TestGetMission_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/missions/nope", "")
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %s", apiErr.Code)
	}
}

func TestCloseMission(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)

	if resp := do(t, app, "DELETE", "/v1/missions/"+id, ""); resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := do(t, app, "GET", "/v1/missions/"+id, ""); resp.StatusCode != 404 {
		t.Errorf("expected 404 after close, got %d", resp.StatusCode)
	}
	if resp := do(t, app, "DELETE", "/v1/missions/"+id, ""); resp.StatusCode != 404 {
		t.Errorf("expected 404 closing twice, got %d", resp.StatusCode)
	}
}

// ---- Drawing ----

func TestDrawLine_FinishAppendsClicks(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)

	resp := do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"line"}`)
	snap := decodeSnapshot(t, resp)
	if snap.State != domain.StateDrawingLine || snap.Handle == "" {
		t.Fatalf("expected active line draw, got %s handle=%q", snap.State, snap.Handle)
	}

	do(t, app, "POST", "/v1/missions/"+id+"/draw/vertices", `{"x":1,"y":2}`)
	do(t, app, "POST", "/v1/missions/"+id+"/draw/vertices", `{"x":3,"y":4}`)

	snap = decodeSnapshot(t, do(t, app, "POST", "/v1/missions/"+id+"/draw/finish", ""))
	if snap.State != domain.StateIdle {
		t.Errorf("expected idle after finish, got %s", snap.State)
	}
	if len(snap.Route) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(snap.Route))
	}
	if snap.Route[1].Point != (domain.Coordinate{X: 3, Y: 4}) {
		t.Errorf("unexpected second waypoint %v", snap.Route[1].Point)
	}
}

func TestStartDrawing_BadKind(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)

	resp := do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"circle"}`)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestStartDrawing_BusyIsConflict(t *testing.T) {
	notifier := &mockNotifier{}
	app := setupApp(makeDeps(func(c *usecases.MissionServiceConfig) { c.Notifier = notifier }))
	id := createMission(t, app)

	do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"line"}`)
	resp := do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"polygon"}`)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != "conflict" {
		t.Errorf("expected conflict, got %s", apiErr.Code)
	}
	if len(notifier.errs) != 1 {
		t.Errorf("expected the operator to be notified once, got %d", len(notifier.errs))
	}
}

func TestAddVertex_WhileIdleIsConflict(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)

	resp := do(t, app, "POST", "/v1/missions/"+id+"/draw/vertices", `{"x":1,"y":1}`)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCompleteDrawing_StaleHandle(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)
	do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"line"}`)

	resp := do(t, app, "POST", "/v1/missions/"+id+"/draw/complete",
		`{"handle":"not-the-handle","vertices":[{"x":0,"y":0}]}`)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCompleteDrawing_WithVertices(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)
	snap := decodeSnapshot(t, do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"line"}`))

	body := `{"handle":"` + string(snap.Handle) + `","vertices":[{"x":0,"y":0},{"x":1,"y":1},{"x":2,"y":2}]}`
	resp := do(t, app, "POST", "/v1/missions/"+id+"/draw/complete", body)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if snap := decodeSnapshot(t, resp); len(snap.Route) != 3 {
		t.Errorf("expected 3 waypoints, got %d", len(snap.Route))
	}
}

func TestCancelDrawing_LeavesRouteUntouched(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)
	do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"line"}`)
	do(t, app, "POST", "/v1/missions/"+id+"/draw/vertices", `{"x":1,"y":1}`)

	snap := decodeSnapshot(t, do(t, app, "DELETE", "/v1/missions/"+id+"/draw", ""))
	if snap.State != domain.StateIdle {
		t.Errorf("expected idle, got %s", snap.State)
	}
	if len(snap.Route) != 0 {
		t.Errorf("expected empty route, got %d", len(snap.Route))
	}
}

// ---- Polygon import ----

func drawPolygon(t *testing.T, app *fiber.App, id string) {
	t.Helper()
	do(t, app, "POST", "/v1/missions/"+id+"/draw", `{"kind":"polygon"}`)
	for _, c := range []string{`{"x":10,"y":10}`, `{"x":20,"y":10}`, `{"x":20,"y":20}`} {
		do(t, app, "POST", "/v1/missions/"+id+"/draw/vertices", c)
	}
	snap := decodeSnapshot(t, do(t, app, "POST", "/v1/missions/"+id+"/draw/finish", ""))
	if len(snap.Pending) != 4 {
		t.Fatalf("expected closed pending ring of 4, got %d", len(snap.Pending))
	}
}

func TestImportPolygon_Vertices(t *testing.T) {
	notifier := &mockNotifier{}
	app := setupApp(makeDeps(func(c *usecases.MissionServiceConfig) { c.Notifier = notifier }))
	id := createMission(t, app)
	drawLine(t, app, id, `{"x":0,"y":0}`, `{"x":1,"y":1}`)
	drawPolygon(t, app, id)

	resp := do(t, app, "POST", "/v1/missions/"+id+"/polygon/import", `{"anchor":1,"direction":"before"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	snap := decodeSnapshot(t, resp)
	if len(snap.Route) != 6 {
		t.Fatalf("expected 2+4 waypoints, got %d", len(snap.Route))
	}
	if snap.Route[1].Point != (domain.Coordinate{X: 10, Y: 10}) {
		t.Errorf("expected ring to start at index 1, got %v", snap.Route[1].Point)
	}
	if snap.Route[5].Point != (domain.Coordinate{X: 1, Y: 1}) {
		t.Errorf("expected anchor shifted to the end, got %v", snap.Route[5].Point)
	}
	if len(snap.Pending) != 0 {
		t.Error("expected pending polygon to be consumed")
	}
	if len(notifier.successes) == 0 || notifier.successes[len(notifier.successes)-1] != "Polygon imported successfully" {
		t.Errorf("expected success notification, got %v", notifier.successes)
	}
}

func TestImportPolygon_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing anchor", `{"direction":"after"}`, 400},
		{"anchor out of range", `{"anchor":5,"direction":"after"}`, 422},
		{"negative anchor", `{"anchor":-1,"direction":"after"}`, 422},
		{"bad direction", `{"anchor":0,"direction":"sideways"}`, 422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(makeDeps())
			id := createMission(t, app)
			drawLine(t, app, id, `{"x":0,"y":0}`, `{"x":1,"y":1}`)
			drawPolygon(t, app, id)

			resp := do(t, app, "POST", "/v1/missions/"+id+"/polygon/import", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}

			snap := decodeSnapshot(t, do(t, app, "GET", "/v1/missions/"+id, ""))
			if len(snap.Route) != 2 {
				t.Errorf("expected route untouched, got %d elements", len(snap.Route))
			}
			if len(snap.Pending) == 0 {
				t.Error("expected pending polygon to survive a failed import")
			}
		})
	}
}

func TestDiscardPending(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)
	drawPolygon(t, app, id)

	snap := decodeSnapshot(t, do(t, app, "DELETE", "/v1/missions/"+id+"/pending-polygon", ""))
	if len(snap.Pending) != 0 {
		t.Errorf("expected no pending polygon, got %d vertices", len(snap.Pending))
	}
}

// ---- Legs & export ----

func TestLegs(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)
	drawLine(t, app, id, `{"x":0,"y":0}`, `{"x":3,"y":4}`)

	resp := do(t, app, "GET", "/v1/missions/"+id+"/legs", "")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var legs []domain.Leg
	if err := json.NewDecoder(resp.Body).Decode(&legs); err != nil {
		t.Fatal(err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
	if legs[0].Display != "--" || legs[1].Display != "5.00" {
		t.Errorf("unexpected distance text %q, %q", legs[0].Display, legs[1].Display)
	}
}

func TestExport_CSVAttachment(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)
	drawLine(t, app, id, `{"x":0,"y":0}`, `{"x":3,"y":4}`)

	resp := do(t, app, "GET", "/v1/missions/"+id+"/export", "")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="coordinates.csv"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	want := "WP,Latitude,Longitude,Distance (m)\n00,0,0,5\n01,3,4,0"
	if got := string(readBody(t, resp.Body)); got != want {
		t.Errorf("unexpected CSV:\n%s\nwant:\n%s", got, want)
	}
}

func TestExport_GeoJSON(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)
	drawLine(t, app, id, `{"x":43.26,"y":-2.93}`, `{"x":43.27,"y":-2.92}`)

	resp := do(t, app, "GET", "/v1/missions/"+id+"/export?format=geojson", "")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "mission.geojson") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 3 {
		t.Errorf("expected collection with route + 2 points, got %s with %d", fc.Type, len(fc.Features))
	}
}

func TestExport_Errors(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)

	resp := do(t, app, "GET", "/v1/missions/"+id+"/export", "")
	if resp.StatusCode != 422 {
		t.Errorf("empty route: expected 422, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		t.Errorf("failed export must not be an attachment, got %q", cd)
	}

	drawLine(t, app, id, `{"x":0,"y":0}`, `{"x":1,"y":1}`)
	resp = do(t, app, "GET", "/v1/missions/"+id+"/export?format=shp", "")
	if resp.StatusCode != 400 {
		t.Errorf("unknown format: expected 400, got %d", resp.StatusCode)
	}
}

func TestListExports(t *testing.T) {
	t.Run("archive disabled", func(t *testing.T) {
		app := setupApp(makeDeps())
		id := createMission(t, app)
		resp := do(t, app, "GET", "/v1/missions/"+id+"/exports", "")
		if resp.StatusCode != 501 {
			t.Fatalf("expected 501, got %d", resp.StatusCode)
		}
	})

	t.Run("archive enabled", func(t *testing.T) {
		repo := &mockExportRepo{
			listFn: func(ctx context.Context, missionID string) ([]domain.ExportRecord, error) {
				return []domain.ExportRecord{{ID: "e1", MissionID: missionID, Name: "coordinates.csv", Size: 42}}, nil
			},
		}
		app := setupApp(makeDeps(func(c *usecases.MissionServiceConfig) { c.Exports = repo }))
		id := createMission(t, app)

		resp := do(t, app, "GET", "/v1/missions/"+id+"/exports", "")
		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var result struct {
			Data []domain.ExportRecord `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatal(err)
		}
		if len(result.Data) != 1 || result.Data[0].Name != "coordinates.csv" {
			t.Errorf("unexpected exports %+v", result.Data)
		}
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &mockExportRepo{
			listFn: func(ctx context.Context, missionID string) ([]domain.ExportRecord, error) {
				return nil, errors.New("connection refused")
			},
		}
		app := setupApp(makeDeps(func(c *usecases.MissionServiceConfig) { c.Exports = repo }))
		id := createMission(t, app)
		if resp := do(t, app, "GET", "/v1/missions/"+id+"/exports", ""); resp.StatusCode != 500 {
			t.Fatalf("expected 500, got %d", resp.StatusCode)
		}
	})
}

// ---- Middleware & system endpoints ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/health", "")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
}

func TestReady_NoBackends(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/ready", "")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 without optional backends, got %d", resp.StatusCode)
	}
}

func TestMissionRoutesAreNotCached(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)

	resp := do(t, app, "GET", "/v1/missions/"+id, "")
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
}

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)

	first := do(t, app, "GET", "/v1/missions/"+id+"/legs", "")
	etag := first.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/missions/"+id+"/legs", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestRequestIDInErrors(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/missions/missing", "")
	apiErr := decodeError(t, resp)
	if apiErr.RequestID == "" {
		t.Error("expected request_id in error body")
	}
	if apiErr.RequestID != resp.Header.Get("X-Request-ID") {
		t.Errorf("request_id %q does not match header %q", apiErr.RequestID, resp.Header.Get("X-Request-ID"))
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/v1/health", "")
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "X-API-Version"} {
		if resp.Header.Get(h) == "" {
			t.Errorf("expected %s header", h)
		}
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "GET", "/ws", "")
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func TestGraphQL_Mission(t *testing.T) {
	app := setupApp(makeDeps())
	id := createMission(t, app)
	drawLine(t, app, id, `{"x":0,"y":0}`, `{"x":3,"y":4}`)

	query := `{"query":"query($id: String!) { mission(id: $id) { name state route { kind point { x y } } legs { wp distance_text } } }","variables":{"id":"` + id + `"}}`
	resp := do(t, app, "POST", "/graphql", query)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Mission struct {
				Name  string `json:"name"`
				State string `json:"state"`
				Route []struct {
					Kind  string            `json:"kind"`
					Point domain.Coordinate `json:"point"`
				} `json:"route"`
				Legs []struct {
					WP           string `json:"wp"`
					DistanceText string `json:"distance_text"`
				} `json:"legs"`
			} `json:"mission"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	m := result.Data.Mission
	if m.Name != "Survey" || m.State != "idle" {
		t.Errorf("unexpected mission %q state %q", m.Name, m.State)
	}
	if len(m.Route) != 2 || m.Route[1].Point.X != 3 {
		t.Errorf("unexpected route %+v", m.Route)
	}
	if len(m.Legs) != 2 || m.Legs[1].DistanceText != "5.00" {
		t.Errorf("unexpected legs %+v", m.Legs)
	}
}

func TestGraphQL_UnknownMission(t *testing.T) {
	app := setupApp(makeDeps())

	resp := do(t, app, "POST", "/graphql", `{"query":"{ legs(id: \"nope\") { wp } }"}`)
	var result struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0].Message, "mission not found") {
		t.Errorf("expected mission not found error, got %+v", result.Errors)
	}
}

func TestGraphQL_EmptyQuery(t *testing.T) {
	app := setupApp(makeDeps())

	if resp := do(t, app, "POST", "/graphql", `{"query":""}`); resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}
