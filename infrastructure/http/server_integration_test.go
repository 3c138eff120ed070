package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"baletrack/infrastructure/argon"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/cache"
	"baletrack/infrastructure/collections"
	"baletrack/infrastructure/directus"
	"baletrack/infrastructure/directus/directustest"
	"baletrack/infrastructure/session"
	"baletrack/infrastructure/sqlite"
)

const (
	operatorEmail    = "ops@example.com"
	operatorPassword = "secret1"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type integrationEnv struct {
	server   *httptest.Server
	remote   *directustest.Server
	db       *sqlite.DB
	store    *sqlite.SessionStore
	sessions *session.Manager
	audit    *audit.Service
	clock    *testClock
}

func setupIntegrationServer(t *testing.T) (*integrationEnv, *http.Client) {
	t.Helper()
	remote := directustest.NewServer()
	remote.AddUser(operatorEmail, operatorPassword, map[string]any{"first_name": "Rudo", "last_name": "Chari"})

	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "server-integration.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	sealer, err := argon.NewSealer("integration-secret", &argon.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16})
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	store := sqlite.NewSessionStore(db, sealer)

	client, err := directus.NewClient(remote.URL, remote.Client())
	if err != nil {
		t.Fatalf("directus client: %v", err)
	}
	data := collections.New(client, cache.NewQueryCache(time.Minute))
	// Kept away from the wall clock; the browser's cookie must not depend on it.
	clock := &testClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	sessions := session.NewManager(client, session.Options{
		Clock:         clock,
		Store:         store,
		TTL:           3 * time.Hour,
		CheckInterval: time.Hour,
		OnReset:       data.Reset,
	})
	auditSvc := audit.NewService(db)

	s := NewServer(Options{Addr: "127.0.0.1:0"}, data, sessions, auditSvc)
	ts := httptest.NewServer(s.Handler())
	env := &integrationEnv{server: ts, remote: remote, db: db, store: store, sessions: sessions, audit: auditSvc, clock: clock}
	t.Cleanup(func() {
		env.server.Close()
		env.sessions.Close()
		env.remote.Close()
		_ = env.db.Close()
	})
	return env, newHTTPClient(t)
}

func newHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, baseURL, path string, data url.Values) *http.Response {
	t.Helper()
	if data == nil {
		data = url.Values{}
	}
	if token := csrfToken(t, client, baseURL); token != "" {
		data.Set("_csrf", token)
	}
	resp, err := client.PostForm(baseURL+path, data)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func get(t *testing.T, client *http.Client, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func csrfToken(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == "X-CSRF-Token" {
			return c.Value
		}
	}
	return ""
}

func loginAs(t *testing.T, client *http.Client, baseURL, email, password string) {
	t.Helper()

	resp := get(t, client, baseURL, "/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postForm(t, client, baseURL, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("unexpected login redirect: %s", loc)
	}
}

// expectRedirect asserts a 303 and returns the target path.
func expectRedirect(t *testing.T, resp *http.Response, prefix string) string {
	t.Helper()
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, prefix) {
		t.Fatalf("expected redirect to %s, got %s", prefix, loc)
	}
	return loc
}

func pathOf(t *testing.T, location string) string {
	t.Helper()
	u, err := url.Parse(location)
	if err != nil {
		t.Fatalf("parse location %q: %v", location, err)
	}
	return u.Path
}

func TestCSRFPostWithoutTokenRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)

	// No GET first: no CSRF token available in cookie or form.
	resp, err := client.PostForm(env.server.URL+"/login", url.Values{
		"email":    {operatorEmail},
		"password": {operatorPassword},
	})
	if err != nil {
		t.Fatalf("post login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for missing csrf, got %d", resp.StatusCode)
	}
	if env.sessions.IsAuthenticated() {
		t.Fatalf("rejected request must not sign in")
	}
}

func TestCSRFPostWithWrongTokenRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, operatorEmail, operatorPassword)

	resp, err := client.PostForm(env.server.URL+"/farmers", url.Values{
		"_csrf":         {"forged"},
		"grower_number": {"G-1"},
		"first_name":    {"A"},
		"last_name":     {"B"},
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if env.remote.Calls(http.MethodPost, "/items/farmers") != 0 {
		t.Fatalf("forged post reached the remote")
	}
}

func TestPublicRoutes(t *testing.T) {
	env, client := setupIntegrationServer(t)

	if body := readBody(t, get(t, client, env.server.URL, "/health")); body != "ok" {
		t.Fatalf("health = %q", body)
	}
	resp := get(t, client, env.server.URL, "/assets/app.css")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assets status %d", resp.StatusCode)
	}
	resp = get(t, client, env.server.URL, "/metrics")
	if body := readBody(t, resp); !strings.Contains(body, "go_goroutines") {
		t.Fatalf("metrics output missing runtime series")
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Fatalf("security headers missing")
	}
}

func TestProtectedRoutesRedirectWithoutSession(t *testing.T) {
	env, client := setupIntegrationServer(t)
	for _, path := range []string{"/", "/dashboard", "/bales", "/farmers/1", "/scan?code=x"} {
		expectRedirect(t, get(t, client, env.server.URL, path), "/login")
	}
}

func TestLoginFailureShowsError(t *testing.T) {
	env, client := setupIntegrationServer(t)
	_ = readBody(t, get(t, client, env.server.URL, "/login"))

	loc := expectRedirect(t, postForm(t, client, env.server.URL, "/login", url.Values{
		"email":    {operatorEmail},
		"password": {"wrong"},
	}), "/login?")
	body := readBody(t, get(t, client, env.server.URL, loc))
	if !strings.Contains(body, "invalid email or password") {
		t.Fatalf("login page should show the error")
	}
	if env.sessions.IsAuthenticated() {
		t.Fatalf("failed login left a session")
	}
}

func TestLoginReloadLogout(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, operatorEmail, operatorPassword)

	body := readBody(t, get(t, client, env.server.URL, "/dashboard"))
	if !strings.Contains(body, "Rudo Chari") || !strings.Contains(body, "Session: 3h 0m") {
		t.Fatalf("dashboard should show the operator and countdown")
	}
	persisted, err := env.store.Load(context.Background())
	if err != nil || persisted == nil {
		t.Fatalf("session should be persisted, got %v %v", persisted, err)
	}

	// Already signed in: the login screen forwards to the dashboard.
	expectRedirect(t, get(t, client, env.server.URL, "/login"), "/dashboard")

	expectRedirect(t, postForm(t, client, env.server.URL, "/logout", nil), "/login?status=signed")
	if env.sessions.IsAuthenticated() {
		t.Fatalf("logout left a session")
	}
	if persisted, _ := env.store.Load(context.Background()); persisted != nil {
		t.Fatalf("logout left a persisted session")
	}
	expectRedirect(t, get(t, client, env.server.URL, "/dashboard"), "/login")
}

func TestSecondBrowserIsNotLetIn(t *testing.T) {
	env, first := setupIntegrationServer(t)
	loginAs(t, first, env.server.URL, operatorEmail, operatorPassword)

	second := newHTTPClient(t)
	expectRedirect(t, get(t, second, env.server.URL, "/dashboard"), "/login")

	// A stray logout from another browser leaves the station signed in.
	_ = readBody(t, get(t, second, env.server.URL, "/login"))
	expectRedirect(t, postForm(t, second, env.server.URL, "/logout", nil), "/login")
	if !env.sessions.IsAuthenticated() {
		t.Fatalf("foreign logout ended the session")
	}

	// Signing in from the second browser takes the station over.
	loginAs(t, second, env.server.URL, operatorEmail, operatorPassword)
	expectRedirect(t, get(t, first, env.server.URL, "/dashboard"), "/login")
	resp := get(t, second, env.server.URL, "/dashboard")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second browser dashboard status %d", resp.StatusCode)
	}
}

func TestExpiredSessionRedirectsWithNotice(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, operatorEmail, operatorPassword)

	env.clock.Advance(3*time.Hour + time.Second)
	expectRedirect(t, get(t, client, env.server.URL, "/bales"), "/login")

	body := readBody(t, get(t, client, env.server.URL, "/login"))
	if !strings.Contains(body, "Your session expired") {
		t.Fatalf("login page should mention the expiry")
	}
	if persisted, _ := env.store.Load(context.Background()); persisted != nil {
		t.Fatalf("expired session still persisted")
	}
}

func TestFarmerCRUDFlow(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, operatorEmail, operatorPassword)
	base := env.server.URL

	resp := postForm(t, client, base, "/farmers", url.Values{"first_name": {"Tariro"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing fields, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "required") || !strings.Contains(body, `value="Tariro"`) {
		t.Fatalf("rejected form should keep input and show the error")
	}

	loc := expectRedirect(t, postForm(t, client, base, "/farmers", url.Values{
		"grower_number": {"G-100"},
		"first_name":    {"Tariro"},
		"last_name":     {"Dube"},
		"phone_number":  {"0772"},
	}), "/farmers/")
	detail := pathOf(t, loc)

	list := readBody(t, get(t, client, base, "/farmers?q=dube"))
	if strings.Count(list, "G-100") != 1 {
		t.Fatalf("new farmer should be listed exactly once")
	}

	expectRedirect(t, postForm(t, client, base, detail, url.Values{
		"grower_number": {"G-100"},
		"first_name":    {"Tariro"},
		"last_name":     {"Moyo"},
	}), detail)
	if body := readBody(t, get(t, client, base, detail)); !strings.Contains(body, "Tariro Moyo") {
		t.Fatalf("detail should reflect the update")
	}

	expectRedirect(t, postForm(t, client, base, detail+"/delete", nil), "/farmers?status=")
	resp = get(t, client, base, detail)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted farmer status %d", resp.StatusCode)
	}

	logs, err := env.audit.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("audit recent: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(logs))
	}
	if logs[0].Action != audit.ActionDelete || logs[2].Action != audit.ActionCreate || logs[0].UserEmail != operatorEmail {
		t.Fatalf("unexpected audit trail %+v", logs)
	}
}

func TestBaleFlow(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, operatorEmail, operatorPassword)
	base := env.server.URL

	farmerID := env.remote.Seed("farmers", map[string]any{"grower_number": "G-7", "first_name": "Nyasha", "last_name": "Banda"})
	boxID := env.remote.Seed("boxes", map[string]any{"box_number": "BX-1", "box_status": "available"})

	form := readBody(t, get(t, client, base, "/bales/new"))
	if !strings.Contains(form, "Nyasha Banda (G-7)") || !strings.Contains(form, "BX-1 - Open") {
		t.Fatalf("bale form should offer the farmer and box")
	}

	loc := expectRedirect(t, postForm(t, client, base, "/bales", url.Values{
		"bar_code":       {"ZW789012"},
		"lot_number":     {"LOT-9"},
		"grower_number":  {farmerID},
		"box":            {boxID},
		"classification": {"A"},
		"mass":           {"110.5"},
	}), "/bales/")
	detail := pathOf(t, loc)
	loose := expectRedirect(t, postForm(t, client, base, "/bales", url.Values{"bar_code": {"ZW000001"}}), "/bales/")

	list := readBody(t, get(t, client, base, "/bales?q=789012"))
	if !strings.Contains(list, "ZW789012") || strings.Contains(list, "ZW000001") || !strings.Contains(list, "Nyasha Banda") {
		t.Fatalf("bale search should match the barcode substring only")
	}

	box := readBody(t, get(t, client, base, "/boxes/"+boxID))
	if !strings.Contains(box, "ZW789012") || strings.Contains(box, "ZW000001") || !strings.Contains(box, "110.5 kg") {
		t.Fatalf("box detail should list only its own bales")
	}

	scan := readBody(t, get(t, client, base, "/scan?code=lot-9"))
	if !strings.Contains(scan, "Matched by lot number") || !strings.Contains(scan, detail) {
		t.Fatalf("scan should find the bale by lot number")
	}

	resp := get(t, client, base, detail+"/label.pdf")
	pdf := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" || !strings.HasPrefix(pdf, "%PDF-") {
		t.Fatalf("label pdf status %d type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	dash := readBody(t, get(t, client, base, "/dashboard"))
	if !strings.Contains(dash, "ZW000001") || !strings.Contains(dash, "created bales") {
		t.Fatalf("dashboard should show recent bales and activity")
	}

	expectRedirect(t, postForm(t, client, base, pathOf(t, loose)+"/delete", nil), "/bales?status=")
	resp = get(t, client, base, pathOf(t, loose))
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted bale status %d", resp.StatusCode)
	}
}

func TestShipmentFlow(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, operatorEmail, operatorPassword)
	base := env.server.URL

	b1 := env.remote.Seed("bales", map[string]any{"bar_code": "SHIP-1"})
	b2 := env.remote.Seed("bales", map[string]any{"bar_code": "SHIP-2"})

	loc := expectRedirect(t, postForm(t, client, base, "/shipments", url.Values{
		"filters":        {"grade A"},
		"departure_date": {"2026-04-01"},
		"bales":          {b1, b2},
	}), "/shipments/")
	body := readBody(t, get(t, client, base, pathOf(t, loc)))
	if !strings.Contains(body, "SHIP-1") || !strings.Contains(body, "SHIP-2") || !strings.Contains(body, "2026-04-01") {
		t.Fatalf("shipment detail should list its bales")
	}

	resp := postForm(t, client, base, "/shipments", url.Values{"departure_date": {"2026-04-02"}, "arrival_date": {"2026-04-01"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	list := readBody(t, get(t, client, base, "/shipments?q=grade"))
	if !strings.Contains(list, "grade A") {
		t.Fatalf("shipment search should match filters")
	}
}

func TestListDegradesWhenRemoteFails(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, operatorEmail, operatorPassword)

	env.remote.FailNext(http.MethodGet, "/items/boxes", 1)
	resp := get(t, client, env.server.URL, "/boxes")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "could not be loaded") {
		t.Fatalf("list should render with a warning, status %d", resp.StatusCode)
	}

	env.remote.FailNext(http.MethodGet, "/items/boxes/42", 1)
	resp = get(t, client, env.server.URL, "/boxes/42")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("detail read failure status %d", resp.StatusCode)
	}
}

func TestExportsAndHelp(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, operatorEmail, operatorPassword)
	base := env.server.URL

	b1 := env.remote.Seed("bales", map[string]any{"bar_code": "EXP-1", "lot_number": "L-1"})
	env.remote.Seed("bales", map[string]any{"bar_code": "OTHER-2"})
	shipID := env.remote.Seed("bale_shipment", map[string]any{"filters": "export run", "bales": []any{b1}})

	resp := get(t, client, base, "/exports/bales.csv?q=exp")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("bales export status %d type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(body, "id,bar_code,") || !strings.Contains(body, "EXP-1") || strings.Contains(body, "OTHER-2") {
		t.Fatalf("unexpected bales csv:\n%s", body)
	}

	resp = get(t, client, base, "/exports/shipments/"+shipID+"/bales.csv")
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "EXP-1") {
		t.Fatalf("shipment export status %d body:\n%s", resp.StatusCode, body)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "shipment-"+shipID+"-bales.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}

	resp = get(t, client, base, "/exports/shipments/999/bales.csv")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing shipment export status %d", resp.StatusCode)
	}

	recent, err := env.audit.Recent(context.Background(), 5)
	if err != nil || len(recent) != 2 || recent[0].Action != audit.ActionExport || recent[0].EntityID != shipID {
		t.Fatalf("expected export entries, got %+v (%v)", recent, err)
	}
	if !strings.Contains(readBody(t, get(t, client, base, "/dashboard")), "exported bales") {
		t.Fatalf("dashboard should show the export")
	}

	page := readBody(t, get(t, client, base, "/exports"))
	if !strings.Contains(page, "export run") {
		t.Fatalf("exports page should list shipments")
	}
	if help := readBody(t, get(t, client, base, "/help")); !strings.Contains(help, "Receiving a bale") {
		t.Fatalf("help page missing topics")
	}
}
