package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dondesang/appdon/auth"
	"github.com/dondesang/appdon/catalog"
	"github.com/dondesang/appdon/controllers"
	"github.com/dondesang/appdon/controllers/admin"
	"github.com/dondesang/appdon/db"
	"github.com/dondesang/appdon/middleware"
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/routes"
	"github.com/dondesang/appdon/store"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var today = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

const adminEmail = "admin@cnts.tg"

type countriesStub struct {
	rows []models.Country
	err  error
}

func (s countriesStub) Countries(context.Context) ([]models.Country, error) { return s.rows, s.err }

type server struct {
	app    *fiber.App
	store  *store.Store
	tokens *auth.Tokens
}

func isAdmin(email string) bool { return email == adminEmail }

func newServer(t *testing.T, countries db.CountryReader) *server {
	t.Helper()
	return newServerCtx(t, countries, context.Background())
}

// newServerCtx derives every request context from base, the way serve derives them from
// its shutdown context.
func newServerCtx(t *testing.T, countries db.CountryReader, base context.Context) *server {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	st := store.New(cat, false, today)
	now := func() time.Time { return today }

	tokens := auth.NewTokens("test-secret-key", time.Hour)
	h := controllers.New(controllers.Deps{
		Store:         st,
		Authenticator: auth.NewAuthenticator(auth.ModeSimulated, 0, st, isAdmin, zap.NewNop()),
		Tokens:        tokens,
		Countries:     countries,
		Now:           now,
	})
	guards := routes.Guards{
		Protected: middleware.Protected(tokens.Secret(), st, zap.NewNop()),
		Admin:     middleware.RequireRole(models.RoleAdmin),
		AuthLimit: func(c *fiber.Ctx) error { return c.Next() },
	}

	app := fiber.New(fiber.Config{BodyLimit: 6 * 1024 * 1024, ErrorHandler: utils.ErrorHandler})
	app.Use(middleware.RequestContext(base, time.Minute))
	routes.SetupCatalogRoutes(app, h)
	routes.SetupAuthRoutes(app, h, guards)
	routes.SetupAppointmentRoutes(app, h, guards)
	routes.SetupDonorRoutes(app, h, guards)
	routes.SetupAdminRoutes(app, admin.New(st, nil, zap.NewNop(), now), guards)
	return &server{app: app, store: st, tokens: tokens}
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.send(t, req, token)
}

func (s *server) send(t *testing.T, req *http.Request, token string) (int, map[string]any) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []any
		require.NoError(t, json.Unmarshal(raw, &list))
		out["list"] = list
	}
	return resp.StatusCode, out
}

func (s *server) login(t *testing.T, email string) string {
	t.Helper()
	status, body := s.do(t, "POST", "/auth/login", "", auth.LoginForm{Email: email, Password: "secret1"})
	require.Equal(t, fiber.StatusOK, status)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

// adminLogin registers the admin with a password and opens a session for it, the way a
// verified deployment does.
func (s *server) adminLogin(t *testing.T) string {
	t.Helper()
	verified := auth.NewAuthenticator(auth.ModeVerified, 0, s.store, isAdmin, zap.NewNop())
	var d auth.SignupDraft
	require.NoError(t, d.Apply(auth.SignupForm{
		FullName: "Admin CNTS", Email: adminEmail, Password: "secret1", PasswordConfirm: "secret1",
		Phone: "+228 22 21 00 00", City: "Lomé", BloodType: "O+", DateOfBirth: "1980-01-01",
	}))
	_, err := verified.Signup(context.Background(), &d)
	require.NoError(t, err)
	u, err := verified.Login(context.Background(), auth.LoginForm{Email: adminEmail, Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, u.Role)

	token, _, err := s.tokens.Issue(u, s.store.StartSession(u.ID), time.Now())
	require.NoError(t, err)
	return token
}

func TestSimulatedLogin_AdminEmailGetsNoConsole(t *testing.T) {
	s := newServer(t, nil)
	token := s.login(t, adminEmail)

	status, _ := s.do(t, "GET", "/admin/dashboard", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAdmin_EditedAlertStaysActive(t *testing.T) {
	s := newServer(t, nil)
	adminToken := s.adminLogin(t)
	donor := s.login(t, "ama@example.tg")

	status, body := s.do(t, "POST", "/admin/alerts", adminToken, map[string]any{
		"title": "Besoin de B-", "message": "Stock bas", "bloodType": "B-", "urgency": "urgent", "units": 4,
	})
	require.Equal(t, fiber.StatusCreated, status)
	id := body["id"].(string)

	status, body = s.do(t, "PUT", "/admin/alerts/"+id, adminToken, map[string]any{
		"title": "Besoin urgent de B-", "message": "Stock très bas", "bloodType": "B-", "urgency": "critical",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["active"])

	status, body = s.do(t, "GET", "/alerts?bloodType=all", donor, nil)
	require.Equal(t, fiber.StatusOK, status)
	var titles []any
	for _, raw := range body["list"].([]any) {
		titles = append(titles, raw.(map[string]any)["title"])
	}
	assert.Contains(t, titles, "Besoin urgent de B-")

	status, body = s.do(t, "POST", "/admin/alerts/"+id+"/deactivate", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["active"])
}

func TestLogin_ReturnsAuthenticatedUser(t *testing.T) {
	s := newServer(t, nil)
	status, body := s.do(t, "POST", "/auth/login", "", auth.LoginForm{Email: "ama@example.tg", Password: "x"})
	require.Equal(t, fiber.StatusOK, status)

	user := body["user"].(map[string]any)
	assert.Equal(t, true, user["authenticated"])
	assert.Equal(t, float64(0), user["totalDonations"])
	assert.Equal(t, auth.DefaultName, user["name"])
	assert.Equal(t, "donor", user["role"])
	assert.NotEmpty(t, body["token"])
}

func TestLogin_CancelledOnShutdown(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	cancel()
	s := newServerCtx(t, nil, base)

	status, body := s.do(t, "POST", "/auth/login", "", auth.LoginForm{Email: "ama@example.tg", Password: "x"})
	assert.Equal(t, fiber.StatusRequestTimeout, status)
	assert.Equal(t, "Request cancelled", body["error"])
	assert.Empty(t, s.store.Donors(models.DonorFilter{}))
}

func TestLogin_MissingFields(t *testing.T) {
	s := newServer(t, nil)
	status, body := s.do(t, "POST", "/auth/login", "", auth.LoginForm{Email: "ama@example.tg"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	fields := body["fields"].(map[string]any)
	assert.Equal(t, "Email et mot de passe requis", fields["password"])
}

func TestSignup_PasswordMismatch(t *testing.T) {
	s := newServer(t, nil)
	status, body := s.do(t, "POST", "/auth/signup", "", map[string]string{
		"fullName":        "Ama Mensah",
		"email":           "ama@example.tg",
		"password":        "secret1",
		"confirmPassword": "secret2",
		"phone":           "+228 90 00 00 00",
		"city":            "Lomé",
		"bloodType":       "O-",
		"dateOfBirth":     "1994-03-12",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	fields := body["fields"].(map[string]any)
	assert.Equal(t, "Les mots de passe ne correspondent pas", fields["confirmPassword"])
	assert.Empty(t, s.store.Donors(models.DonorFilter{}))
}

func TestLogout_EndsSession(t *testing.T) {
	s := newServer(t, nil)
	token := s.login(t, "ama@example.tg")

	status, _ := s.do(t, "GET", "/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, "POST", "/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body := s.do(t, "GET", "/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Session ended", body["error"])
}

func TestAppointments_RequireToken(t *testing.T) {
	s := newServer(t, nil)
	status, _ := s.do(t, "GET", "/appointments", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAppointments_CreateEditCancel(t *testing.T) {
	s := newServer(t, nil)
	token := s.login(t, "ama@example.tg")

	status, body := s.do(t, "POST", "/appointments", token, models.AppointmentForm{Center: "CHU Campus", Date: "2025-10-20"})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Veuillez remplir tous les champs.", body["message"])
	assert.Contains(t, body["fields"], "time")

	status, body = s.do(t, "GET", "/appointments", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["items"])

	status, body = s.do(t, "POST", "/appointments", token, models.AppointmentForm{Center: "CHU Campus", Date: "2025-10-20", Time: "09:00"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "Route d'Aného, Lomé", body["address"])

	status, body = s.do(t, "PUT", "/appointments/1", token, models.AppointmentForm{Center: "CHR Kara", Date: "2025-10-22", Time: "14:00"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "CHR Kara", body["center"])
	assert.Equal(t, "Route d'Aného, Lomé", body["address"])

	status, _ = s.do(t, "DELETE", "/appointments/1", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, "GET", "/appointments/1", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAppointments_RejectsPastDateAndUnknownSlot(t *testing.T) {
	s := newServer(t, nil)
	token := s.login(t, "ama@example.tg")

	status, body := s.do(t, "POST", "/appointments", token, models.AppointmentForm{Center: "CHU Campus", Date: "2025-09-30", Time: "09:00"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["fields"], "date")

	status, body = s.do(t, "POST", "/appointments", token, models.AppointmentForm{Center: "CHU Campus", Date: "2025-10-01", Time: "12:30"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["fields"], "time")
}

func TestAppointmentOptions(t *testing.T) {
	s := newServer(t, nil)
	token := s.login(t, "ama@example.tg")
	status, body := s.do(t, "GET", "/appointments/options", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["centers"], 6)
	assert.Equal(t, "2025-10-01", body["minDate"])
}

func TestAdmin_CompletingAppointmentFeedsHistory(t *testing.T) {
	s := newServer(t, nil)
	donor := s.login(t, "ama@example.tg")
	adminToken := s.adminLogin(t)

	status, _ := s.do(t, "GET", "/admin/dashboard", donor, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, "POST", "/appointments", donor, models.AppointmentForm{Center: "CHU Campus", Date: "2025-10-01", Time: "09:00"})
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = s.do(t, "POST", "/appointments", donor, models.AppointmentForm{Center: "CHR Kara", Date: "2025-11-02", Time: "10:00"})
	require.Equal(t, fiber.StatusCreated, status)

	donors := s.store.Donors(models.DonorFilter{Query: "ama@"})
	require.Len(t, donors, 1)
	path := fmt.Sprintf("/admin/donors/%s/appointments/1/status", donors[0].ID)

	status, _ = s.do(t, "PATCH", path, adminToken, map[string]string{"status": "cancelled"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := s.do(t, "PATCH", path, adminToken, map[string]string{"status": "completed"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "completed", body["status"])

	status, _ = s.do(t, "PATCH", path, adminToken, map[string]string{"status": "pending"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = s.do(t, "GET", "/history", donor, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["totalDonations"])
	assert.Equal(t, float64(3), body["livesSaved"])
	assert.Len(t, body["scheduled"], 1)

	status, body = s.do(t, "GET", "/eligibility", donor, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["canDonateNow"])
	assert.Equal(t, float64(90), body["daysUntilNext"])

	status, body = s.do(t, "GET", "/admin/dashboard", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["total_donations"])
	assert.Equal(t, float64(2), body["total_donors"])
}

func TestAdmin_CenterCRUD(t *testing.T) {
	s := newServer(t, nil)
	adminToken := s.adminLogin(t)

	center := models.Center{
		Name: "Centre de Collecte d'Atakpamé", City: "Atakpamé", Region: "Plateaux",
		Address: "Avenue de la Paix, Atakpamé", Type: models.CenterCentre, Lat: 7.53, Lng: 1.12,
	}
	status, body := s.do(t, "POST", "/admin/centers", adminToken, center)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, float64(7), body["id"])

	status, _ = s.do(t, "POST", "/admin/centers", adminToken, center)
	assert.Equal(t, fiber.StatusConflict, status)

	center.Schedule = "FREQ=SOMETIMES"
	status, body = s.do(t, "PUT", "/admin/centers/7", adminToken, center)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["fields"], "schedule")

	status, body = s.do(t, "POST", "/admin/centers", adminToken, models.Center{Name: "Sans ville"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["fields"], "city")

	token := s.login(t, "ama@example.tg")
	status, body = s.do(t, "GET", "/appointments/options", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["centers"], 7)

	status, _ = s.do(t, "DELETE", "/admin/centers/7", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, "GET", "/centers/7", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdmin_ReportCSV(t *testing.T) {
	s := newServer(t, nil)
	adminToken := s.adminLogin(t)

	req := httptest.NewRequest("GET", "/admin/reports.csv?from=2025-01-01", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "section,key,donors,donations,volume_ml")

	status, _ := s.do(t, "GET", "/admin/reports?from=2025-13-01", adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, "GET", "/admin/reports/latest", adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAlerts_FilteredByDonorBloodType(t *testing.T) {
	s := newServer(t, nil)
	token := s.login(t, "ama@example.tg")

	status, body := s.do(t, "PUT", "/profile", token, models.ProfileUpdate{
		Name: "Ama Mensah", Email: "ama@example.tg", BloodType: "A+",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "A+", body["bloodType"])

	status, body = s.do(t, "GET", "/alerts", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	for _, raw := range body["list"].([]any) {
		bt := raw.(map[string]any)["bloodType"]
		assert.True(t, bt == "" || bt == "A+", "unexpected alert for %v", bt)
	}

	status, body = s.do(t, "GET", "/alerts?bloodType=all", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["list"], 3)

	status, _ = s.do(t, "GET", "/alerts?bloodType=Z", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// an unencoded "+" reaches the handler as a space
	status, raw := s.do(t, "GET", "/alerts?bloodType=O+", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, encoded := s.do(t, "GET", "/alerts?bloodType=O%2B", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, encoded["list"], raw["list"])
	for _, a := range raw["list"].([]any) {
		bt := a.(map[string]any)["bloodType"]
		assert.True(t, bt == "" || bt == "O+", "unexpected alert for %v", bt)
	}
}

func TestProfile_InvalidUpdate(t *testing.T) {
	s := newServer(t, nil)
	token := s.login(t, "ama@example.tg")
	s.login(t, "kofi@example.tg")

	status, body := s.do(t, "PUT", "/profile", token, models.ProfileUpdate{Name: "", Email: "pas-un-email"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	fields := body["fields"].(map[string]any)
	assert.Equal(t, "Champ requis", fields["name"])
	assert.Equal(t, "Email invalide", fields["email"])

	status, _ = s.do(t, "PUT", "/profile", token, models.ProfileUpdate{Name: "Ama", Email: "kofi@example.tg"})
	assert.Equal(t, fiber.StatusConflict, status)
}

func upload(t *testing.T, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "analyse.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{'a'}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	req := httptest.NewRequest("POST", "/profile/analysis", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadAnalysis(t *testing.T) {
	s := newServer(t, nil)
	token := s.login(t, "ama@example.tg")

	status, body := s.send(t, upload(t, models.MaxAnalysisFileSize+1), token)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, status)
	assert.Equal(t, auth.MsgFileTooLarge, body["message"])

	status, body = s.send(t, upload(t, 1024), token)
	require.Equal(t, fiber.StatusCreated, status)
	file := body["analysisFile"].(map[string]any)
	assert.Equal(t, "analyse.pdf", file["name"])
	assert.Equal(t, float64(1024), file["size"])
}

func TestCenters_SortedByDistance(t *testing.T) {
	s := newServer(t, nil)

	status, body := s.do(t, "GET", "/centers?lat=9.55&lng=1.19", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	list := body["list"].([]any)
	require.NotEmpty(t, list)
	first := list[0].(map[string]any)
	assert.Equal(t, "CHR Kara", first["name"])
	assert.Contains(t, first, "distanceKm")

	status, body = s.do(t, "GET", "/centers?region=Kara", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["list"], 1)

	status, _ = s.do(t, "GET", "/centers?lat=abc&lng=1", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCountries(t *testing.T) {
	status, _ := newServer(t, nil).do(t, "GET", "/countries", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)

	status, body := newServer(t, countriesStub{err: errors.New("connection refused")}).do(t, "GET", "/countries", "", nil)
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "connection refused", body["error"])

	status, body = newServer(t, countriesStub{rows: []models.Country{{ID: 1, Name: "Togo"}}}).do(t, "GET", "/countries", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["list"], 1)
}
