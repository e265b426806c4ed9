package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aniket-manhas-git/aasra-sewa/internal/auth"
	"github.com/aniket-manhas-git/aasra-sewa/internal/middleware"
	"github.com/aniket-manhas-git/aasra-sewa/internal/repository/memory"
	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	t       *testing.T
	handler http.Handler
	db      *memory.DB
}

func newApp(t *testing.T) *testApp {
	lggr := zap.NewNop().Sugar()
	db := memory.Open()
	tokens := auth.NewManager("secret", time.Hour)

	h := NewRouter(RouterConfig{
		Services: Services{
			Users:      service.NewUserService(db.Users, tokens),
			Properties: service.NewPropertyService(db.Properties, db.Users),
			Admins:     service.NewAdminService(db.Admins, db.Users, db.Properties, tokens, nil),
			Payments:   service.NewPaymentService(db.Payments, db.Properties, db.Users, nil, lggr),
			Faces:      service.NewFaceService(nil, nil, 0.6, lggr),
			Reports:    service.NewReportService(db.Reports, db.Properties),
		},
		Tokens:         tokens,
		Log:            lggr,
		AllowedOrigins: DefaultOrigins,
	})
	return &testApp{t: t, handler: h, db: db}
}

func (a *testApp) newRequest(method, path string, body any) *http.Request {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (a *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := a.newRequest(method, path, body)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return a.serve(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func signUp(email string) map[string]any {
	return map[string]any{
		"fullName":     "Ravi Kumar",
		"email":        email,
		"password":     "Secret@123",
		"phone":        "9876543210",
		"age":          29,
		"bloodGroup":   "B+",
		"address":      "Lalitpur",
		"aadhaarImage": "https://img/aadhaar.png",
		"gender":       "Male",
		"face":         "https://img/face.png",
	}
}

// registerAndLogin signs a user up and returns their session cookie.
func (a *testApp) registerAndLogin(email string) *http.Cookie {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/user/register", signUp(email))
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/v1/user/login", map[string]string{"email": email, "password": "Secret@123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	ck := cookieNamed(w, middleware.UserCookie)
	require.NotNil(a.t, ck)
	return ck
}

func (a *testApp) adminToken() string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/admin/register", map[string]string{
		"username": "root", "email": "root@example.com", "password": "Admin@123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/v1/admin/login", map[string]string{"email": "root@example.com", "password": "Admin@123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(a.t, cookieNamed(w, middleware.AdminCookie))
	token, _ := decode(a.t, w)["token"].(string)
	require.NotEmpty(a.t, token)
	return token
}

func (a *testApp) asAdmin(method, path string, body any, token string) *httptest.ResponseRecorder {
	req := a.newRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return a.serve(req)
}

func shelter() map[string]any {
	return map[string]any{
		"title":         "Hilltop room",
		"landmark":      "Temple gate",
		"pincode":       "44700",
		"fullAddress":   "Ward 9, Hilltop",
		"pricePerNight": 1200,
		"description":   "Quiet room with a view",
		"capacity":      3,
		"images": map[string]string{
			"frontWall": "f", "backWall": "b", "leftWall": "l", "rightWall": "r",
		},
	}
}

func TestHealthAndNoRoute(t *testing.T) {
	app := newApp(t)

	w := app.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", decode(t, w)["status"])
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = app.do(http.MethodGet, "/api/v1/nothing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Route not found", body["message"])
	assert.Equal(t, false, body["success"])
}

func TestCORS(t *testing.T) {
	app := newApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/user/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := app.serve(req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = app.serve(req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRegisterValidation(t *testing.T) {
	app := newApp(t)

	cases := []struct {
		name   string
		mutate func(map[string]any)
		msg    string
	}{
		{"missing fields", func(m map[string]any) { delete(m, "fullName"); delete(m, "phone") }, "Full name is required"},
		{"bad email", func(m map[string]any) { m["email"] = "nope" }, "Invalid email format"},
		{"weak password", func(m map[string]any) { m["password"] = "password" }, "Password must be at least 8 characters long, include uppercase, lowercase, a number, and a special character."},
		{"short phone", func(m map[string]any) { m["phone"] = "12345" }, "Phone number must be exactly 10 digits"},
		{"minor", func(m map[string]any) { m["age"] = 16 }, "Age must be 18 or above"},
		{"blood group", func(m map[string]any) { m["bloodGroup"] = "C+" }, "Invalid blood group"},
		{"gender", func(m map[string]any) { m["gender"] = "unknown" }, "Invalid gender value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := signUp("ravi@example.com")
			tc.mutate(req)
			w := app.do(http.MethodPost, "/api/v1/user/register", req)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.msg, decode(t, w)["message"])
		})
	}

	app.registerAndLogin("ravi@example.com")
	w := app.do(http.MethodPost, "/api/v1/user/register", signUp("ravi@example.com"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", decode(t, w)["message"])
}

func TestUserSession(t *testing.T) {
	app := newApp(t)

	w := app.do(http.MethodGet, "/api/v1/user/profile", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not authenticated", decode(t, w)["message"])

	w = app.do(http.MethodPost, "/api/v1/user/login", map[string]string{"email": "ghost@example.com", "password": "Secret@123"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	ck := app.registerAndLogin("ravi@example.com")
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)

	w = app.do(http.MethodGet, "/api/v1/user/profile", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	usr := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "ravi@example.com", usr["email"])
	assert.NotContains(t, usr, "password")

	w = app.do(http.MethodPut, "/api/v1/user/update", map[string]any{"email": "new@example.com"}, ck)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You are not allowed to update 'email' field.", decode(t, w)["message"])

	w = app.do(http.MethodPut, "/api/v1/user/update", map[string]any{"phone": "123"}, ck)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Phone number must be exactly 10 digits", decode(t, w)["message"])

	w = app.do(http.MethodPut, "/api/v1/user/update", map[string]any{"address": "Bhaktapur"}, ck)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	usr = decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "Bhaktapur", usr["address"])
	assert.Equal(t, "ravi@example.com", usr["email"])

	w = app.do(http.MethodPost, "/api/v1/user/logout", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := cookieNamed(w, middleware.UserCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestPropertyModerationFlow(t *testing.T) {
	app := newApp(t)
	owner := app.registerAndLogin("owner@example.com")
	guest := app.registerAndLogin("guest@example.com")

	w := app.do(http.MethodPost, "/api/v1/property/register", shelter())
	require.Equal(t, http.StatusUnauthorized, w.Code)

	bad := shelter()
	bad["pricePerNight"] = 9000
	w = app.do(http.MethodPost, "/api/v1/property/register", bad, owner)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Price per night cannot exceed ₹5000.", decode(t, w)["message"])

	w = app.do(http.MethodPost, "/api/v1/property/register", shelter(), owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	prop := decode(t, w)["property"].(map[string]any)
	assert.Equal(t, "pending", prop["status"])
	id := prop["_id"].(string)

	w = app.do(http.MethodGet, "/api/v1/property/my", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = app.do(http.MethodPut, "/api/v1/property/update/"+id, map[string]any{"title": "Mine now"}, guest)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodGet, "/api/v1/property/approved", nil, guest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["total"])

	w = app.do(http.MethodGet, "/api/v1/admin/properties", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Admin authentication required", decode(t, w)["message"])

	w = app.do(http.MethodGet, "/api/v1/admin/users", nil, owner)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token := app.adminToken()

	w = app.asAdmin(http.MethodPatch, "/api/v1/admin/property/"+id+"/status", map[string]any{"action": "approved"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.asAdmin(http.MethodPatch, "/api/v1/admin/property/"+id+"/status",
		map[string]any{"action": "approved", "rating": 4, "comment": "clean and safe"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Property approved successfully", decode(t, w)["message"])

	w = app.asAdmin(http.MethodGet, "/api/v1/admin/hosts", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	hosts := decode(t, w)["hosts"].([]any)
	require.Len(t, hosts, 1)
	assert.Equal(t, "owner@example.com", hosts[0].(map[string]any)["email"])

	w = app.do(http.MethodGet, "/api/v1/property/top-rated", nil)
	require.Equal(t, http.StatusOK, w.Code)
	top := decode(t, w)["properties"].([]any)
	require.Len(t, top, 1)
	createdBy := top[0].(map[string]any)["createdBy"].(map[string]any)
	assert.Equal(t, "Ravi Kumar", createdBy["fullName"])

	w = app.do(http.MethodGet, "/api/v1/property/all?minCost=1000&members=2", nil, guest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = app.asAdmin(http.MethodPost, "/api/v1/admin/property/"+id+"/review", map[string]any{"rating": 9}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Rating must be between 1 and 5", decode(t, w)["message"])

	w = app.asAdmin(http.MethodGet, "/api/v1/admin/property/"+id+"/health-report", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Health report not available", decode(t, w)["message"])

	w = app.asAdmin(http.MethodDelete, "/api/v1/admin/property/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.asAdmin(http.MethodGet, "/api/v1/admin/hosts", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["hosts"])

	w = app.do(http.MethodGet, "/api/v1/property/"+id, nil, guest)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Property not found.", decode(t, w)["message"])
}

func TestReportUploadAndDownload(t *testing.T) {
	app := newApp(t)
	owner := app.registerAndLogin("owner@example.com")

	w := app.do(http.MethodPost, "/api/v1/property/register", shelter(), owner)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["property"].(map[string]any)["_id"].(string)

	w = app.do(http.MethodGet, "/api/v1/report/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("report", "report.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/report/"+id, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(owner)
	w = app.serve(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["reportId"])

	w = app.do(http.MethodGet, "/api/v1/report/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 test", w.Body.String())
}

func TestPaymentsAndFacesUnconfigured(t *testing.T) {
	app := newApp(t)
	ck := app.registerAndLogin("guest@example.com")

	w := app.do(http.MethodPost, "/api/v1/payment/create-intent", map[string]any{"propertyId": "x", "amount": 10}, ck)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Stripe is not configured. Please check your environment variables.", decode(t, w)["message"])

	w = app.do(http.MethodGet, "/api/v1/payment/history", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["payments"])

	w = app.do(http.MethodGet, "/api/face/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode(t, w)["message"])

	w = app.do(http.MethodPost, "/api/face/verify", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Both images are required.", decode(t, w)["message"])
}

func TestFormPayloadsWithNumericStrings(t *testing.T) {
	app := newApp(t)

	user := signUp("form@example.com")
	user["age"] = "29"
	w := app.do(http.MethodPost, "/api/v1/user/register", user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user = signUp("minor@example.com")
	user["age"] = "16"
	w = app.do(http.MethodPost, "/api/v1/user/register", user)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Age must be 18 or above", decode(t, w)["message"])

	w = app.do(http.MethodPost, "/api/v1/user/login", map[string]string{"email": "form@example.com", "password": "Secret@123"})
	require.Equal(t, http.StatusOK, w.Code)
	owner := cookieNamed(w, middleware.UserCookie)
	require.NotNil(t, owner)

	w = app.do(http.MethodPut, "/api/v1/user/update", map[string]any{"age": "31"}, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 31, decode(t, w)["user"].(map[string]any)["age"])

	prop := shelter()
	prop["pricePerNight"] = "1200"
	prop["capacity"] = "3"
	prop["propertyImage"] = nil
	prop["healthReportPDF"] = nil
	w = app.do(http.MethodPost, "/api/v1/property/register", prop, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["property"].(map[string]any)
	assert.EqualValues(t, 1200, created["pricePerNight"])
	assert.EqualValues(t, 3, created["capacity"])
	id := created["_id"].(string)

	w = app.do(http.MethodPut, "/api/v1/property/update/"+id, map[string]any{"pricePerNight": "1500", "capacity": "4"}, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["property"].(map[string]any)
	assert.EqualValues(t, 1500, updated["pricePerNight"])
	assert.EqualValues(t, 4, updated["capacity"])

	w = app.do(http.MethodPut, "/api/v1/property/update/"+id, map[string]any{"capacity": "two"}, owner)
	require.Equal(t, http.StatusBadRequest, w.Code)

	token := app.adminToken()
	w = app.asAdmin(http.MethodPatch, "/api/v1/admin/property/"+id+"/status",
		map[string]any{"action": "approved", "rating": "4", "comment": "clean"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.asAdmin(http.MethodPost, "/api/v1/admin/property/"+id+"/review", map[string]any{"rating": "5", "comment": "great"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.asAdmin(http.MethodGet, "/api/v1/admin/property/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	review := decode(t, w)["property"].(map[string]any)["adminReview"].(map[string]any)
	assert.EqualValues(t, 5, review["rating"])
}

func TestAuthRateLimitIgnoresForwardedFor(t *testing.T) {
	app := newApp(t)

	var limited int
	for i := 0; i < 501; i++ {
		req := app.newRequest(http.MethodPost, "/api/v1/user/login", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i%250))
		if w := app.serve(req); w.Code == http.StatusTooManyRequests {
			limited++
			assert.Equal(t, "Too many authentication attempts, please try again later.", decode(t, w)["message"])
		}
	}
	assert.GreaterOrEqual(t, limited, 1)
}
