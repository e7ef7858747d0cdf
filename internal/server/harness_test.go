package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"connecto/internal/config"
	"connecto/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       testSecret,
		JWTIssuer:       "connecto-api",
		JWTAudience:     "connecto-client",
		AllowedOrigins:  "http://localhost:5173",
		DefaultPageSize: 10,
	}
}

// newTestEnv builds the full app on in-memory sqlite and miniredis.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	mr, rdb := testutil.NewTestRedis(t)

	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return &testEnv{srv: srv, app: app, db: db, mr: mr}
}

func signToken(t *testing.T, userID uint, extra jwt.MapClaims) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "connecto-api",
		"aud": "connecto-client",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// do sends a request as userID (0 means anonymous) and returns the status
// and raw body.
func (e *testEnv) do(t *testing.T, method, url string, userID uint, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID, nil))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// doJSON is do followed by decoding the body into out.
func (e *testEnv) doJSON(t *testing.T, method, url string, userID uint, body any, out any) int {
	t.Helper()
	status, raw := e.do(t, method, url, userID, body)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return status
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageBody struct {
	Message string `json:"message"`
}

type userPage struct {
	Items []struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalPages    int   `json:"total_pages"`
	TotalElements int64 `json:"total_elements"`
}

func (p userPage) ids() []uint {
	out := make([]uint, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.ID)
	}
	return out
}
