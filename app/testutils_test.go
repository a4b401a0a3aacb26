package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sushihentaime/blogauth/internal/blogservice"
	"github.com/sushihentaime/blogauth/internal/common"
	"github.com/sushihentaime/blogauth/internal/storage"
	"github.com/sushihentaime/blogauth/internal/userservice"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig(t *testing.T) *Config {
	return &Config{
		Port:                   "4000",
		Environment:            "testing",
		Version:                "test",
		JWTSecret:              "test-secret-0123456789abcdef",
		JWTIssuer:              "blogauth",
		TokenTTL:               time.Hour,
		RateLimitEnabled:       false,
		RateLimitAuthPerMinute: 5,
		RateLimitAPIPerMinute:  10,
		BlogOwnerOnly:          true,
		StorageDriver:          "local",
		ImagesDir:              t.TempDir(),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApplication wires the services against a fresh postgres container.
// mb may be nil.
func newTestApplication(t *testing.T, cfg *Config, mb common.MessageProducer) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := testLogger()

	tokens, err := userservice.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	assert.NoError(t, err)

	images, err := storage.NewLocalStore(cfg.ImagesDir)
	assert.NoError(t, err)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(db, mb, tokens, logger),
		blogService: blogservice.NewBlogService(db, common.NewCache(5*time.Minute, 10*time.Minute), images, cfg.BlogOwnerOnly, logger),
		limiters:    common.NewCache(limiterExpiry, time.Minute),
		imagesDir:   images.Dir(),
	}

	return app, db
}

func cleanupDB(t *testing.T, db *sql.DB) {
	for _, table := range []string{"blogs", "access_tokens", "users"} {
		_, err := db.Exec("DELETE FROM " + table)
		assert.NoError(t, err)
	}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatalf("could not decode %q: %v", responseBody, err)
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) postMultipart(t *testing.T, path, token string, fields map[string]string, file []byte) (int, http.Header, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		err := mw.WriteField(k, v)
		if err != nil {
			t.Fatal(err)
		}
	}

	if file != nil {
		fw, err := mw.CreateFormFile("banner_image", "banner.png")
		if err != nil {
			t.Fatal(err)
		}
		_, err = fw.Write(file)
		if err != nil {
			t.Fatal(err)
		}
	}

	err := mw.Close()
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

// registerAndLogin creates a user through the API and returns its token.
func (ts *testServer) registerAndLogin(t *testing.T, email string) string {
	status, _, _ := ts.do(t, http.MethodPost, "/user/register", "", map[string]any{
		"name":                  "Test User",
		"email":                 email,
		"password":              "p1",
		"password_confirmation": "p1",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, _, body := ts.do(t, http.MethodPost, "/user/login", "", map[string]any{
		"email":    email,
		"password": "p1",
	})
	assert.Equal(t, http.StatusOK, status)

	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)

	return token
}
