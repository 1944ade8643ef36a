package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-forum/backend/internal/accounts"
	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/session"
	"github.com/anonto42/nano-forum/backend/internal/testutil"
	"github.com/anonto42/nano-forum/backend/internal/uploads"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeVerifier map[string]string

func (f fakeVerifier) VerifiedEmail(_ context.Context, idToken string) (string, error) {
	email, ok := f[idToken]
	if !ok {
		return "", errors.New("token rejected")
	}
	return email, nil
}

type testServer struct {
	t         *testing.T
	e         *echo.Echo
	db        *gorm.DB
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	dir := t.TempDir()
	store, err := uploads.NewDiskStore(dir, 10<<20)
	require.NoError(t, err)

	log := testutil.Logger()
	sessions := session.NewManager(repositories.NewGormSessionRepository(db), 24*time.Hour, false, log)
	e := New(Dependencies{
		DB:        db,
		Sessions:  sessions,
		Uploads:   store,
		UploadDir: dir,
		Firebase:  fakeVerifier{"good-token": "a@x.com", "stranger-token": "stranger@x.com"},
		BodyLimit: "25M",
		Logger:    log,
	})
	return &testServer{t: t, e: e, db: db, uploadDir: dir}
}

// createAccount registers directly through the service, bypassing HTTP.
func (s *testServer) createAccount(username, email, password string, role models.Role) *models.User {
	s.t.Helper()
	svc := accounts.NewService(repositories.NewGormUserRepository(s.db))
	user, err := svc.Register(context.Background(), models.CreateUserRequest{
		Username: username, Email: email, Password: password,
	}, role)
	require.NoError(s.t, err)
	return user
}

func (s *testServer) uploadedFiles() []string {
	s.t.Helper()
	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(s.t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// client keeps the cookies a browser would.
type client struct {
	s       *testServer
	cookies map[string]*http.Cookie
}

func (s *testServer) client() *client {
	return &client{s: s, cookies: make(map[string]*http.Cookie)}
}

type response struct {
	code int
	body []byte
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(r.body, &m), string(r.body))
	return m
}

func (r response) list(t *testing.T) []any {
	t.Helper()
	var l []any
	require.NoError(t, json.Unmarshal(r.body, &l), string(r.body))
	return l
}

func (c *client) do(method, path string, body io.Reader, contentType string) response {
	c.s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.s.e.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Value == "" || cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return response{code: rec.Code, body: rec.Body.Bytes()}
}

func (c *client) get(path string) response {
	return c.do(http.MethodGet, path, nil, "")
}

func (c *client) sendJSON(method, path string, payload any) response {
	c.s.t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(c.s.t, err)
	return c.do(method, path, bytes.NewReader(data), echo.MIMEApplicationJSON)
}

type upload struct {
	field, filename string
	content         []byte
}

func (c *client) sendMultipart(method, path string, fields map[string]string, files ...upload) response {
	c.s.t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(c.s.t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(c.s.t, err)
		_, err = part.Write(f.content)
		require.NoError(c.s.t, err)
	}
	require.NoError(c.s.t, w.Close())
	return c.do(method, path, body, w.FormDataContentType())
}

func (c *client) register(username, email, password string) response {
	return c.sendJSON(http.MethodPost, "/api/register", echo.Map{
		"username": username, "email": email, "password": password,
	})
}

func (c *client) login(email, password string) response {
	return c.sendJSON(http.MethodPost, "/api/login", echo.Map{"email": email, "password": password})
}

func (c *client) createTopic(title, content, category string, files ...upload) response {
	return c.sendMultipart(http.MethodPost, "/api/topics", map[string]string{
		"title": title, "content": content, "category": category,
	}, files...)
}

// idPath substitutes id, as decoded from a JSON body or taken from a
// model, for the :id segment of format.
func idPath(format string, id any) string {
	var s string
	switch n := id.(type) {
	case float64:
		s = strconv.FormatFloat(n, 'f', 0, 64)
	case uint:
		s = strconv.FormatUint(uint64(n), 10)
	default:
		panic("unsupported id type")
	}
	return strings.Replace(format, ":id", s, 1)
}
