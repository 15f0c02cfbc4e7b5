package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-filevault/config"
	"github.com/oksasatya/go-ddd-filevault/internal/container"
	"github.com/oksasatya/go-ddd-filevault/internal/domain/repository/repotest"
	"github.com/oksasatya/go-ddd-filevault/internal/infrastructure/storage"
	"github.com/oksasatya/go-ddd-filevault/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-filevault/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

const unauthorizedBody = `{"error":"Unauthorized: Invalid or missing token"}`

type testApp struct {
	t      *testing.T
	engine  *gin.Engine
	files   *repotest.Files
	uploads string
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{AppName: "filevault-test"}
	}
	files := repotest.NewFiles()
	uploads := filepath.Join(t.TempDir(), "uploads")
	c := &container.Container{
		Config: cfg,
		Logger: helpers.NewNopLogger(),
		Users:  repotest.NewUsers(),
		Files:  files,
		Blobs:  storage.NewLocalStore(uploads),
		JWT:    helpers.NewJWTManager("router-test-secret", time.Hour),
	}

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware())
	reg := NewRegistry(engine)
	InitModules(reg, c)
	reg.RegisterAll()
	return &testApp{t: t, engine: engine, files: files, uploads: uploads}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) json(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(req)
}

func (a *testApp) upload(token, filename, mime string, content []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if mime != "" {
		h.Set("Content-Type", mime)
	}
	pw, err := mw.CreatePart(h)
	require.NoError(a.t, err)
	_, err = pw.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return a.do(req)
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (a *testApp) register(name, email, password, role string) authBody {
	a.t.Helper()
	w := a.json(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password, "role": role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var out authBody
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestFileLifecycle(t *testing.T) {
	app := newTestApp(t, nil)

	reg := app.register("Ana", " Ana@Test.com ", "secret1", "cliente")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ana@test.com", reg.User.Email)
	assert.Equal(t, "cliente", reg.User.Role)

	w := app.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@test.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[authBody](t, w).Token

	w = app.json(http.MethodPost, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"user_id": reg.User.ID, "email": "ana@test.com", "role": "cliente"},
		decode[map[string]string](t, w))

	w = app.upload(token, "notes.txt", "text/plain", []byte("hello"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	uploaded := decode[map[string]any](t, w)
	assert.Equal(t, "notes.txt", uploaded["original_name"])
	assert.Equal(t, "text/plain", uploaded["mime"])
	assert.EqualValues(t, 5, uploaded["size"])
	assert.Equal(t, "private", uploaded["visibility"])
	assert.Equal(t, reg.User.ID, uploaded["owner_id"])
	assert.NotContains(t, uploaded, "stored_name")
	fileID := uploaded["id"].(string)

	w = app.json(http.MethodGet, "/api/files", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, fileID, list[0]["id"])

	w = app.json(http.MethodGet, "/api/files/"+fileID+"/download", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="notes.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "5", w.Header().Get("Content-Length"))

	w = app.json(http.MethodPatch, "/api/files/"+fileID+"/visibility", token, map[string]string{"visibility": " PUBLIC "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"visibility":"public"}`, w.Body.String())

	w = app.json(http.MethodDelete, "/api/files/"+fileID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = app.json(http.MethodDelete, "/api/files/"+fileID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found: File not found"}`, w.Body.String())

	w = app.json(http.MethodGet, "/api/files", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestOtherUsersFilesAreInvisible(t *testing.T) {
	app := newTestApp(t, nil)
	ana := app.register("Ana", "ana@test.com", "secret1", "cliente")
	bob := app.register("Bob", "bob@test.com", "secret2", "colaborador")

	w := app.upload(ana.Token, "a.txt", "text/plain", []byte("ana only"))
	require.Equal(t, http.StatusCreated, w.Code)
	fileID := decode[map[string]any](t, w)["id"].(string)

	w = app.json(http.MethodGet, "/api/files", bob.Token, nil)
	assert.Equal(t, "[]", w.Body.String())

	notFound := `{"error":"Not found: File not found"}`
	w = app.json(http.MethodGet, "/api/files/"+fileID+"/download", bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, notFound, w.Body.String())

	w = app.json(http.MethodPatch, "/api/files/"+fileID+"/visibility", bob.Token, map[string]string{"visibility": "public"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, notFound, w.Body.String())

	w = app.json(http.MethodDelete, "/api/files/"+fileID, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, app.files.Len())

	// still private and intact for the owner
	w = app.json(http.MethodGet, "/api/files", ana.Token, nil)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "private", list[0]["visibility"])
}

func TestRequestErrors(t *testing.T) {
	app := newTestApp(t, nil)
	ana := app.register("Ana", "ana@test.com", "secret1", "cliente")

	cases := []struct {
		name   string
		w      func() *httptest.ResponseRecorder
		status int
		body   string
	}{
		{
			name:   "duplicate email",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ana", "email": "ANA@test.com", "password": "secret1", "role": "cliente"}) },
			status: http.StatusBadRequest,
			body:   `{"error":"Bad request: Email already registered"}`,
		},
		{
			name:   "invalid json",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodPost, "/api/auth/register", "", "{") },
			status: http.StatusBadRequest,
			body:   `{"error":"Bad request: invalid json"}`,
		},
		{
			name:   "bad role",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Eve", "email": "eve@test.com", "password": "secret1", "role": "admin"}) },
			status: http.StatusBadRequest,
			body:   `{"error":"Bad request: role must be 'cliente' or 'colaborador'"}`,
		},
		{
			name:   "wrong password",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@test.com", "password": "wrong-pass"}) },
			status: http.StatusUnauthorized,
			body:   `{"error":"Unauthorized: Invalid credentials"}`,
		},
		{
			name:   "unknown email",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@test.com", "password": "secret1"}) },
			status: http.StatusUnauthorized,
			body:   `{"error":"Unauthorized: Invalid credentials"}`,
		},
		{
			name:   "missing token",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodGet, "/api/files", "", nil) },
			status: http.StatusUnauthorized,
			body:   unauthorizedBody,
		},
		{
			name:   "garbage token",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodPost, "/api/auth/me", "not-a-jwt", nil) },
			status: http.StatusUnauthorized,
			body:   unauthorizedBody,
		},
		{
			name:   "invalid file id",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodGet, "/api/files/xyz/download", ana.Token, nil) },
			status: http.StatusBadRequest,
			body:   `{"error":"Bad request: Invalid file id"}`,
		},
		{
			name:   "unknown file id",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodGet, "/api/files/0123456789abcdef01234567/download", ana.Token, nil) },
			status: http.StatusNotFound,
			body:   `{"error":"Not found: File not found"}`,
		},
		{
			name:   "invalid visibility",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodPatch, "/api/files/0123456789abcdef01234567/visibility", ana.Token, map[string]string{"visibility": "friends"}) },
			status: http.StatusBadRequest,
			body:   `{"error":"Bad request: visibility must be public|private"}`,
		},
		{
			name:   "upload without multipart",
			w:      func() *httptest.ResponseRecorder { return app.json(http.MethodPost, "/api/files/upload", ana.Token, `{}`) },
			status: http.StatusBadRequest,
			body:   `{"error":"Bad request: Invalid multipart"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := tc.w()
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestUploadWithoutParts(t *testing.T) {
	app := newTestApp(t, nil)
	ana := app.register("Ana", "ana@test.com", "secret1", "cliente")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ana.Token)

	w := app.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Bad request: No file uploaded"}`, w.Body.String())
	assert.Zero(t, app.files.Len())
}

func TestUploadSanitizesNameAndDefaultsMime(t *testing.T) {
	app := newTestApp(t, nil)
	ana := app.register("Ana", "ana@test.com", "secret1", "cliente")

	w := app.upload(ana.Token, "../../etc/passwd", "", []byte("x"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f := decode[map[string]any](t, w)
	assert.Equal(t, "passwd", f["original_name"])
	assert.Equal(t, "application/octet-stream", f["mime"])

	w = app.json(http.MethodGet, "/api/files/"+f["id"].(string)+"/download", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="passwd"`, w.Header().Get("Content-Disposition"))
}

func TestDownloadLengthMatchesStoredContent(t *testing.T) {
	app := newTestApp(t, nil)
	ana := app.register("Ana", "ana@test.com", "secret1", "cliente")

	w := app.upload(ana.Token, "log.txt", "text/plain", []byte("v1"))
	require.Equal(t, http.StatusCreated, w.Code)
	fileID := decode[map[string]any](t, w)["id"].(string)

	entries, err := os.ReadDir(app.uploads)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	replaced := []byte("version two, longer")
	require.NoError(t, os.WriteFile(filepath.Join(app.uploads, entries[0].Name()), replaced, 0o644))

	w = app.json(http.MethodGet, "/api/files/"+fileID+"/download", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(replaced), w.Body.String())
	assert.Equal(t, strconv.Itoa(len(replaced)), w.Header().Get("Content-Length"))
}

func TestSystemRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.json(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "filevault-test", body["name"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = app.json(http.MethodGet, "/api/debug/vars", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	debug := newTestApp(t, &config.Config{AppName: "filevault-test", DebugMetricsEnabled: true})
	w = debug.json(http.MethodGet, "/api/debug/vars", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "memstats"))
}
