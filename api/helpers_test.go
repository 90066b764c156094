package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"storeit/backend/model"
	"storeit/backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeStore keeps blobs in memory and records deletions
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) ObjectURL(key string) string {
	return "https://cdn.test/" + key
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// failingStore errors on every call, for exercising compensation paths
type failingStore struct{}

func (failingStore) Put(context.Context, string, io.Reader, int64, string) error {
	return fmt.Errorf("bucket unavailable")
}

func (failingStore) Delete(context.Context, string) error {
	return fmt.Errorf("bucket unavailable")
}

func (failingStore) ObjectURL(key string) string { return "https://cdn.test/" + key }

// fakeMailer captures outgoing passcodes instead of dialing SMTP
type fakeMailer struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	fail     bool
}

func (m *fakeMailer) SendPasscode(sendTo, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return fmt.Errorf("smtp rejected recipient")
	}

	m.lastTo = sendTo
	m.lastCode = code
	return nil
}

func newTestAPI(t *testing.T) (*API, *fakeMailer, *fakeStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("session.jwt_secret", "test-secret")
	viper.Set("session.ttl_hours", 1)
	viper.Set("storage.max_usage", int64(2)<<30)
	viper.Set("upload.max_size", int64(50)<<20)
	viper.Set("host.cors_origin", "http://localhost:3000")
	viper.Set("ratelimit.requests_per_second", 1000)
	viper.Set("ratelimit.burst", 1000)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())))
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		model.User{}, model.File{}, model.Session{}, model.Passcode{}, model.PendingUpload{},
	))

	store := newFakeStore()
	mail := &fakeMailer{}

	a := &API{
		DB:     db,
		Hasher: security.New(),
		Store:  store,
		Mail:   mail,
	}
	a.registerRoutes()

	return a, mail, store
}

func doJSON(t *testing.T, a *API, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signUp runs the full registration flow and returns the account ID
func signUp(t *testing.T, a *API, mail *fakeMailer, fullName, email string) string {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/auth/sign-up", gin.H{
		"fullName": fullName,
		"email":    email,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	accountID, _ := parseBody(t, w)["accountId"].(string)
	require.NotEmpty(t, accountID)
	return accountID
}

// verify exchanges the last mailed passcode for a session cookie
func verify(t *testing.T, a *API, mail *fakeMailer, accountID string) *http.Cookie {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/auth/verify", gin.H{
		"accountId": accountID,
		"password":  mail.lastCode,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == "storeit-session" && c.Value != "" {
			return c
		}
	}

	t.Fatal("no session cookie set")
	return nil
}

// signUpAndVerify is the shorthand most file tests want
func signUpAndVerify(t *testing.T, a *API, mail *fakeMailer, fullName, email string) (string, *http.Cookie) {
	t.Helper()

	accountID := signUp(t, a, mail, fullName, email)
	return accountID, verify(t, a, mail, accountID)
}

func uploadFile(t *testing.T, a *API, cookie *http.Cookie, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}
