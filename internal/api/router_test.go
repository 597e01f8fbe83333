package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/memeverse/internal/config"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/repository"
	"github.com/timmy/memeverse/internal/service"
	"github.com/timmy/memeverse/internal/source"
	"github.com/timmy/memeverse/internal/storage"
)

type stubSource struct {
	items []source.TrendingItem
	err   error
}

func (s *stubSource) GetSourceID() string    { return "stub" }
func (s *stubSource) GetDisplayName() string { return "Stub" }
func (s *stubSource) FetchTrending(ctx context.Context) ([]source.TrendingItem, error) {
	return s.items, s.err
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newTestServer(t *testing.T, src *stubSource, objects storage.ObjectStorage) *testServer {
	t.Helper()
	log := logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard})
	kv := repository.NewMemoryKV()
	random := service.NewSeededRandom(3)

	svc := Services{
		Store:    service.NewMemeStore(kv, src, log, &service.MemeStoreConfig{Random: random}),
		Media:    service.NewMediaService(objects, log, service.MediaConfig{}),
		Users:    service.NewUserService(kv, log, nil),
		Captions: service.NewCaptionService(random, 0),
		Sources:  map[string]source.TrendingSource{"stub": src},
		Backend:  "memory",
	}
	r := SetupRouter(svc, config.ServerConfig{Mode: "test", SessionSecret: "test-secret"}, log)
	return &testServer{t: t, handler: r}
}

func (s *testServer) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}
	return w
}

func (s *testServer) json(method, path string, payload interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(method, path, body, "application/json")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubSource{}, nil)
	w := s.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "memory", decode(t, w)["backend"])
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, &stubSource{}, nil)
	w := s.json(http.MethodPost, "/api/v1/memes", map[string]string{"title": "x", "url": "y"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadLikeCommentFlow(t *testing.T) {
	s := newTestServer(t, &stubSource{}, nil)

	w := s.json(http.MethodPost, "/api/v1/login", map[string]string{"email": "ann@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ann", decode(t, w)["name"])

	w = s.json(http.MethodPost, "/api/v1/memes", map[string]string{"title": "Cat", "url": "x.png"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	meme := decode(t, w)
	id := meme["id"].(string)
	assert.Equal(t, "New", meme["category"])
	assert.Equal(t, "ann", meme["author"])
	assert.EqualValues(t, 0, meme["likes"])
	assert.EqualValues(t, 500, meme["width"])

	w = s.json(http.MethodPost, "/api/v1/memes/"+id+"/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	like := decode(t, w)
	assert.Equal(t, true, like["liked"])
	assert.EqualValues(t, 1, like["likes"])

	w = s.do(http.MethodGet, "/api/v1/memes/"+id+"/liked", nil, "")
	assert.Equal(t, true, decode(t, w)["liked"])

	w = s.json(http.MethodPost, "/api/v1/memes/"+id+"/comments", map[string]string{"text": "**so** true <script>alert(1)</script>"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode(t, w)
	assert.NotContains(t, comment["text"], "<script>")
	assert.Contains(t, comment["html"], "<strong>so</strong>")
	assert.Equal(t, "ann", comment["author"])

	w = s.do(http.MethodGet, "/api/v1/memes/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, true, got["liked"])
	comments := got["meme"].(map[string]interface{})["comments"].([]interface{})
	assert.Len(t, comments, 1)

	w = s.do(http.MethodGet, "/api/v1/me/likes", nil, "")
	assert.EqualValues(t, 1, decode(t, w)["total"])
	w = s.do(http.MethodGet, "/api/v1/me/uploads", nil, "")
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(http.MethodGet, "/api/v1/stats", nil, "")
	stats := decode(t, w)
	assert.EqualValues(t, 1, stats["total_memes"])
	assert.EqualValues(t, 1, stats["total_comments"])

	w = s.json(http.MethodPost, "/api/v1/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotFoundAndBadInput(t *testing.T) {
	s := newTestServer(t, &stubSource{}, nil)
	require.Equal(t, http.StatusOK, s.json(http.MethodPost, "/api/v1/login", map[string]string{"name": "Bob"}).Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/memes/nope", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, s.json(http.MethodPost, "/api/v1/memes/nope/like", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.json(http.MethodPost, "/api/v1/memes/nope/comments", map[string]string{"text": "hi"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/memes?category=Bogus", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.json(http.MethodPost, "/api/v1/memes", map[string]string{"title": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.json(http.MethodPost, "/api/v1/memes", map[string]string{"title": "x", "url": "y", "category": "Random"}).Code)
}

func TestTrendingAndExplore(t *testing.T) {
	src := &stubSource{items: []source.TrendingItem{
		{ID: "1", Name: "Drake Hotline Bling", URL: "a.jpg"},
		{ID: "2", Name: "Two Buttons", URL: "b.jpg"},
	}}
	s := newTestServer(t, src, nil)

	w := s.do(http.MethodGet, "/api/v1/memes/trending", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"])

	src.err = errors.New("offline")
	w = s.do(http.MethodGet, "/api/v1/memes/trending", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"], "cached trending memes are served")

	w = s.do(http.MethodGet, "/api/v1/memes?category=Trending&per_page=1", nil, "")
	page := decode(t, w)
	assert.EqualValues(t, 2, page["total"])
	assert.Equal(t, true, page["has_more"])
	assert.Len(t, page["items"], 1)

	w = s.do(http.MethodGet, "/api/v1/memes?page=4611686018427387904&per_page=9223372036854775807", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode(t, w)
	assert.Empty(t, page["items"])
	assert.EqualValues(t, 100, page["per_page"])

	w = s.do(http.MethodGet, "/api/v1/memes?q=drake", nil, "")
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(http.MethodGet, "/api/v1/search?q=buttons", nil, "")
	assert.EqualValues(t, 1, decode(t, w)["total"])
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/search", nil, "").Code)

	w = s.do(http.MethodGet, "/api/v1/memes/top?limit=1", nil, "")
	assert.EqualValues(t, 1, decode(t, w)["total"])
}

func TestMultipartUpload(t *testing.T) {
	objects := storage.NewMemoryStorage("http://cdn.test")
	s := newTestServer(t, &stubSource{}, objects)
	require.Equal(t, http.StatusOK, s.json(http.MethodPost, "/api/v1/login", map[string]string{"name": "Ann"}).Code)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 30))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Uploaded"))
	require.NoError(t, mw.WriteField("category", "Classic"))
	part, err := mw.CreateFormFile("file", "meme.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := s.do(http.MethodPost, "/api/v1/memes/upload", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	meme := decode(t, w)
	assert.EqualValues(t, 40, meme["width"])
	assert.EqualValues(t, 30, meme["height"])
	assert.Contains(t, meme["url"], "http://cdn.test/uploads/")
	assert.Equal(t, "Classic", meme["category"])
}

func TestMultipartUploadRejectsNonImage(t *testing.T) {
	s := newTestServer(t, &stubSource{}, storage.NewMemoryStorage("http://cdn.test"))
	require.Equal(t, http.StatusOK, s.json(http.MethodPost, "/api/v1/login", map[string]string{"name": "Ann"}).Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Not an image"))
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := s.do(http.MethodPost, "/api/v1/memes/upload", &body, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaptionsAndCategories(t *testing.T) {
	s := newTestServer(t, &stubSource{}, nil)

	w := s.json(http.MethodPost, "/api/v1/captions", map[string]string{"prompt": "cat"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["caption"])

	w = s.do(http.MethodGet, "/api/v1/categories", nil, "")
	assert.EqualValues(t, 4, decode(t, w)["total"])
}

func TestAdminIngest(t *testing.T) {
	src := &stubSource{items: []source.TrendingItem{{ID: "9", Name: "Stub", URL: "s.jpg"}}}
	s := newTestServer(t, src, nil)
	require.Equal(t, http.StatusOK, s.json(http.MethodPost, "/api/v1/login", map[string]string{"name": "Admin"}).Code)

	assert.Equal(t, http.StatusBadRequest, s.json(http.MethodPost, "/api/v1/admin/ingest", map[string]string{"source": "missing"}).Code)

	w := s.json(http.MethodPost, "/api/v1/admin/ingest", map[string]string{"source": "stub"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = s.do(http.MethodGet, "/api/v1/admin/ingest/status", nil, "")
	status := decode(t, w)
	assert.Equal(t, "success", status["last_run_status"])
	assert.Equal(t, "stub", status["last_source"])
}
