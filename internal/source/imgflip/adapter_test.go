package imgflip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_memes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchTrending_Success(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"success":true,"data":{"memes":[
		{"id":"181913649","name":"Drake Hotline Bling","url":"https://i.imgflip.com/30b1gx.jpg","width":1200,"height":1200,"box_count":2},
		{"id":"87743020","name":"Two Buttons","url":"https://i.imgflip.com/1g8my4.jpg","width":600,"height":908,"box_count":3}
	]}}`)

	a := NewAdapter(&Config{BaseURL: srv.URL + "/"})
	items, err := a.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "181913649" || items[0].Name != "Drake Hotline Bling" || items[0].BoxCount != 2 {
		t.Errorf("decoded %+v", items[0])
	}
	if items[1].Height != 908 {
		t.Errorf("height = %d, want 908", items[1].Height)
	}
}

func TestFetchTrending_Failures(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "success false", status: http.StatusOK, body: `{"success":false,"error_message":"rate limited"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.status, tc.body)
			a := NewAdapter(&Config{BaseURL: srv.URL})
			if _, err := a.FetchTrending(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFetchTrending_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := NewAdapter(&Config{BaseURL: url})
	if _, err := a.FetchTrending(context.Background()); err == nil {
		t.Error("expected transport error")
	}
}
