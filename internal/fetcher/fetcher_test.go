package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"
)

const checkResponse = `{
	"userInfo": {
		"user": {
			"id": "6745191554350760966",
			"secUid": "MS4wLjABAAAAtest",
			"uniqueId": "testuser",
			"nickname": "Test User",
			"signature": "dancer 💃 collab: biz@testuser.com",
			"ttSeller": true,
			"avatarLarger": "https://p16.tiktokcdn.com/avatar.jpeg"
		},
		"stats": {
			"followerCount": 150000,
			"followingCount": 320,
			"heartCount": 2400000
		}
	}
}`

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, "test-key", 5*time.Second)
}

func TestResolveProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/check" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("username"); got != "testuser" {
			t.Errorf("username query = %q", got)
		}
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		io.WriteString(w, checkResponse)
	}))
	defer srv.Close()

	res := newTestClient(srv).ResolveProfile(context.Background(), "testuser")

	if res.Outcome != OutcomeOK {
		t.Fatalf("outcome = %v, want ok", res.Outcome)
	}
	if res.SecUID != "MS4wLjABAAAAtest" {
		t.Errorf("secUid = %q", res.SecUID)
	}
	if res.Email != "biz@testuser.com" {
		t.Errorf("email = %q, want extracted from bio", res.Email)
	}
	if res.Metrics.Followers != 150000 || res.Metrics.Following != 320 || res.Metrics.AccountLikes != 2400000 {
		t.Errorf("metrics = %+v", res.Metrics)
	}
	if res.Metrics.Seller == nil || !*res.Metrics.Seller {
		t.Error("seller flag lost")
	}
	if want := "https://www.tiktok.com/@testuser"; res.Metrics.ProfileURL != want {
		t.Errorf("profile url = %q, want %q", res.Metrics.ProfileURL, want)
	}
}

func TestResolveProfileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	res := newTestClient(srv).ResolveProfile(context.Background(), "ghost")
	if res.Outcome != OutcomeNotFound {
		t.Errorf("outcome = %v, want not-found", res.Outcome)
	}
	if res.SecUID != "" {
		t.Errorf("secUid = %q, want empty on miss", res.SecUID)
	}
}

func TestResolveProfileEmptySecUID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"userInfo": {"user": {"uniqueId": "testuser"}}}`)
	}))
	defer srv.Close()

	res := newTestClient(srv).ResolveProfile(context.Background(), "testuser")
	if res.Outcome != OutcomeNotFound {
		t.Errorf("outcome = %v, want not-found when the payload has no secUid", res.Outcome)
	}
}

func TestResolveProfileTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // server gone: transport error

	res := NewClient(srv.URL, "k", time.Second).ResolveProfile(context.Background(), "testuser")
	if res.Outcome != OutcomeTransient {
		t.Errorf("outcome = %v, want transient", res.Outcome)
	}
}

func TestResolveProfileMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "<html>rate limited</html>")
	}))
	defer srv.Close()

	res := newTestClient(srv).ResolveProfile(context.Background(), "testuser")
	if res.Outcome != OutcomeTransient {
		t.Errorf("outcome = %v, want transient on malformed payload", res.Outcome)
	}
}

func TestUserPostsPagination(t *testing.T) {
	page := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("secUid"); got != "sec123" {
			t.Errorf("secUid query = %q", got)
		}
		switch page {
		case 0:
			if got := r.URL.Query().Get("cursor"); got != "0" {
				t.Errorf("first cursor = %q, want 0", got)
			}
			fmt.Fprint(w, `{"itemList": [{"id": "1"}, {"id": "2"}], "cursor": "1700000000", "hasMore": true}`)
		case 1:
			if got := r.URL.Query().Get("cursor"); got != "1700000000" {
				t.Errorf("second cursor = %q, want continuation value", got)
			}
			fmt.Fprint(w, `{"itemList": [{"id": "2"}, {"id": "3"}], "cursor": "", "hasMore": false}`)
		default:
			t.Error("fetched past the last page")
		}
		page++
	}))
	defer srv.Close()

	items, err := newTestClient(srv).UserPosts(context.Background(), "sec123")
	if err != nil {
		t.Fatalf("UserPosts: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 with the duplicate dropped", len(items))
	}
	if items[0].ID != "1" || items[2].ID != "3" {
		t.Errorf("item order = %s..%s", items[0].ID, items[2].ID)
	}
}

func TestUserPostsRetriesConnReset(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			// Promise a body and cut it short so the read fails mid-flight.
			w.Header().Set("Content-Length", "1024")
			io.WriteString(w, "{")
			return
		}
		fmt.Fprint(w, `{"itemList": [{"id": "1"}], "hasMore": false}`)
	}))
	defer srv.Close()

	items, err := newTestClient(srv).UserPosts(context.Background(), "sec123")
	if err != nil {
		t.Fatalf("UserPosts after one reset: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1", len(items))
	}
	if attempts != 2 {
		t.Errorf("server saw %d attempts, want exactly one retry", attempts)
	}
}

func TestIsConnReset(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"econnreset", syscall.ECONNRESET, true},
		{"wrapped econnreset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"message match", errors.New("read tcp 1.2.3.4: connection reset by peer"), true},
		{"status error", &statusError{code: 500, url: "http://x"}, false},
		{"plain error", errors.New("no such host"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnReset(tt.err); got != tt.want {
				t.Errorf("isConnReset(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
