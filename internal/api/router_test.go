package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"picstream/internal/auth"
	"picstream/internal/database"
	"picstream/internal/models"
	"picstream/internal/services"
	"picstream/internal/storage"
	ws "picstream/internal/websocket"
)

type userEnvelope struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type picsEnvelope struct {
	Pics []models.Pic `json:"pics"`
}

type usersEnvelope struct {
	Users []models.User `json:"users"`
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	uploads, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("uploads: %v", err)
	}

	hub := ws.NewHub()
	tokens := auth.NewTokenService("test-secret")
	userService := services.NewUserService(db)
	followService := services.NewFollowService(db)
	picService := services.NewPicService(db, hub)
	feedService := services.NewFeedService(db)
	trendingService := services.NewTrendingService(db)

	return NewRouter(tokens, userService, followService, picService, feedService, trendingService, uploads, hub)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doForm(t *testing.T, router http.Handler, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, router http.Handler, email, username string) userEnvelope {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/users", "", map[string]string{
		"email": email, "username": username, "name": username, "password": "hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d: %s", username, rec.Code, rec.Body.String())
	}

	var env userEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if env.User.ID == "" || env.Token == "" {
		t.Fatalf("incomplete register response: %s", rec.Body.String())
	}
	return env
}

func TestRegistrationAndLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	u1 := register(t, router, "ann@example.com", "ann")

	// The returned token identifies the new account.
	rec := doJSON(t, router, http.MethodGet, "/api/me", u1.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/me: status %d", rec.Code)
	}
	var me userEnvelope
	json.Unmarshal(rec.Body.Bytes(), &me)
	if me.User.ID != u1.User.ID {
		t.Fatalf("/api/me returned %s, want %s", me.User.ID, u1.User.ID)
	}

	// Conflict statuses follow the field that collided.
	rec = doJSON(t, router, http.MethodPost, "/api/users", "", map[string]string{
		"email": "ann@example.com", "username": "other", "name": "Other", "password": "pw",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("email conflict: status %d, want 403", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/users", "", map[string]string{
		"email": "other@example.com", "username": "ann", "name": "Other", "password": "pw",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("username conflict: status %d, want 409", rec.Code)
	}

	// Missing fields are a 400, bad credentials a 403.
	rec = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{"email": "ann@example.com"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password: status %d, want 400", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ann@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad credentials: status %d, want 403", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ann@example.com", "password": "hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d", rec.Code)
	}

	// Tokens are required, and must be valid, on protected routes.
	if rec := doJSON(t, router, http.MethodGet, "/api/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d, want 401", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/me", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token: status %d, want 401", rec.Code)
	}

	// Unknown profile is a 404.
	if rec := doJSON(t, router, http.MethodGet, "/api/users/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: status %d, want 404", rec.Code)
	}
}

func TestPostFollowFeedAndSearchScenario(t *testing.T) {
	router := newTestRouter(t)

	u1 := register(t, router, "ann@example.com", "ann")
	u2 := register(t, router, "bob@example.com", "bob")

	// U1 posts a captioned pic.
	rec := doForm(t, router, http.MethodPost, "/api/users/"+u1.User.ID+"/pics", u1.Token,
		url.Values{"pic": {"hello #cats"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("create pic: status %d: %s", rec.Code, rec.Body.String())
	}

	// U2 may not post as U1.
	rec = doForm(t, router, http.MethodPost, "/api/users/"+u1.User.ID+"/pics", u2.Token,
		url.Values{"pic": {"impostor"}})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross-account post: status %d, want 403", rec.Code)
	}

	// A post without caption or image is rejected.
	rec = doForm(t, router, http.MethodPost, "/api/users/"+u1.User.ID+"/pics", u1.Token, url.Values{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty post: status %d, want 400", rec.Code)
	}

	// U2 follows U1; repeating it stays a success.
	followPath := "/api/users/" + u2.User.ID + "/follow"
	for i := 0; i < 2; i++ {
		rec = doJSON(t, router, http.MethodPost, followPath, u2.Token, map[string]string{"id": u1.User.ID})
		if rec.Code != http.StatusOK {
			t.Fatalf("follow attempt %d: status %d: %s", i+1, rec.Code, rec.Body.String())
		}
	}

	// U2 may not create edges for U1.
	rec = doJSON(t, router, http.MethodPost, "/api/users/"+u1.User.ID+"/follow", u2.Token,
		map[string]string{"id": u2.User.ID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross-account follow: status %d, want 403", rec.Code)
	}

	// U2's feed carries U1's post.
	rec = doJSON(t, router, http.MethodGet, "/api/users/"+u2.User.ID+"/feed", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("feed: status %d", rec.Code)
	}
	var feed picsEnvelope
	json.Unmarshal(rec.Body.Bytes(), &feed)
	if len(feed.Pics) != 1 || feed.Pics[0].Pic != "hello #cats" {
		t.Fatalf("unexpected feed: %s", rec.Body.String())
	}

	// Hashtag and keyword search find the same post.
	rec = doJSON(t, router, http.MethodGet, "/api/pics/hash/cats", "", nil)
	var byTag picsEnvelope
	json.Unmarshal(rec.Body.Bytes(), &byTag)
	if rec.Code != http.StatusOK || len(byTag.Pics) != 1 || byTag.Pics[0].UserID != u1.User.ID {
		t.Fatalf("hashtag search: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/pics/search?keywords=hello", "", nil)
	var byKeyword picsEnvelope
	json.Unmarshal(rec.Body.Bytes(), &byKeyword)
	if rec.Code != http.StatusOK || len(byKeyword.Pics) != 1 {
		t.Fatalf("keyword search: status %d body %s", rec.Code, rec.Body.String())
	}

	// Metacharacters in keywords do not error and match nothing.
	rec = doJSON(t, router, http.MethodGet, "/api/pics/search?keywords="+url.QueryEscape(`'; DROP TABLE pics;--`), "", nil)
	var hostile picsEnvelope
	json.Unmarshal(rec.Body.Bytes(), &hostile)
	if rec.Code != http.StatusOK || len(hostile.Pics) != 0 {
		t.Fatalf("hostile search: status %d body %s", rec.Code, rec.Body.String())
	}

	// Missing keywords is a 400.
	if rec := doJSON(t, router, http.MethodGet, "/api/pics/search", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing keywords: status %d, want 400", rec.Code)
	}

	// Follower lists see the edge from both sides.
	rec = doJSON(t, router, http.MethodGet, "/api/users/"+u1.User.ID+"/followers", "", nil)
	var followers usersEnvelope
	json.Unmarshal(rec.Body.Bytes(), &followers)
	if len(followers.Users) != 1 || followers.Users[0].ID != u2.User.ID {
		t.Fatalf("followers: %s", rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, "/api/users/"+u2.User.ID+"/follow", "", nil)
	var following usersEnvelope
	json.Unmarshal(rec.Body.Bytes(), &following)
	if len(following.Users) != 1 || following.Users[0].ID != u1.User.ID {
		t.Fatalf("following: %s", rec.Body.String())
	}

	// Unfollow empties the feed of U1's posts again.
	rec = doJSON(t, router, http.MethodDelete, followPath+"/"+u1.User.ID, u2.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unfollow: status %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/users/"+u2.User.ID+"/feed", "", nil)
	var after picsEnvelope
	json.Unmarshal(rec.Body.Bytes(), &after)
	if len(after.Pics) != 0 {
		t.Fatalf("feed after unfollow: %s", rec.Body.String())
	}
}

func TestFeedPaginationWindows(t *testing.T) {
	router := newTestRouter(t)
	u1 := register(t, router, "ann@example.com", "ann")

	captions := []string{"one", "two", "three", "four"}
	for _, c := range captions {
		rec := doForm(t, router, http.MethodPost, "/api/users/"+u1.User.ID+"/pics", u1.Token,
			url.Values{"pic": {c}})
		if rec.Code != http.StatusOK {
			t.Fatalf("create %q: status %d", c, rec.Code)
		}
	}

	page := func(query string) []models.Pic {
		rec := doJSON(t, router, http.MethodGet, "/api/users/"+u1.User.ID+"/feed"+query, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("feed %s: status %d", query, rec.Code)
		}
		var env picsEnvelope
		json.Unmarshal(rec.Body.Bytes(), &env)
		return env.Pics
	}

	full := page("")
	if len(full) != 4 {
		t.Fatalf("got %d pics, want 4", len(full))
	}

	first := page("?offset=0&limit=2")
	second := page("?offset=2&limit=2")
	combined := append(first, second...)
	if len(combined) != 4 {
		t.Fatalf("pages cover %d pics, want 4", len(combined))
	}
	for i := range full {
		if combined[i].ID != full[i].ID {
			t.Fatalf("pages overlap or gap at %d", i)
		}
	}

	// Bad pagination input falls back to defaults instead of erroring.
	if got := page("?offset=-3&limit=bogus"); len(got) != 4 {
		t.Fatalf("fallback pagination returned %d pics, want 4", len(got))
	}
}
