package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("got user %q, want u1", userID)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc := NewTokenService("test-secret")
	other := NewTokenService("other-secret")

	if _, err := svc.Verify("not-a-token"); err == nil {
		t.Fatal("malformed token verified")
	}

	token, err := other.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(token); err == nil {
		t.Fatal("token signed with a different key verified")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret")

	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Verify(expired); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestMiddleware(t *testing.T) {
	svc := NewTokenService("test-secret")

	var gotCaller string
	protected := svc.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller, _ = CallerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "garbage", http.StatusUnauthorized},
		{"raw token", token, http.StatusOK},
		{"bearer token", "Bearer " + token, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotCaller = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK && gotCaller != "u1" {
				t.Fatalf("caller not propagated, got %q", gotCaller)
			}
		})
	}
}
