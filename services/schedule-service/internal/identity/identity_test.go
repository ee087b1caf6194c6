package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicbook/clinicbook/libs/auth"
)

func signToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token, err := auth.SignHS256(auth.Claims{
		Sub:   "user-1",
		Email: "ada@example.com",
		Role:  "admin",
		Iat:   time.Now().Unix(),
		Exp:   exp.Unix(),
	}, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestJWTValidator_HS256(t *testing.T) {
	v := NewJWTValidator("sekrit", nil)
	token := signToken(t, "sekrit", time.Now().Add(time.Hour))

	id, err := v.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if id.ID != "user-1" || id.Email != "ada@example.com" || id.Role != "admin" {
		t.Fatalf("identity = %+v", id)
	}
}

func TestJWTValidator_Rejections(t *testing.T) {
	v := NewJWTValidator("sekrit", nil)

	cases := map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": signToken(t, "other", time.Now().Add(time.Hour)),
		"expired":      signToken(t, "sekrit", time.Now().Add(-time.Minute)),
	}
	for name, token := range cases {
		if _, err := v.Validate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestRemoteValidator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tokens/validate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user-9","email":"x@example.com","role":"user"}`))
	}))
	defer srv.Close()

	v := NewRemoteValidator(srv.URL)

	id, err := v.Validate(context.Background(), "good")
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if id.ID != "user-9" {
		t.Fatalf("identity = %+v", id)
	}

	if _, err := v.Validate(context.Background(), "bad"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Unreachable provider is an auth failure, not an internal error.
	down := NewRemoteValidator("http://127.0.0.1:1")
	if _, err := down.Validate(context.Background(), "good"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unreachable provider, got %v", err)
	}
}

type staticValidator struct {
	id  Identity
	err error
}

func (v staticValidator) Validate(context.Context, string) (Identity, error) {
	return v.id, v.err
}

func TestRequireAuth(t *testing.T) {
	var seen Identity
	handler := RequireAuth(staticValidator{id: Identity{ID: "user-1"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = FromContext(r.Context())
		}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/schedules", nil)
	req.Header.Set("Authorization", "Bearer tok")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seen.ID != "user-1" {
		t.Fatalf("identity not propagated: %+v", seen)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schedules", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header status = %d", rec.Code)
	}

	denied := RequireAuth(staticValidator{err: ErrUnauthorized})(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/schedules", nil)
	req.Header.Set("Authorization", "Bearer tok")
	denied.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("rejected token status = %d", rec.Code)
	}
}
