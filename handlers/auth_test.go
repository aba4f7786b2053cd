package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func TestRegisterAndLogin(t *testing.T) {
	_, mux, _ := setupHTTP(t)

	rec := doJSON(t, mux, http.MethodPost, "/register", "",
		map[string]any{"email": "parent@example.com", "password": "s3cret"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodPost, "/login", "",
		map[string]any{"email": "parent@example.com", "password": "s3cret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out.Token == "" {
		t.Fatal("login returned no token")
	}

	// The issued token authorizes API access.
	rec = doJSON(t, mux, http.MethodGet, "/tasks", "Bearer "+out.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("token rejected: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	_, mux, _ := setupHTTP(t)

	rec := doJSON(t, mux, http.MethodPost, "/register", "",
		map[string]any{"email": "parent@example.com", "password": "s3cret"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status=%d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/login", "",
		map[string]any{"email": "parent@example.com", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status=%d, want 401", rec.Code)
	}
}

func TestRegister_Validation(t *testing.T) {
	_, mux, _ := setupHTTP(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad email", map[string]any{"email": "not-an-email", "password": "s3cret"}},
		{"short password", map[string]any{"email": "ok@example.com", "password": "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPost, "/register", "", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400", rec.Code)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d within limit was denied", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("request over limit was allowed")
	}
	// Other clients are unaffected.
	if !rl.Allow("5.6.7.8") {
		t.Fatal("independent client was denied")
	}
}
