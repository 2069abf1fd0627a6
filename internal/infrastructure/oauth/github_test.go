package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/gigmarket/account-security/internal/core/domain"
)

func newGitHubServer(t *testing.T, emails string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gh-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"login":"octo","name":"","avatar_url":"https://avatars.test/42"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(emails))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testGitHub(srv *httptest.Server) *GitHub {
	return newGitHub(Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"},
		oauth2.Endpoint{
			AuthURL:  srv.URL + "/login/oauth/authorize",
			TokenURL: srv.URL + "/login/oauth/access_token",
		}, srv.URL)
}

func TestGitHub_ExchangeUsesPrimaryVerifiedEmail(t *testing.T) {
	srv := newGitHubServer(t, `[
		{"email":"old@x.com","primary":false,"verified":true},
		{"email":"octo@x.com","primary":true,"verified":true}
	]`)
	gh := testGitHub(srv)

	profile, err := gh.Exchange(context.Background(), "code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if profile.Provider != domain.ProviderGitHub || profile.Email != "octo@x.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.Name != "octo" {
		t.Fatalf("expected login as name fallback, got %q", profile.Name)
	}
	if profile.Subject != "42" || profile.Image != "https://avatars.test/42" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestGitHub_ExchangeRejectsUnverifiedEmail(t *testing.T) {
	srv := newGitHubServer(t, `[{"email":"octo@x.com","primary":true,"verified":false}]`)
	gh := testGitHub(srv)

	if _, err := gh.Exchange(context.Background(), "code"); err == nil {
		t.Fatalf("expected error for unverified email")
	}
}

func TestGitHub_AuthCodeURLCarriesState(t *testing.T) {
	srv := newGitHubServer(t, `[]`)
	url := testGitHub(srv).AuthCodeURL("st4te")
	if !strings.Contains(url, "state=st4te") || !strings.HasPrefix(url, srv.URL+"/login/oauth/authorize") {
		t.Fatalf("unexpected url: %s", url)
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := NewGitHub(Config{ClientID: "id"}); err == nil {
		t.Fatalf("expected missing fields error")
	}
}
