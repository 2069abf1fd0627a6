package oauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	githubendpoint "golang.org/x/oauth2/github"

	"github.com/gigmarket/account-security/internal/core/domain"
)

const githubAPI = "https://api.github.com"

// GitHub signs users in with GitHub OAuth. GitHub has no ID token, so the
// profile and primary verified email come from the REST API.
type GitHub struct {
	oauth *oauth2.Config
	api   *resty.Client
}

func NewGitHub(cfg Config) (*GitHub, error) {
	if err := cfg.validate("github"); err != nil {
		return nil, err
	}
	return newGitHub(cfg, githubendpoint.Endpoint, githubAPI), nil
}

func newGitHub(cfg Config, endpoint oauth2.Endpoint, apiURL string) *GitHub {
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		api: resty.New().
			SetBaseURL(apiURL).
			SetHeader("Accept", "application/vnd.github+json"),
	}
}

func (g *GitHub) Name() domain.Provider { return domain.ProviderGitHub }

func (g *GitHub) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *GitHub) Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange: %w", err)
	}

	var user githubUser
	if err := g.get(ctx, token.AccessToken, "/user", &user); err != nil {
		return nil, err
	}

	var emails []githubEmail
	if err := g.get(ctx, token.AccessToken, "/user/emails", &emails); err != nil {
		return nil, err
	}

	email := ""
	for _, e := range emails {
		if e.Primary && e.Verified {
			email = e.Email
			break
		}
	}
	if email == "" {
		return nil, errors.New("github account has no verified primary email")
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return &domain.OAuthProfile{
		Provider:      domain.ProviderGitHub,
		Subject:       strconv.FormatInt(user.ID, 10),
		Email:         email,
		Name:          name,
		Image:         user.AvatarURL,
		EmailVerified: true,
	}, nil
}

func (g *GitHub) get(ctx context.Context, accessToken, path string, out any) error {
	resp, err := g.api.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("github %s: status %d", path, resp.StatusCode())
	}
	return nil
}
