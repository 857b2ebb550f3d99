package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
	"github.com/jwalitptl/solar-admin/pkg/httputil"
)

// loginShapes locate the object holding the token in the login reply.
var loginShapes = httputil.NewNormalizer(
	httputil.NewShapeMatcher("data-token",
		`{"type":"object","required":["data"],"properties":{"data":{"type":"object","required":["token"],"properties":{"token":{"type":"string","minLength":1}}}}}`,
		"data"),
	httputil.NewShapeMatcher("data-access-token",
		`{"type":"object","required":["data"],"properties":{"data":{"type":"object","required":["access_token"],"properties":{"access_token":{"type":"string","minLength":1}}}}}`,
		"data"),
	httputil.NewShapeMatcher("token",
		`{"type":"object","required":["token"],"properties":{"token":{"type":"string","minLength":1}}}`),
	httputil.NewShapeMatcher("access-token",
		`{"type":"object","required":["access_token"],"properties":{"access_token":{"type":"string","minLength":1}}}`),
)

type loginPayload struct {
	Token       string           `json:"token"`
	AccessToken string           `json:"access_token"`
	Admin       *model.AdminUser `json:"admin"`
	User        *model.AdminUser `json:"user"`
	ExpiresIn   int              `json:"expires_in"`
}

type authRepository struct {
	client *backend.Client
	now    func() time.Time
}

func NewAuthRepository(client *backend.Client) repository.AuthRepository {
	return &authRepository{client: client, now: time.Now}
}

func (r *authRepository) Login(ctx context.Context, req *model.LoginRequest) (*model.BackendSession, error) {
	resp, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   req,
	})
	if err != nil {
		return nil, backend.ToAppError("admin", err)
	}

	var p loginPayload
	if _, err := loginShapes.Decode(resp.Body, &p); err != nil {
		if errors.Is(err, httputil.ErrNoShapeMatched) {
			return nil, fmt.Errorf("login reply carried no token: %w", err)
		}
		return nil, fmt.Errorf("decode login reply: %w", err)
	}

	out := &model.BackendSession{Token: p.Token}
	if out.Token == "" {
		out.Token = p.AccessToken
	}
	switch {
	case p.Admin != nil:
		out.Admin = *p.Admin
	case p.User != nil:
		out.Admin = *p.User
	}
	if out.Admin.Email == "" {
		out.Admin.Email = req.Email
	}
	if p.ExpiresIn > 0 {
		exp := r.now().Add(time.Duration(p.ExpiresIn) * time.Second)
		out.ExpiresAt = &exp
	}
	return out, nil
}

func (r *authRepository) Logout(ctx context.Context, token string) error {
	_, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   PathLogout,
		Token:  token,
	})
	if err != nil {
		return backend.ToAppError("session", err)
	}
	return nil
}
