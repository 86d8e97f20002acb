package api

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/session"
	"github.com/stackit-qa/stackit-client/sdk/client"
	"github.com/tidwall/gjson"
)

// AuthAPI covers login, registration and the current user.
type AuthAPI struct {
	c *client.Client
}

// Login exchanges username and password for a credential pair and stores it.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (credential.Pair, error) {
	body, err := a.c.Send(ctx, http.MethodPost, "/token/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return credential.Pair{}, err
	}
	pair := credential.Pair{
		Access:  gjson.GetBytes(body, "access").String(),
		Refresh: gjson.GetBytes(body, "refresh").String(),
	}
	if pair.Access == "" {
		return credential.Pair{}, fmt.Errorf("api: login response carries no access credential")
	}
	if err = a.c.Store().SetPair(ctx, pair); err != nil {
		return credential.Pair{}, err
	}
	log.WithField("profile", a.c.Store().Profile()).Infof("logged in as %s", username)
	return pair, nil
}

// Register creates an account. It does not log in.
func (a *AuthAPI) Register(ctx context.Context, username, email, password string) (Object, error) {
	var out Object
	err := a.c.DoJSON(ctx, http.MethodPost, "/auth/register/", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

// CurrentUser returns the authenticated user.
func (a *AuthAPI) CurrentUser(ctx context.Context) (Object, error) {
	var out Object
	err := a.c.DoJSON(ctx, http.MethodGet, "/auth/user/", nil, &out)
	return out, err
}

// Logout clears the stored credentials and emits a session.Invalidated event. The server
// keeps no session so nothing is sent.
func (a *AuthAPI) Logout(ctx context.Context) error {
	store := a.c.Store()
	if err := store.Clear(ctx); err != nil {
		return err
	}
	a.c.Metrics().ObserveInvalidation(string(session.ReasonLogout))
	a.c.Notifier().Notify(ctx, session.Invalidated{Profile: store.Profile(), Reason: session.ReasonLogout})
	return nil
}
