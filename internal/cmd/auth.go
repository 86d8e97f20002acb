package cmd

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/util"
)

// DoLogin exchanges username and password for a credential pair and stores it.
// Missing values are prompted for.
func DoLogin(ctx context.Context, rt *Runtime, username, password string, options *Options) error {
	var err error
	if strings.TrimSpace(username) == "" {
		if username, err = options.prompt("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = options.prompt("Password: "); err != nil {
			return err
		}
	}
	pair, err := rt.API.Auth.Login(ctx, username, password)
	if err != nil {
		log.Errorf("StackIt login failed: %v", err)
		return err
	}
	log.Debugf("stored access credential %s", util.HideToken(pair.Access))
	_, _ = fmt.Fprintf(options.out(), "Logged in as %s (profile %s)\n", username, rt.Store.Profile())
	return nil
}

// DoRegister creates an account and, on success, logs in with the same credentials.
func DoRegister(ctx context.Context, rt *Runtime, username, email, password string, options *Options) error {
	var err error
	if strings.TrimSpace(username) == "" {
		if username, err = options.prompt("Username: "); err != nil {
			return err
		}
	}
	if strings.TrimSpace(email) == "" {
		if email, err = options.prompt("Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = options.prompt("Password: "); err != nil {
			return err
		}
	}
	if _, err = rt.API.Auth.Register(ctx, username, email, password); err != nil {
		log.Errorf("StackIt registration failed: %v", err)
		return err
	}
	_, _ = fmt.Fprintf(options.out(), "Account %s created\n", username)
	return DoLogin(ctx, rt, username, password, options)
}

// DoLogout clears the stored credentials.
func DoLogout(ctx context.Context, rt *Runtime, options *Options) error {
	if err := rt.API.Auth.Logout(ctx); err != nil {
		log.Errorf("logout failed: %v", err)
		return err
	}
	_, _ = fmt.Fprintln(options.out(), "Logged out")
	return nil
}

// DoWhoAmI prints the authenticated user.
func DoWhoAmI(ctx context.Context, rt *Runtime, options *Options) error {
	user, err := rt.API.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(options.out(), "%v (id %v, %v)\n", user["username"], user["id"], user["email"])
	return nil
}
