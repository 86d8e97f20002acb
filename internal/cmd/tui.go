package cmd

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/tui"
)

// DoTUI runs the interactive terminal client until the user quits.
func DoTUI(ctx context.Context, rt *Runtime, options *Options) error {
	// Log lines would corrupt the alternate screen.
	if !rt.Config.LoggingToFile {
		log.SetOutput(io.Discard)
	}
	_, loggedIn := rt.Store.Get(credential.Access)
	return tui.Run(ctx, tui.Options{
		API:      rt.API,
		Profile:  rt.Store.Profile(),
		WebURL:   rt.Config.WebURL,
		LoggedIn: loggedIn,
	}, rt.Notifier, options.out())
}
