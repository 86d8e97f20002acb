// Package main provides the entry point for the StackIt command line client.
// Each flag selects one command; the authenticated HTTP client underneath refreshes
// expired access credentials transparently and reports when the session ends.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/buildinfo"
	"github.com/stackit-qa/stackit-client/internal/cmd"
	"github.com/stackit-qa/stackit-client/internal/config"
	"github.com/stackit-qa/stackit-client/internal/logging"
	"github.com/stackit-qa/stackit-client/internal/session"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = ""
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	var (
		configPath   string
		showVersion  bool
		initConfig   bool
		login        bool
		register     bool
		logout       bool
		whoami       bool
		username     string
		email        string
		password     string
		listQuestion bool
		search       string
		questionID   int
		deleteID     int
		ask          string
		body         string
		tags         string
		listTags     bool
		answerID     int
		acceptID     int
		vote         int
		notify       bool
		markRead     bool
		openID       int
		watch        bool
		pollInterval time.Duration
		tuiMode      bool
	)

	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")
	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.BoolVar(&initConfig, "init-config", false, "Write an example configuration to -config and exit")
	flag.BoolVar(&login, "login", false, "Log in with username and password")
	flag.BoolVar(&register, "register", false, "Create an account and log in")
	flag.BoolVar(&logout, "logout", false, "Forget the stored credentials")
	flag.BoolVar(&whoami, "whoami", false, "Show the logged in user")
	flag.StringVar(&username, "username", "", "Username for -login and -register")
	flag.StringVar(&email, "email", "", "Email for -register")
	flag.StringVar(&password, "password", "", "")
	flag.BoolVar(&listQuestion, "questions", false, "List questions")
	flag.StringVar(&search, "search", "", "Filter -questions by a search term")
	flag.IntVar(&questionID, "question", 0, "Show a question with its answers; with -body, post an answer to it")
	flag.IntVar(&deleteID, "delete-question", 0, "Delete one of your questions")
	flag.StringVar(&ask, "ask", "", "Ask a question with this title (use -body and -tags)")
	flag.StringVar(&body, "body", "", "Body for -ask or an answer to -question")
	flag.StringVar(&tags, "tags", "", "Comma separated tags for -ask")
	flag.BoolVar(&listTags, "tags-list", false, "List tags")
	flag.IntVar(&answerID, "answer", 0, "Answer to vote on (use -vote)")
	flag.IntVar(&acceptID, "accept", 0, "Accept an answer on your question")
	flag.IntVar(&vote, "vote", 0, "Vote 1 or -1 on -answer")
	flag.BoolVar(&notify, "notifications", false, "List notifications")
	flag.BoolVar(&markRead, "mark-read", false, "Mark listed notifications as read")
	flag.IntVar(&openID, "open-notification", 0, "Mark a notification read and open its link in the browser")
	flag.BoolVar(&watch, "watch-notifications", false, "Poll unread notifications until the session ends")
	flag.BoolVar(&tuiMode, "tui", false, "Start the interactive terminal client")
	flag.DurationVar(&pollInterval, "interval", cmd.DefaultPollInterval, "Poll interval for -watch-notifications")

	flag.CommandLine.Usage = func() {
		out := flag.CommandLine.Output()
		_, _ = fmt.Fprintf(out, "Usage of %s\n", os.Args[0])
		flag.CommandLine.VisitAll(func(f *flag.Flag) {
			if f.Name == "password" {
				return
			}
			s := fmt.Sprintf("  -%s", f.Name)
			name, usage := flag.UnquoteUsage(f)
			if name != "" {
				s += " " + name
			}
			s += "\n    " + usage
			if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
				s += fmt.Sprintf(" (default %s)", f.DefValue)
			}
			_, _ = fmt.Fprint(out, s+"\n")
		})
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("StackIt client Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return
	}

	if initConfig {
		if err := cmd.DoInitConfig(configPath, &cmd.Options{}); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}

	if wd, err := os.Getwd(); err == nil {
		if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil && !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	optional := strings.TrimSpace(configPath) == ""
	if optional {
		if value, ok := os.LookupEnv("STACKIT_CONFIG"); ok && strings.TrimSpace(value) != "" {
			configPath = strings.TrimSpace(value)
			optional = false
		}
	}
	cfg, err := config.LoadConfigOptional(configPath, optional)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}
	if err = logging.ConfigureLogOutput(cfg); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := cmd.NewRuntime(ctx, cfg, configPath)
	if err != nil {
		log.Errorf("failed to initialize client: %v", err)
		os.Exit(1)
	}
	defer func() {
		if errClose := rt.Close(); errClose != nil {
			log.WithError(errClose).Warn("failed to close runtime")
		}
	}()
	if !tuiMode {
		rt.Notifier.Subscribe(func(ev session.Invalidated) {
			if ev.Reason == session.ReasonRefreshFailed {
				fmt.Fprintln(os.Stderr, "Session expired, please log in again")
			}
		})
	}

	options := &cmd.Options{}
	switch {
	case tuiMode:
		err = cmd.DoTUI(ctx, rt, options)
	case login:
		err = cmd.DoLogin(ctx, rt, username, password, options)
	case register:
		err = cmd.DoRegister(ctx, rt, username, email, password, options)
	case logout:
		err = cmd.DoLogout(ctx, rt, options)
	case whoami:
		err = cmd.DoWhoAmI(ctx, rt, options)
	case ask != "":
		err = cmd.DoAsk(ctx, rt, ask, body, strings.Split(tags, ","), options)
	case questionID > 0 && body != "":
		err = cmd.DoAnswer(ctx, rt, questionID, body, options)
	case questionID > 0:
		err = cmd.DoShowQuestion(ctx, rt, questionID, options)
	case deleteID > 0:
		err = cmd.DoDeleteQuestion(ctx, rt, deleteID, options)
	case listQuestion:
		err = cmd.DoListQuestions(ctx, rt, search, options)
	case listTags:
		err = cmd.DoTags(ctx, rt, options)
	case acceptID > 0:
		err = cmd.DoAccept(ctx, rt, acceptID, options)
	case answerID > 0 && vote != 0:
		err = cmd.DoVote(ctx, rt, answerID, vote, options)
	case notify:
		err = cmd.DoNotifications(ctx, rt, markRead, options)
	case openID > 0:
		err = cmd.DoOpenNotification(ctx, rt, openID, options)
	case watch:
		err = cmd.DoWatchNotifications(ctx, rt, pollInterval, options)
	default:
		flag.CommandLine.Usage()
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		_ = rt.Close()
		os.Exit(1)
	}
}
