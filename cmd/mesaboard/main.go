// Mesaboard — the kitchen board: a terminal view of every table's order,
// wait time, and preparation estimate, polled from the ordering backend.
//
// Usage:
//
//	mesaboard [-verbose] [-quiet] [-tables 4,6,7] [-poll 5s]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fondita/mesaboard/internal/api"
	"github.com/fondita/mesaboard/internal/board"
	"github.com/fondita/mesaboard/internal/command"
	"github.com/fondita/mesaboard/internal/display"
	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
	"github.com/fondita/mesaboard/internal/menu"
	"github.com/fondita/mesaboard/internal/session"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".mesa-logs/mesaboard.log", "file to write logs to (use \"stderr\" to log to console)")
	baseURL := flag.String("base-url", "", "backend base URL (defaults to MESA_API_URL)")
	tablesFlag := flag.String("tables", "4,6,7", "comma-separated table ids to watch")
	poll := flag.Duration("poll", 5*time.Second, "board poll interval")
	strict := flag.Bool("strict", false, "reject backward status moves (e.g. ready back to preparing)")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package to the same output so third-party
	// libs don't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	url := *baseURL
	if url == "" {
		url = os.Getenv("MESA_API_URL")
	}
	if url == "" {
		fmt.Fprintln(os.Stderr, "error: no backend URL; pass -base-url or set MESA_API_URL")
		os.Exit(1)
	}

	tables := splitTables(*tablesFlag)
	if len(tables) == 0 {
		fmt.Fprintln(os.Stderr, "error: -tables must name at least one table")
		os.Exit(1)
	}

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	client := api.NewClient(url, log)
	catalog := menu.NewCatalog(log)
	ui := display.NewUI("mesa> ", "Mesaboard")
	notifier := command.NewCLINotifier(log, ui.Printf)
	parser := command.NewKeywordParser(log)
	sess := session.New(client, client, log)

	brd := board.New(client, catalog, tables, log,
		board.WithPollInterval(*poll),
		board.WithNotifier(notifier),
		board.WithStrictTransitions(*strict),
	)

	// Auto-login when kitchen credentials are in the environment; status
	// updates need a session, watching the board does not.
	user := os.Getenv("MESA_USERNAME")
	pass := os.Getenv("MESA_PASSWORD")
	if user != "" && pass != "" {
		if err := sess.Login(ctx, user, pass); err != nil {
			log.Warn("auto-login failed: %v", err)
		}
	}

	brd.Start(ctx)
	defer brd.Stop()

	// Feed board frames into the status bar, once the event loop is up.
	go func() {
		sub := brd.Subscribe()
		ui.WaitReady()
		for {
			select {
			case <-ctx.Done():
				return
			case views := <-sub:
				ui.SetViews(views)
			}
		}
	}()

	app := &boardApp{
		board:   brd,
		catalog: catalog,
		parser:  parser,
		sess:    sess,
		log:     log,
		ui:      ui,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render(fmt.Sprintf("  Watching tables %s every %s.", strings.Join(tables, ", "), *poll)))
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

// splitTables parses "4,6,7" into table ids, dropping empty entries.
func splitTables(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

type boardApp struct {
	board   *board.Board
	catalog domain.MenuCatalog
	parser  domain.IntentParser
	sess    *session.Session
	log     *logger.Logger
	ui      *display.UI
}

func (a *boardApp) run(ctx context.Context) {
	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
		a.handleIntent(ctx, intent)
	}
}

func (a *boardApp) handleIntent(ctx context.Context, intent *domain.Intent) {
	switch intent.Type {
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentMenu:
		a.ui.Println(display.RenderMenu(a.catalog.Dishes()))
	case domain.IntentTables, domain.IntentTrack, domain.IntentRefresh:
		if intent.Type == domain.IntentRefresh {
			if err := a.board.Refresh(ctx); err != nil {
				a.ui.PrintUrgent(fmt.Sprintf("Refresh failed, showing last good data: %v", err))
			}
		}
		a.ui.Println(display.RenderBoard(a.board.Snapshot()))
	case domain.IntentSelectTable:
		a.showTable(intent.Payload)
	case domain.IntentUpdateStatus:
		a.updateStatus(ctx, intent.Payload)
	case domain.IntentLogin:
		a.login(ctx, intent.Payload)
	case domain.IntentLogout:
		a.sess.Logout()
		a.ui.PrintInfo("Logged out.")
	case domain.IntentQuit:
		a.ui.Quit()
	default:
		a.ui.PrintHint(fmt.Sprintf("Didn't catch that (%q). Type 'help' for commands.", intent.Payload))
	}
}

func (a *boardApp) showTable(table string) {
	order := a.board.Order(table)
	if order == nil {
		a.ui.PrintHint(fmt.Sprintf("Mesa %s has no active order.", table))
		return
	}
	a.ui.PrintHeader(fmt.Sprintf("Mesa %s", table))
	a.ui.Println(display.RenderOrder(order, a.catalog))
}

func (a *boardApp) updateStatus(ctx context.Context, payload string) {
	status, table, ok := command.ParseStatusUpdate(payload)
	if !ok {
		a.ui.PrintHint("Status updates look like: ready 4, preparing 6, delivered 7.")
		return
	}

	if err := a.sess.Require(); err != nil {
		a.ui.PrintUrgent("Not logged in. Use: login <user> <password>.")
		return
	}

	order := a.board.Order(table)
	if order == nil {
		a.ui.PrintHint(fmt.Sprintf("Mesa %s has no active order.", table))
		return
	}

	if err := a.board.UpdateStatus(ctx, order.ID, status); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			a.ui.PrintUrgent(fmt.Sprintf("Can't move mesa %s to %s: %v", table, status, err))
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Update failed: %v", err))
		return
	}
	a.ui.PrintInfo(fmt.Sprintf("Mesa %s is now %s.", table, status))
}

func (a *boardApp) login(ctx context.Context, payload string) {
	parts := strings.Fields(payload)
	if len(parts) != 3 {
		a.ui.PrintHint("Usage: login <user> <password>")
		return
	}

	if err := a.sess.Login(ctx, parts[1], parts[2]); err != nil {
		if errors.Is(err, domain.ErrAuthFailed) {
			a.ui.PrintUrgent(fmt.Sprintf("Login rejected: %v", err))
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Login failed: %v", err))
		return
	}
	a.ui.PrintInfo(fmt.Sprintf("Logged in as %s.", parts[1]))
}

func (a *boardApp) showHelp() {
	a.ui.PrintHeader("Commands:")
	a.ui.PrintInfo("  tables / board     Show every table's card")
	a.ui.PrintInfo("  4, table 6         Show one table's order")
	a.ui.PrintInfo("  preparing 6        Mark mesa 6's order as preparing")
	a.ui.PrintInfo("  ready 4            Mark mesa 4's order as ready")
	a.ui.PrintInfo("  delivered 7        Mark mesa 7's order as delivered")
	a.ui.PrintInfo("  refresh / r        Poll the backend now")
	a.ui.PrintInfo("  menu               Show the dish catalog")
	a.ui.PrintInfo("  login <u> <p>      Authenticate for status updates")
	a.ui.PrintInfo("  logout             Drop the session")
	a.ui.PrintInfo("  help               Show this message")
	a.ui.PrintInfo("  quit / exit        Exit")
}
