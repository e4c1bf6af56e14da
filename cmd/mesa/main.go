// Mesa — the ordering client: log in, build a cart from the menu, submit
// it for a table, and watch the kitchen's progress on it.
//
// Usage:
//
//	mesa [-verbose] [-quiet] [-tables 2,4,6,7,9] [-poll 3s] [-track 5s]
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
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fondita/mesaboard/internal/api"
	"github.com/fondita/mesaboard/internal/board"
	"github.com/fondita/mesaboard/internal/command"
	"github.com/fondita/mesaboard/internal/display"
	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/estimate"
	"github.com/fondita/mesaboard/internal/logger"
	"github.com/fondita/mesaboard/internal/menu"
	"github.com/fondita/mesaboard/internal/session"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".mesa-logs/mesa.log", "file to write logs to (use \"stderr\" to log to console)")
	baseURL := flag.String("base-url", "", "backend base URL (defaults to MESA_API_URL)")
	tablesFlag := flag.String("tables", "2,4,6,7,9", "comma-separated table ids to watch")
	poll := flag.Duration("poll", 3*time.Second, "board poll interval")
	track := flag.Duration("track", 5*time.Second, "order tracker poll interval")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	client := api.NewClient(url, log)
	catalog := menu.NewCatalog(log)
	ui := display.NewUI("mesa> ", "Mesa")
	parser := command.NewKeywordParser(log)
	sess := session.New(client, client, log)

	brd := board.New(client, catalog, tables, log, board.WithPollInterval(*poll))
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

	app := &orderApp{
		client:        client,
		catalog:       catalog,
		board:         brd,
		parser:        parser,
		sess:          sess,
		log:           log,
		ui:            ui,
		trackInterval: *track,
	}

	// Auto-login from the environment when available.
	user := os.Getenv("MESA_USERNAME")
	pass := os.Getenv("MESA_PASSWORD")
	if user != "" && pass != "" {
		if err := sess.Login(ctx, user, pass); err != nil {
			log.Warn("auto-login failed: %v", err)
		}
	}

	fmt.Println(display.RenderBanner())
	if sess.Active() {
		fmt.Println(display.BannerStyle.Render(fmt.Sprintf("  Logged in as %s.", sess.Username())))
	} else {
		fmt.Println(display.BannerStyle.Render("  Log in to order: login <user> <password>."))
	}
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

// splitTables parses "2,4,6" into table ids, dropping empty entries.
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

type orderApp struct {
	client        domain.OrderSource
	catalog       *menu.Catalog
	board         *board.Board
	parser        domain.IntentParser
	sess          *session.Session
	log           *logger.Logger
	ui            *display.UI
	trackInterval time.Duration

	cart        []string // one entry per unit, grouped on display
	table       string   // table the cart will be submitted for
	tracker     *board.Tracker
	trackCancel context.CancelFunc
}

func (a *orderApp) run(ctx context.Context) {
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

func (a *orderApp) handleIntent(ctx context.Context, intent *domain.Intent) {
	switch intent.Type {
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentMenu:
		a.ui.Println(display.RenderMenu(a.catalog.Dishes()))
	case domain.IntentAdd:
		a.addToCart(intent.Payload)
	case domain.IntentRemove:
		a.removeFromCart(intent.Payload)
	case domain.IntentCart:
		a.showCart()
	case domain.IntentClearCart:
		a.cart = nil
		a.ui.PrintInfo("Cart emptied.")
	case domain.IntentSend:
		a.send(ctx)
	case domain.IntentTables, domain.IntentRefresh:
		if intent.Type == domain.IntentRefresh {
			if err := a.board.Refresh(ctx); err != nil {
				a.ui.PrintUrgent(fmt.Sprintf("Refresh failed, showing last good data: %v", err))
			}
		}
		a.ui.Println(display.RenderBoard(a.board.Snapshot()))
	case domain.IntentSelectTable:
		a.selectTable(intent.Payload)
	case domain.IntentTrack:
		a.showTracked(ctx)
	case domain.IntentLogin:
		a.login(ctx, intent.Payload)
	case domain.IntentLogout:
		a.stopTracker()
		a.sess.Logout()
		a.ui.PrintInfo("Logged out.")
	case domain.IntentQuit:
		a.stopTracker()
		a.ui.Quit()
	default:
		a.ui.PrintHint(fmt.Sprintf("Didn't catch that (%q). Type 'help' for commands.", intent.Payload))
	}
}

// addToCart accepts "Pozole" or "2 Tamales".
func (a *orderApp) addToCart(payload string) {
	qty := 1
	name := payload
	parts := strings.SplitN(payload, " ", 2)
	if len(parts) == 2 {
		if n, err := strconv.Atoi(parts[0]); err == nil && n > 0 {
			qty = n
			name = strings.TrimSpace(parts[1])
		}
	}

	dish, ok := a.catalog.Lookup(name)
	if !ok {
		a.ui.PrintHint(fmt.Sprintf("%q is not on the menu. Type 'menu' to see it.", name))
		return
	}

	for i := 0; i < qty; i++ {
		a.cart = append(a.cart, dish.Name)
	}
	a.ui.PrintInfo(fmt.Sprintf("Added %dx %s.", qty, dish.Name))
	a.showCart()
}

// removeFromCart drops one unit of the named dish.
func (a *orderApp) removeFromCart(name string) {
	for i := len(a.cart) - 1; i >= 0; i-- {
		if strings.EqualFold(a.cart[i], name) {
			a.cart = append(a.cart[:i], a.cart[i+1:]...)
			a.ui.PrintInfo(fmt.Sprintf("Removed one %s.", name))
			a.showCart()
			return
		}
	}
	a.ui.PrintHint(fmt.Sprintf("No %s in the cart.", name))
}

func (a *orderApp) showCart() {
	if len(a.cart) == 0 {
		a.ui.PrintHint("Cart is empty. Add dishes with: add Pozole.")
		return
	}

	groups := estimate.Group(a.cart)
	a.ui.PrintHeader("Cart:")
	for _, g := range groups {
		a.ui.PrintInfo(fmt.Sprintf("  %dx %-20s $%.2f", g.Quantity, g.Name, a.catalog.PriceOf(g.Name)*float64(g.Quantity)))
	}
	a.ui.PrintInfo(fmt.Sprintf("  total $%.2f, estimate %s",
		estimate.TotalPrice(groups, a.catalog),
		estimate.FormatEstimated(estimate.TotalMinutes(groups, a.catalog))))
	if a.table == "" {
		a.ui.PrintHint("Pick a table before sending: mesa 4.")
	}
}

func (a *orderApp) selectTable(table string) {
	a.table = table
	a.ui.PrintInfo(fmt.Sprintf("Ordering for mesa %s.", table))

	if order := a.board.Order(table); order != nil {
		a.ui.PrintHint("This table already has an active order:")
		a.ui.Println(display.RenderOrder(order, a.catalog))
	}
}

func (a *orderApp) send(ctx context.Context) {
	if err := a.sess.Require(); err != nil {
		a.ui.PrintUrgent("Not logged in. Use: login <user> <password>.")
		return
	}
	if a.table == "" {
		a.ui.PrintHint("Pick a table first: mesa 4.")
		return
	}
	if len(a.cart) == 0 {
		a.ui.PrintHint("Cart is empty, nothing to send.")
		return
	}

	groups := estimate.Group(a.cart)
	draft := domain.OrderDraft{
		Table: a.table,
		Lines: append([]string(nil), a.cart...),
		Total: estimate.TotalPrice(groups, a.catalog),
	}

	if err := a.client.CreateOrder(ctx, draft); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Order not accepted: %v", err))
		return
	}

	minutes := estimate.TotalMinutes(groups, a.catalog)
	a.ui.PrintInfo(fmt.Sprintf("Order sent for mesa %s — $%.2f, ready in about %s.",
		a.table, draft.Total, estimate.FormatEstimated(minutes)))
	a.cart = nil

	a.startTracker(a.table)
	if err := a.board.Refresh(ctx); err != nil {
		a.log.Warn("post-order refresh: %v", err)
	}
}

// startTracker follows the table's order. The tracker runs under its own
// child of the session context: a new order replaces it, a logout stops it.
// Status changes print as they happen.
func (a *orderApp) startTracker(table string) {
	a.stopTracker()

	a.tracker = board.NewTracker(a.client, table, a.log,
		board.WithTrackInterval(a.trackInterval))
	tr := a.tracker
	sub := tr.Subscribe()
	ctx, cancel := context.WithCancel(a.sess.Context())
	a.trackCancel = cancel

	go tr.Run(ctx)
	go func() {
		var last domain.OrderStatus
		var lastID string
		for {
			select {
			case <-ctx.Done():
				return
			case order := <-sub:
				if order == nil {
					continue
				}
				if order.ID != lastID || order.Status != last {
					lastID, last = order.ID, order.Status
					a.ui.PrintInfo(fmt.Sprintf("Mesa %s: order is %s.", table, order.Status))
				}
			}
		}
	}()
}

// stopTracker cancels the current tracker's goroutines, if any.
func (a *orderApp) stopTracker() {
	if a.trackCancel != nil {
		a.trackCancel()
		a.trackCancel = nil
	}
}

func (a *orderApp) showTracked(ctx context.Context) {
	table := a.table
	if table == "" {
		a.ui.PrintHint("Pick a table first: mesa 4.")
		return
	}

	// Prefer the tracker's last poll; fall back to a direct fetch.
	var order *domain.Order
	if a.tracker != nil {
		order = a.tracker.Current()
	}
	if order == nil {
		o, err := a.client.OrderByTable(ctx, table)
		if err != nil {
			a.ui.PrintUrgent(fmt.Sprintf("Could not reach the backend: %v", err))
			return
		}
		order = o
	}

	if order == nil {
		a.ui.PrintHint(fmt.Sprintf("Mesa %s has no active order.", table))
		return
	}
	a.ui.Println(display.RenderOrder(order, a.catalog))
}

func (a *orderApp) login(ctx context.Context, payload string) {
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

func (a *orderApp) showHelp() {
	a.ui.PrintHeader("Commands:")
	a.ui.PrintInfo("  menu / carta        Show the dish catalog")
	a.ui.PrintInfo("  add Pozole          Add a dish to the cart (also: add 2 Tamales)")
	a.ui.PrintInfo("  remove Pozole       Remove one unit from the cart")
	a.ui.PrintInfo("  cart                Show the cart with total and estimate")
	a.ui.PrintInfo("  clear               Empty the cart")
	a.ui.PrintInfo("  mesa 4              Pick the table to order for")
	a.ui.PrintInfo("  send                Submit the cart as an order")
	a.ui.PrintInfo("  track / status      Show the kitchen's progress on your order")
	a.ui.PrintInfo("  tables / board      Show every table's card")
	a.ui.PrintInfo("  refresh / r         Poll the backend now")
	a.ui.PrintInfo("  login <u> <p>       Authenticate")
	a.ui.PrintInfo("  logout              Drop the session")
	a.ui.PrintInfo("  help                Show this message")
	a.ui.PrintInfo("  quit / exit         Exit")
}
