// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/satstall/satstall/internal/catalog"
	"github.com/satstall/satstall/internal/cli"
	"github.com/satstall/satstall/internal/gateway"
	"github.com/satstall/satstall/internal/ledger"
	"github.com/satstall/satstall/internal/logger"
	"github.com/satstall/satstall/internal/request"
	"github.com/satstall/satstall/internal/web"
)

func main() { cli.Main(new(engine)) }

var errNoToken = errors.New("TELEGRAM_TOKEN environment variable is required")

func (e *engine) Flags(fs *flag.FlagSet) {
	fs.StringVar(&e.addr, "addr", "", "Listen on `host:port`.")
	fs.BoolVar(&e.prod, "prod", false, "Run in production mode: register the Telegram webhook on startup.")
}

func (e *engine) Run(ctx context.Context, env *cli.Env) error {
	// Merge a .env file into the environment, if present.
	godotenv.Load()

	// Load configuration from environment variables.
	e.addr = cmp.Or(e.addr, env.Getenv("ADDR"), "localhost:3000")
	e.host = cmp.Or(e.host, env.Getenv("HOST"))
	e.tgToken = cmp.Or(e.tgToken, env.Getenv("TELEGRAM_TOKEN"))
	e.tgSecret = cmp.Or(e.tgSecret, env.Getenv("TELEGRAM_WEBHOOK_SECRET"), "change-me")
	e.callbackSecret = cmp.Or(e.callbackSecret, env.Getenv("BLOCKONOMICS_CALLBACK_SECRET"), "change-me")
	e.gatewayKey = cmp.Or(e.gatewayKey, env.Getenv("BLOCKONOMICS_API_KEY"))
	e.adminID = cmp.Or(e.adminID, parseInt(env.Getenv("ADMIN_USER_ID")))
	e.welcomeVideo = cmp.Or(e.welcomeVideo, env.Getenv("WELCOME_VIDEO"))
	e.categoriesFile = cmp.Or(e.categoriesFile, env.Getenv("CATEGORIES_FILE"), "categories.json")
	e.itemsFile = cmp.Or(e.itemsFile, env.Getenv("ITEMS_FILE"), "items.json")
	e.ordersFile = cmp.Or(e.ordersFile, env.Getenv("ORDERS_FILE"), "orders.json")
	if !e.spicySet {
		e.spicy = true
		if v := env.Getenv("SPICY_MODE"); v != "" {
			e.spicy, _ = strconv.ParseBool(v)
		}
	}

	if e.tgToken == "" {
		return errNoToken
	}

	// Initialize internal state.
	e.init.Do(func() {
		e.initErr = e.doInit(env)
	})
	if e.initErr != nil {
		return e.initErr
	}

	if e.gatewayKey == "" {
		e.logf("BLOCKONOMICS_API_KEY is missing. Payments will fail.")
	}

	// Used in tests.
	if e.noServerStart {
		return nil
	}

	// In production mode, register the webhook in the Telegram Bot API.
	if e.prod {
		if err := e.setWebhook(ctx); err != nil {
			return err
		}
		e.logf("Running in production mode.")
	} else {
		e.logf("Running in development mode.")
	}

	return web.ListenAndServe(ctx, &web.ListenAndServeConfig{
		Addr:  e.addr,
		Mux:   e.mux,
		Logf:  e.logf,
		Ready: e.ready,
	})
}

func parseInt(s string) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return i
	}
	return 0
}

type engine struct {
	init    sync.Once
	initErr error

	// configuration, read-only after initialization
	addr           string
	host           string
	tgToken        string
	tgSecret       string
	callbackSecret string
	gatewayKey     string
	adminID        int64
	spicy          bool
	spicySet       bool // set, skip SPICY_MODE lookup; used in tests
	welcomeVideo   string
	categoriesFile string
	itemsFile      string
	ordersFile     string
	prod           bool
	httpc          *http.Client

	// initialized by doInit
	catalog  *catalog.Store
	orders   *ledger.Ledger
	gw       *gateway.Client
	tg       *tgbotapi.BotAPI
	logf     logger.Logf
	mux      *http.ServeMux
	scrubber *strings.Replacer

	// for tests
	noServerStart bool
	ready         func() // see web.ListenAndServeConfig.Ready
}

func (e *engine) doInit(env *cli.Env) error {
	e.logf = log.New(env.Stderr, "", log.LstdFlags).Printf

	if e.httpc == nil {
		e.httpc = request.DefaultClient
	}

	var scrubPairs []string
	for _, val := range []string{
		e.tgToken,
		e.tgSecret,
		e.callbackSecret,
		e.gatewayKey,
	} {
		if val != "" {
			scrubPairs = append(scrubPairs, val, "[EXPUNGED]")
		}
	}
	e.scrubber = strings.NewReplacer(scrubPairs...)

	var err error
	e.catalog, err = catalog.Open(e.categoriesFile, e.itemsFile, e.logf)
	if err != nil {
		return err
	}
	e.orders, err = ledger.Open(e.ordersFile, e.logf)
	if err != nil {
		return err
	}

	e.gw = &gateway.Client{
		APIKey:     e.gatewayKey,
		HTTPClient: e.httpc,
		Scrubber:   e.scrubber,
	}

	e.tg, err = tgbotapi.NewBotAPIWithClient(e.tgToken, tgbotapi.APIEndpoint, e.httpc)
	if err != nil {
		return err
	}
	e.logf("Authorized on account %s", e.tg.Self.UserName)

	e.initRoutes()
	return nil
}
