// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/satstall/satstall/internal/ledger"
	"github.com/satstall/satstall/internal/request"
	"github.com/satstall/satstall/internal/web"
)

func (e *engine) initRoutes() {
	e.mux = http.NewServeMux()
	e.mux.HandleFunc("POST /telegram", e.handleTelegramWebhook)
	e.mux.HandleFunc("GET /gateway/callback", e.handleGatewayCallback)

	health := web.Health(e.mux)
	health.RegisterFunc("bot", func() (status string, ok bool) {
		return "authorized as @" + e.tg.Self.UserName, true
	})
}

var (
	errNoHost = errors.New("host hasn't been set; pass it with the HOST environment variable")

	respOK = map[string]string{"status": "ok"}
)

// setWebhook registers the public webhook URL in the Telegram Bot API,
// including the shared secret Telegram echoes back on every update.
func (e *engine) setWebhook(ctx context.Context) error {
	if e.host == "" {
		return errNoHost
	}
	u := url.URL{Scheme: "https", Host: e.host, Path: "/telegram"}
	if _, err := request.Make[request.IgnoreResponse](ctx, request.Params{
		Method: http.MethodPost,
		URL:    fmt.Sprintf(tgbotapi.APIEndpoint, e.tgToken, "setWebhook"),
		Body: map[string]any{
			"url":                  u.String(),
			"secret_token":         e.tgSecret,
			"drop_pending_updates": true,
		},
		HTTPClient: e.httpc,
		Scrubber:   e.scrubber,
	}); err != nil {
		return err
	}
	e.logf("Webhook set to %s", u.String())
	return nil
}

// handleTelegramWebhook accepts Telegram updates and dispatches them to the
// bot handlers.
func (e *engine) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != e.tgSecret {
		web.RespondJSONError(e.logf, w, web.ErrForbidden)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		web.RespondJSONError(e.logf, w, fmt.Errorf("decoding update: %w", web.ErrBadRequest))
		return
	}

	e.handleUpdate(r.Context(), &update)
	web.RespondJSON(w, respOK)
}

// handleGatewayCallback is the Blockonomics HTTP callback for address-based
// payments. Query parameters:
//
//	status: -1 (not started), 0 (unconfirmed), 1 (partially confirmed),
//	        2 (confirmed)
//	addr:   bitcoin address
//	value:  received amount in satoshis
//	txid:   transaction id
//	secret: shared secret
//
// Unknown addresses are acknowledged with 200 so the provider doesn't retry.
// Omitted status and value parameters default to "not started" and zero; the
// payment data is still recorded.
func (e *engine) handleGatewayCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("secret") != e.callbackSecret {
		web.RespondJSONError(e.logf, w, web.ErrForbidden)
		return
	}

	var err error
	status := ledger.ConfirmNotStarted
	if s := q.Get("status"); s != "" {
		status, err = strconv.Atoi(s)
		if err != nil {
			web.RespondJSONError(e.logf, w, fmt.Errorf("bad status: %w", web.ErrBadRequest))
			return
		}
	}
	var value int64
	if v := q.Get("value"); v != "" {
		value, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			web.RespondJSONError(e.logf, w, fmt.Errorf("bad value: %w", web.ErrBadRequest))
			return
		}
	}

	report := ledger.Report{
		Address:       q.Get("addr"),
		Confirmations: status,
		Sats:          value,
		TxID:          q.Get("txid"),
	}

	outcome, order, err := e.orders.Apply(report, func(o ledger.Order) error {
		return e.sendItem(o, e.textConfirmedCaption)
	})

	switch outcome {
	case ledger.OutcomeUnknown:
		e.logf("Callback for unknown addr %s", report.Address)
	case ledger.OutcomeDelivered:
		e.logf("Delivered order %s (txid %s)", order.Address, order.TxID)
	case ledger.OutcomeAlreadyDelivered:
		e.logf("Duplicate callback for delivered order %s", order.Address)
	case ledger.OutcomePending:
		e.logf("Order %s still pending: status=%d received=%d required=%d",
			order.Address, status, order.ReceivedSats, order.RequiredSats())
	case ledger.OutcomeDeliveryFailed:
		e.logf("Delivery of order %s failed: %v", order.Address, err)
		if errors.Is(err, errFileMissing) {
			e.sendText(order.ChatID, e.textFileMissing())
		}
	}

	web.RespondJSON(w, respOK)
}
