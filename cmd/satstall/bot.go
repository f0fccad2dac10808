// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/satstall/satstall/internal/catalog"
	"github.com/satstall/satstall/internal/ledger"
)

// errFileMissing means the purchased asset is absent from the local
// filesystem. The order is left pending so delivery can be retried once the
// admin fixes the path.
var errFileMissing = errors.New("item file is missing")

func (e *engine) handleUpdate(ctx context.Context, u *tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		e.handleCallbackQuery(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.IsCommand():
		e.handleCommand(ctx, u.Message)
	}
}

func (e *engine) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		e.handleStart(msg)
	case "help":
		e.sendText(msg.Chat.ID, helpText)
	case "confirm":
		e.handleConfirm(ctx, msg)
	case "additem", "delitem", "items", "orders", "backup":
		if msg.From == nil || !e.isAdmin(msg.From.ID) {
			e.sendText(msg.Chat.ID, e.textNotAdmin())
			return
		}
		e.handleAdminCommand(msg)
	}
}

const helpText = "Commands:\n" +
	"/start – Open shop\n" +
	"/confirm – Confirm payment after sending BTC\n" +
	"/help – This help\n"

func (e *engine) handleStart(msg *tgbotapi.Message) {
	if e.welcomeVideo != "" {
		video := tgbotapi.NewVideo(msg.Chat.ID, tgbotapi.FileURL(e.welcomeVideo))
		video.Caption = e.textWelcome()
		if _, err := e.tg.Send(video); err != nil {
			e.logf("Sending welcome video failed: %v", err)
			e.sendText(msg.Chat.ID, e.textWelcome())
		}
	} else {
		e.sendText(msg.Chat.ID, e.textWelcome())
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, "Choose a category:")
	reply.ReplyMarkup = e.categoriesKeyboard()
	e.send(reply)
}

func (e *engine) handleCallbackQuery(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Stop the button from spinning even when we have nothing to say.
	if _, err := e.tg.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		e.logf("Answering callback query failed: %v", err)
	}
	if q.Message == nil {
		return
	}

	data := strings.TrimSpace(q.Data)
	switch {
	case strings.HasPrefix(data, "cat_"):
		e.showItems(q, strings.TrimPrefix(data, "cat_"))
	case data == "back_to_categories":
		edit := tgbotapi.NewEditMessageTextAndMarkup(
			q.Message.Chat.ID, q.Message.MessageID,
			"Choose a category:", e.categoriesKeyboard(),
		)
		e.send(edit)
	case strings.HasPrefix(data, "item_"):
		e.handleBuy(ctx, q, strings.TrimPrefix(data, "item_"))
	default:
		e.sendText(q.Message.Chat.ID, "Unhandled action.")
	}
}

func (e *engine) categoriesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range e.catalog.Categories() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title(cat), "cat_"+cat),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (e *engine) showItems(q *tgbotapi.CallbackQuery, cat string) {
	entries := e.catalog.Items(cat)
	if len(entries) == 0 {
		edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, e.textNoItems())
		e.send(edit)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, entry := range entries {
		label := fmt.Sprintf("%s — %s BTC", entry.Item.Name, entry.Item.PriceString())
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "item_"+entry.Key),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back_to_categories"),
	))

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		q.Message.Chat.ID, q.Message.MessageID,
		fmt.Sprintf("Items in %s:", title(cat)),
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	e.send(edit)
}

// handleBuy is the purchase intent: obtain a fresh address, record a pending
// order, and show the payment prompt. When no address can be obtained, no
// order is created.
func (e *engine) handleBuy(ctx context.Context, q *tgbotapi.CallbackQuery, itemKey string) {
	chatID := q.Message.Chat.ID

	it, ok := e.catalog.Item(itemKey)
	if !ok {
		e.sendText(chatID, e.textItemGone())
		return
	}

	addr, err := e.gw.NewAddress(ctx)
	if err != nil {
		e.logf("Obtaining a payment address failed: %v", err)
		e.sendText(chatID, e.textAddressFail())
		return
	}
	e.logf("New payment address %s for item %s", addr, itemKey)

	order := ledger.Order{
		Address:   addr,
		ItemKey:   itemKey,
		ChatID:    chatID,
		AmountBTC: it.PriceBTC,
	}
	if q.From != nil {
		order.UserID = q.From.ID
	}
	if err := e.orders.Create(order); err != nil {
		e.logf("Recording order for %s failed: %v", addr, err)
		e.sendText(chatID, e.textAddressFail())
		return
	}

	e.sendPaymentPrompt(chatID, addr, it)
}

// paymentURI builds a bitcoin: URI for wallet deep-linking.
func paymentURI(addr string, amountBTC float64) string {
	return fmt.Sprintf("bitcoin:%s?amount=%s", addr, decimal.NewFromFloat(amountBTC).String())
}

func (e *engine) sendPaymentPrompt(chatID int64, addr string, it catalog.Item) {
	uri := paymentURI(addr, it.PriceBTC)
	caption := fmt.Sprintf(
		"Pay %s BTC to:\n%s\n\nItem: %s\n\n%s",
		it.PriceString(), addr, it.Name, e.textSendAfterPay(),
	)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Open in wallet", uri),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back_to_categories"),
		),
	)

	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		e.logf("QR encoding failed: %v", err)
		reply := tgbotapi.NewMessage(chatID, caption)
		reply.ReplyMarkup = kb
		e.send(reply)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "payment.png", Bytes: png})
	photo.Caption = caption
	photo.ReplyMarkup = kb
	e.send(photo)
}

// handleConfirm is the buyer-initiated confirmation: poll the gateway for
// the confirmed balance of the user's most recent pending order and
// reconcile.
func (e *engine) handleConfirm(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	order, ok := e.orders.LatestPending(msg.From.ID)
	if !ok {
		e.sendText(msg.Chat.ID, e.textNoPending())
		return
	}

	// The balance query runs outside the ledger lock; the decision below
	// runs inside it.
	receivedSats, err := e.gw.ConfirmedBalance(ctx, order.Address)
	if err != nil {
		e.logf("Balance check for %s failed: %v", order.Address, err)
		e.sendText(msg.Chat.ID, e.textCheckFail())
		return
	}

	outcome, updated, err := e.orders.ConfirmPoll(order.Address, receivedSats, func(o ledger.Order) error {
		return e.sendItem(o, e.textDeliveredCaption)
	})

	switch outcome {
	case ledger.OutcomeDelivered:
		// The document itself is the confirmation.
	case ledger.OutcomeAlreadyDelivered:
		// A provider callback won the race between LatestPending and here.
		e.sendText(msg.Chat.ID, e.textAlreadyDelivered())
	case ledger.OutcomeDeliveryFailed:
		if errors.Is(err, errFileMissing) {
			e.sendText(msg.Chat.ID, e.textFileMissing())
			return
		}
		e.sendText(msg.Chat.ID, fmt.Sprintf("Failed to deliver file: %v", err))
	case ledger.OutcomePending:
		required := decimal.NewFromFloat(updated.AmountBTC)
		e.sendText(msg.Chat.ID, fmt.Sprintf(
			"%s\n\nReceived: %s BTC\nNeeded: %s BTC\nShort: %s BTC",
			e.textNotConfirmed(),
			updated.ReceivedBTC().StringFixed(8),
			required.StringFixed(8),
			updated.ShortfallBTC(receivedSats).StringFixed(8),
		))
	}
}

// sendItem streams the purchased file to the order's chat with a caption
// naming the item. It is called inside the ledger critical section, so a
// successful return is what flips the order to delivered.
func (e *engine) sendItem(o ledger.Order, caption func(itemName string) string) error {
	it, ok := e.catalog.Item(o.ItemKey)
	if !ok {
		return fmt.Errorf("%w: item %q is gone from the catalog", errFileMissing, o.ItemKey)
	}
	if it.FilePath == "" {
		return fmt.Errorf("%w: item %q has no file path", errFileMissing, o.ItemKey)
	}
	if _, err := os.Stat(it.FilePath); err != nil {
		return fmt.Errorf("%w: %s", errFileMissing, it.FilePath)
	}

	doc := tgbotapi.NewDocument(o.ChatID, tgbotapi.FilePath(it.FilePath))
	doc.Caption = caption(it.Name)
	_, err := e.tg.Send(doc)
	return err
}

func (e *engine) isAdmin(userID int64) bool {
	return e.adminID != 0 && userID == e.adminID
}

func (e *engine) sendText(chatID int64, text string) {
	e.send(tgbotapi.NewMessage(chatID, text))
}

func (e *engine) send(c tgbotapi.Chattable) {
	if _, err := e.tg.Send(c); err != nil {
		e.logf("Sending message failed: %v", err)
	}
}

// title uppercases the first letter of a category key for display.
func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
