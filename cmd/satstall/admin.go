// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/satstall/satstall/internal/atomicio"
	"github.com/satstall/satstall/internal/catalog"
	"github.com/satstall/satstall/internal/ledger"
)

func (e *engine) handleAdminCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "additem":
		e.handleAddItem(msg)
	case "delitem":
		e.handleDelItem(msg)
	case "items":
		e.handleListItems(msg)
	case "orders":
		e.handleListOrders(msg)
	case "backup":
		e.handleBackup(msg)
	}
}

// handleAddItem handles "/additem <price_btc> <file_path> <category> <name...>".
func (e *engine) handleAddItem(msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 4 {
		e.sendText(msg.Chat.ID, "Usage: /additem <price_btc> <file_path> <category> <name>")
		return
	}
	price, path, category := args[0], args[1], args[2]
	name := strings.Join(args[3:], " ")

	entry, err := e.catalog.AddItem(name, price, path, category)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrBadPrice):
			e.sendText(msg.Chat.ID, fmt.Sprintf("Bad price %q: expected a non-negative BTC amount.", price))
		case errors.Is(err, catalog.ErrEmptyName):
			e.sendText(msg.Chat.ID, "Item name can't be empty.")
		default:
			e.logf("Adding item failed: %v", err)
			e.sendText(msg.Chat.ID, fmt.Sprintf("Failed to add item: %v", err))
		}
		return
	}
	e.sendText(msg.Chat.ID, fmt.Sprintf("Added %s (%s) to %s.", entry.Key, name, category))
}

func (e *engine) handleDelItem(msg *tgbotapi.Message) {
	key := strings.TrimSpace(msg.CommandArguments())
	if key == "" {
		e.sendText(msg.Chat.ID, "Usage: /delitem <key>")
		return
	}
	if err := e.catalog.DeleteItem(key); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			e.sendText(msg.Chat.ID, fmt.Sprintf("No item %s.", key))
			return
		}
		e.logf("Deleting item failed: %v", err)
		e.sendText(msg.Chat.ID, fmt.Sprintf("Failed to delete item: %v", err))
		return
	}
	e.sendText(msg.Chat.ID, fmt.Sprintf("Deleted %s.", key))
}

func (e *engine) handleListItems(msg *tgbotapi.Message) {
	var sb strings.Builder
	for _, cat := range e.catalog.Categories() {
		fmt.Fprintf(&sb, "%s:\n", title(cat))
		for _, entry := range e.catalog.Items(cat) {
			fmt.Fprintf(&sb, "  %s: %s — %s BTC (%s)\n",
				entry.Key, entry.Item.Name, entry.Item.PriceString(), entry.Item.FilePath)
		}
	}
	if sb.Len() == 0 {
		e.sendText(msg.Chat.ID, "The catalog is empty.")
		return
	}
	e.sendText(msg.Chat.ID, sb.String())
}

func (e *engine) handleListOrders(msg *tgbotapi.Message) {
	orders := e.orders.All()
	if len(orders) == 0 {
		e.sendText(msg.Chat.ID, "No orders yet.")
		return
	}
	var sb strings.Builder
	for _, o := range orders {
		fmt.Fprintf(&sb, "%s: %s, %.8f BTC, %s", o.Address, o.ItemKey, o.AmountBTC, o.Status)
		if o.TxID != "" {
			fmt.Fprintf(&sb, ", tx %s", o.TxID)
		}
		sb.WriteString("\n")
	}
	e.sendText(msg.Chat.ID, sb.String())
}

// backupDoc is the combined state snapshot written by /backup.
type backupDoc struct {
	TakenAt    time.Time               `json:"taken_at"`
	Categories []catalog.Category      `json:"categories"`
	Items      map[string]catalog.Item `json:"items"`
	Orders     map[string]ledger.Order `json:"orders"`
}

func (e *engine) handleBackup(msg *tgbotapi.Message) {
	cats, items := e.catalog.Snapshot()
	doc := backupDoc{
		TakenAt:    time.Now().UTC(),
		Categories: cats,
		Items:      items,
		Orders:     e.orders.Snapshot(),
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		e.logf("Marshaling backup failed: %v", err)
		e.sendText(msg.Chat.ID, fmt.Sprintf("Backup failed: %v", err))
		return
	}

	name := fmt.Sprintf("backup-%s.json", doc.TakenAt.Format("20060102-150405"))
	path := filepath.Join(filepath.Dir(e.ordersFile), name)
	if err := atomicio.WriteFile(path, b, 0o600); err != nil {
		e.logf("Writing backup failed: %v", err)
		e.sendText(msg.Chat.ID, fmt.Sprintf("Backup failed: %v", err))
		return
	}
	e.sendText(msg.Chat.ID, fmt.Sprintf("Backup written to %s.", path))
}
