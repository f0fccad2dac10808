// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package ledger implements the order ledger: a JSON document mapping a
// payment address to an order, with reconciliation of reported payments
// against the amount due.
//
// Every lookup-then-mutate sequence runs inside the document's write lock and
// is atomically persisted, so two racing confirmations can't both pass the
// idempotence guard and deliver twice.
package ledger

import (
	"fmt"
	"slices"
	"time"

	"crawshaw.dev/jsonfile"
	"github.com/shopspring/decimal"

	"github.com/satstall/satstall/internal/docfile"
	"github.com/satstall/satstall/internal/logger"
)

// Status is the fulfillment state of an order. It only ever moves forward:
// pending orders become delivered, never the other way around.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
)

// Confirmation depth codes reported by the payment provider.
const (
	ConfirmNotStarted  = -1
	ConfirmUnconfirmed = 0
	ConfirmPartial     = 1
	ConfirmFull        = 2
)

// Order binds a generated payment address to a purchased item and its
// fulfillment status. Orders are never deleted; the ledger doubles as an
// audit trail keyed by address.
type Order struct {
	Address      string    `json:"address"`
	ItemKey      string    `json:"item_key"`
	UserID       int64     `json:"user_id"`
	ChatID       int64     `json:"chat_id"`
	AmountBTC    float64   `json:"amount_btc"`
	Status       Status    `json:"status"`
	TxID         string    `json:"txid,omitempty"`
	ReceivedSats int64     `json:"received_sats"`
	CreatedAt    time.Time `json:"created_at"`
}

// RequiredSats returns the amount due in satoshis. The conversion goes
// through decimal arithmetic: naive float multiplication turns 0.0001 BTC
// into 9999 satoshis.
func (o Order) RequiredSats() int64 {
	return decimal.NewFromFloat(o.AmountBTC).Shift(8).Round(0).IntPart()
}

// ReceivedBTC returns the recorded received amount as an exact decimal.
func (o Order) ReceivedBTC() decimal.Decimal {
	return decimal.New(o.ReceivedSats, -8)
}

// ShortfallBTC returns how much is still missing given a received amount in
// satoshis. Negative means overpaid.
func (o Order) ShortfallBTC(receivedSats int64) decimal.Decimal {
	return decimal.NewFromFloat(o.AmountBTC).Sub(decimal.New(receivedSats, -8))
}

type ordersDoc struct {
	Orders map[string]*Order `json:"orders"`
}

// Ledger is the process-wide order state. Safe for concurrent use.
type Ledger struct {
	db   *jsonfile.JSONFile[ordersDoc]
	logf logger.Logf
}

// Open loads the ledger document at path, starting empty when it is absent
// or corrupt.
func Open(path string, logf logger.Logf) (*Ledger, error) {
	db, err := docfile.Open(path, logf, func(doc *ordersDoc) {
		doc.Orders = make(map[string]*Order)
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	return &Ledger{db: db, logf: logf}, nil
}

// Create records a new pending order for the given address. The address must
// be freshly issued; reusing one overwrites the previous order.
func (l *Ledger) Create(o Order) error {
	return l.db.Write(func(doc *ordersDoc) error {
		if doc.Orders == nil {
			doc.Orders = make(map[string]*Order)
		}
		o.Status = StatusPending
		if o.CreatedAt.IsZero() {
			o.CreatedAt = time.Now().UTC()
		}
		doc.Orders[o.Address] = &o
		return nil
	})
}

// Get returns a copy of the order bound to addr.
func (l *Ledger) Get(addr string) (Order, bool) {
	var (
		o  Order
		ok bool
	)
	l.db.Read(func(doc *ordersDoc) {
		if p, exists := doc.Orders[addr]; exists {
			o, ok = *p, true
		}
	})
	return o, ok
}

// LatestPending returns the most recently created pending order of a user,
// if any.
func (l *Ledger) LatestPending(userID int64) (Order, bool) {
	var (
		o  Order
		ok bool
	)
	l.db.Read(func(doc *ordersDoc) {
		for _, p := range doc.Orders {
			if p.UserID != userID || p.Status != StatusPending {
				continue
			}
			if !ok || p.CreatedAt.After(o.CreatedAt) {
				o, ok = *p, true
			}
		}
	})
	return o, ok
}

// All returns copies of all orders, newest first.
func (l *Ledger) All() []Order {
	var orders []Order
	l.db.Read(func(doc *ordersDoc) {
		for _, p := range doc.Orders {
			orders = append(orders, *p)
		}
	})
	slices.SortFunc(orders, func(a, b Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return orders
}

// Snapshot returns a copy of the whole address→order mapping, used by
// backups and round-trip tests.
func (l *Ledger) Snapshot() map[string]Order {
	m := make(map[string]Order)
	l.db.Read(func(doc *ordersDoc) {
		for addr, p := range doc.Orders {
			m[addr] = *p
		}
	})
	return m
}
