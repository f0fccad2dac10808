// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package ledger

// Report carries what the payment provider said about an address, either in
// a callback or as a polled balance.
type Report struct {
	Address       string
	Confirmations int   // confirmation depth code
	Sats          int64 // received amount in satoshis
	TxID          string
}

// Outcome describes the result of a reconciliation pass.
type Outcome int

const (
	// OutcomeUnknown means no order exists for the address. Callbacks for
	// unknown addresses are acknowledged and discarded.
	OutcomeUnknown Outcome = iota
	// OutcomePending means the payment did not satisfy the order yet; the
	// order stays pending with its advisory fields updated.
	OutcomePending
	// OutcomeDelivered means the item was sent and the order marked
	// delivered.
	OutcomeDelivered
	// OutcomeAlreadyDelivered means the order was fulfilled earlier and
	// nothing was sent again.
	OutcomeAlreadyDelivered
	// OutcomeDeliveryFailed means the payment satisfied the order but the
	// delivery step failed; the order stays pending so a later pass can
	// retry.
	OutcomeDeliveryFailed
)

// DeliverFunc sends the purchased item for an order. It is invoked inside
// the ledger critical section, so an order can never be marked delivered
// without the send having succeeded.
type DeliverFunc func(Order) error

// shouldDeliver is the single decision rule shared by the callback and the
// poll confirmation paths: the payment must be fully confirmed, cover the
// amount due, and the order must not have been delivered before.
func shouldDeliver(o *Order, receivedSats int64, confirmations int) bool {
	return confirmations == ConfirmFull &&
		receivedSats >= o.RequiredSats() &&
		o.Status != StatusDelivered
}

// Apply reconciles a payment report against the ledger. The received amount
// and transaction id are recorded whatever the outcome. When the report
// satisfies the order, deliver is called and, only if it succeeds, the order
// is marked delivered. A report that doesn't satisfy a still-pending order
// resets it to pending; delivered orders are protected by the idempotence
// guard and never revert.
func (l *Ledger) Apply(r Report, deliver DeliverFunc) (Outcome, Order, error) {
	var (
		out        = OutcomeUnknown
		snapshot   Order
		deliverErr error
	)
	err := l.db.Write(func(doc *ordersDoc) error {
		o, ok := doc.Orders[r.Address]
		if !ok {
			return nil
		}

		// Advisory fields, recorded on every pass regardless of outcome:
		// received money must never be silently dropped.
		o.ReceivedSats = r.Sats
		if r.TxID != "" {
			o.TxID = r.TxID
		}

		switch {
		case shouldDeliver(o, r.Sats, r.Confirmations):
			if deliverErr = deliver(*o); deliverErr != nil {
				out = OutcomeDeliveryFailed
				o.Status = StatusPending
			} else {
				out = OutcomeDelivered
				o.Status = StatusDelivered
			}
		case o.Status == StatusDelivered:
			out = OutcomeAlreadyDelivered
		default:
			out = OutcomePending
			o.Status = StatusPending
		}

		snapshot = *o
		return nil
	})
	if err != nil {
		return out, snapshot, err
	}
	return out, snapshot, deliverErr
}

// ConfirmPoll applies a polled confirmed balance, in satoshis, to the order
// bound to addr. The balance query happens outside the ledger lock; the
// compare-and-update here runs inside it. A polled balance is by definition
// fully confirmed.
func (l *Ledger) ConfirmPoll(addr string, receivedSats int64, deliver DeliverFunc) (Outcome, Order, error) {
	return l.Apply(Report{
		Address:       addr,
		Confirmations: ConfirmFull,
		Sats:          receivedSats,
	}, deliver)
}
