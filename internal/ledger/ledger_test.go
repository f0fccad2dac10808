// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/satstall/satstall/internal/testutil"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "orders.json"), t.Logf)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	l := testLedger(t)
	if err := l.Create(Order{
		Address:   "bc1qexample",
		ItemKey:   "item1",
		UserID:    42,
		ChatID:    42,
		AmountBTC: 0.0001,
		// Create must ignore this and force pending.
		Status: StatusDelivered,
	}); err != nil {
		t.Fatal(err)
	}

	o, ok := l.Get("bc1qexample")
	if !ok {
		t.Fatal("order not found after Create")
	}
	testutil.AssertEqual(t, o.Status, StatusPending)
	testutil.AssertEqual(t, o.ItemKey, "item1")
	if o.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}

	if _, ok := l.Get("bc1qother"); ok {
		t.Error("Get returned an order for an unknown address")
	}
}

func TestRequiredSats(t *testing.T) {
	t.Parallel()

	// Float multiplication would produce 9999 here.
	for amount, want := range map[float64]int64{
		0.0001:     10000,
		0.00000001: 1,
		0.0005:     50000,
		1:          100000000,
	} {
		got := Order{AmountBTC: amount}.RequiredSats()
		if got != want {
			t.Errorf("RequiredSats(%v) = %d, want %d", amount, got, want)
		}
	}
}

func TestShortfallBTC(t *testing.T) {
	t.Parallel()

	o := Order{AmountBTC: 0.0001}
	testutil.AssertEqual(t, o.ShortfallBTC(5000).StringFixed(8), "0.00005000")
	testutil.AssertEqual(t, o.ShortfallBTC(10000).StringFixed(8), "0.00000000")
	testutil.AssertEqual(t, o.ShortfallBTC(20000).StringFixed(8), "-0.00010000")
}

func TestLatestPending(t *testing.T) {
	t.Parallel()

	l := testLedger(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, o := range []Order{
		{Address: "addr-old", UserID: 1, CreatedAt: base},
		{Address: "addr-new", UserID: 1, CreatedAt: base.Add(time.Minute)},
		{Address: "addr-other-user", UserID: 2, CreatedAt: base.Add(time.Hour)},
	} {
		if err := l.Create(o); err != nil {
			t.Fatal(err)
		}
	}

	o, ok := l.LatestPending(1)
	if !ok {
		t.Fatal("no pending order found for user 1")
	}
	testutil.AssertEqual(t, o.Address, "addr-new")

	if _, ok := l.LatestPending(3); ok {
		t.Error("found a pending order for a user without orders")
	}

	// Delivered orders don't count.
	if _, _, err := l.ConfirmPoll("addr-new", 1e8, func(Order) error { return nil }); err != nil {
		t.Fatal(err)
	}
	o, ok = l.LatestPending(1)
	if !ok {
		t.Fatal("no pending order found for user 1 after delivery")
	}
	testutil.AssertEqual(t, o.Address, "addr-old")
}

func TestAllNewestFirst(t *testing.T) {
	t.Parallel()

	l := testLedger(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, addr := range []string{"addr-a", "addr-b", "addr-c"} {
		if err := l.Create(Order{
			Address:   addr,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatal(err)
		}
	}

	var got []string
	for _, o := range l.All() {
		got = append(got, o.Address)
	}
	testutil.AssertEqual(t, got, []string{"addr-c", "addr-b", "addr-a"})
}

func TestPersistenceAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.json")
	l, err := Open(path, t.Logf)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Create(Order{Address: "bc1qexample", ItemKey: "item2", AmountBTC: 0.0005}); err != nil {
		t.Fatal(err)
	}
	want := l.Snapshot()

	reopened, err := Open(path, t.Logf)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, reopened.Snapshot(), want)
}
