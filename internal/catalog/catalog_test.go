// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/satstall/satstall/internal/testutil"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "categories.json"), filepath.Join(dir, "items.json"), t.Logf)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestOpenSeedsDefaults(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	testutil.AssertEqual(t, s.Categories(), []string{"cards", "tutorials", "pages"})
	if len(s.Items("cards")) == 0 {
		t.Error("default cards category is empty")
	}
	if _, ok := s.Item("item1"); !ok {
		t.Error("default item1 is missing")
	}
}

func TestOpenMovesCorruptFileAside(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	catsPath := filepath.Join(dir, "categories.json")
	if err := os.WriteFile(catsPath, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(catsPath, filepath.Join(dir, "items.json"), t.Logf)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, s.Categories(), []string{"cards", "tutorials", "pages"})

	if _, err := os.Stat(catsPath + ".corrupt"); err != nil {
		t.Errorf("corrupt file was not moved aside: %v", err)
	}
}

func TestAddItem(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	entry, err := s.AddItem("Test Pack", "0.0002", "/files/test.zip", "cards")
	if err != nil {
		t.Fatal(err)
	}

	it, ok := s.Item(entry.Key)
	if !ok {
		t.Fatalf("item %s not found after AddItem", entry.Key)
	}
	testutil.AssertEqual(t, it.Name, "Test Pack")
	testutil.AssertEqual(t, it.PriceString(), "0.0002")
	testutil.AssertEqual(t, it.FilePath, "/files/test.zip")

	entries := s.Items("cards")
	last := entries[len(entries)-1]
	testutil.AssertEqual(t, last.Key, entry.Key)
}

func TestAddItemNewCategory(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	entry, err := s.AddItem("Fresh", "0.001", "/files/fresh.zip", "misc")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, s.Categories(), []string{"cards", "tutorials", "pages", "misc"})
	testutil.AssertEqual(t, s.Items("misc")[0].Key, entry.Key)
}

func TestAddItemValidation(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	for _, tc := range []struct {
		name, price string
		wantErr     error
	}{
		{"", "0.001", ErrEmptyName},
		{"Bad Price", "-0.001", ErrBadPrice},
		{"Bad Price", "a lot", ErrBadPrice},
	} {
		_, err := s.AddItem(tc.name, tc.price, "/files/x.zip", "cards")
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("AddItem(%q, %q) = %v, want %v", tc.name, tc.price, err, tc.wantErr)
		}
	}

	// Zero price is allowed (free item).
	if _, err := s.AddItem("Freebie", "0", "/files/free.zip", "cards"); err != nil {
		t.Errorf("AddItem with zero price failed: %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	if err := s.DeleteItem("item1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Item("item1"); ok {
		t.Error("item1 still present after DeleteItem")
	}
	for _, entry := range s.Items("cards") {
		if entry.Key == "item1" {
			t.Error("item1 still listed in its category")
		}
	}

	if err := s.DeleteItem("item999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteItem of unknown key = %v, want ErrNotFound", err)
	}
}

func TestItemsSkipsDanglingKeys(t *testing.T) {
	t.Parallel()

	s := testStore(t)

	// Dropping the item from the items document leaves a dangling key in
	// the category; listing must skip it.
	if err := s.items.Write(func(doc *itemsDoc) error {
		delete(doc.Items, "item2")
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	for _, entry := range s.Items("tutorials") {
		if entry.Key == "item2" {
			t.Error("dangling key item2 was listed")
		}
	}
	testutil.AssertEqual(t, len(s.Items("tutorials")), 3)
}

func TestOrderSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	catsPath := filepath.Join(dir, "categories.json")
	itemsPath := filepath.Join(dir, "items.json")

	s, err := Open(catsPath, itemsPath, t.Logf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddItem("Extra", "0.003", "/files/extra.zip", "zextra"); err != nil {
		t.Fatal(err)
	}
	want := s.Categories()

	reopened, err := Open(catsPath, itemsPath, t.Logf)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, reopened.Categories(), want)
}

func TestPriceString(t *testing.T) {
	t.Parallel()

	testutil.AssertEqual(t, Item{PriceBTC: 0.0001}.PriceString(), "0.0001")
	testutil.AssertEqual(t, Item{PriceBTC: 1}.PriceString(), "1")
}
