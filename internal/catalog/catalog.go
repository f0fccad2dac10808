// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package catalog implements the storefront catalog: categories and items,
// each persisted as a JSON document with atomic writes.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"crawshaw.dev/jsonfile"
	"github.com/shopspring/decimal"

	"github.com/satstall/satstall/internal/docfile"
	"github.com/satstall/satstall/internal/logger"
)

// Errors reported for malformed admin input. State is left unchanged when
// they are returned.
var (
	ErrEmptyName = errors.New("catalog: item name is empty")
	ErrBadPrice  = errors.New("catalog: unparsable or negative price")
	ErrNotFound  = errors.New("catalog: no such item")
)

// Item is a digital good for sale.
type Item struct {
	Name     string  `json:"name"`
	PriceBTC float64 `json:"price_btc"`
	FilePath string  `json:"file_path"`
}

// PriceString formats the item price as a plain decimal BTC amount.
func (it Item) PriceString() string {
	return decimal.NewFromFloat(it.PriceBTC).String()
}

// Entry is an item together with its catalog key.
type Entry struct {
	Key  string
	Item Item
}

// Category is an ordered list of item keys. Categories persist as an array so
// the rendering order survives reloads.
type Category struct {
	Key   string   `json:"key"`
	Items []string `json:"items"`
}

type categoriesDoc struct {
	Categories []Category `json:"categories"`
}

type itemsDoc struct {
	Items map[string]Item `json:"items"`
}

// Store holds the catalog documents. All mutations go through the per-file
// write lock and are atomically persisted.
type Store struct {
	categories *jsonfile.JSONFile[categoriesDoc]
	items      *jsonfile.JSONFile[itemsDoc]
	logf       logger.Logf
}

// Open loads the catalog from the two document paths, seeding built-in
// defaults when a document is absent or corrupt.
func Open(categoriesPath, itemsPath string, logf logger.Logf) (*Store, error) {
	cats, err := docfile.Open(categoriesPath, logf, seedCategories)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	items, err := docfile.Open(itemsPath, logf, seedItems)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &Store{categories: cats, items: items, logf: logf}, nil
}

// Categories returns category keys in their persisted order.
func (s *Store) Categories() []string {
	var keys []string
	s.categories.Read(func(doc *categoriesDoc) {
		for _, c := range doc.Categories {
			keys = append(keys, c.Key)
		}
	})
	return keys
}

// Items returns the items of a category in order, skipping item keys that
// don't resolve to a known item.
func (s *Store) Items(category string) []Entry {
	var keys []string
	s.categories.Read(func(doc *categoriesDoc) {
		for _, c := range doc.Categories {
			if c.Key == category {
				keys = slices.Clone(c.Items)
				break
			}
		}
	})

	var entries []Entry
	s.items.Read(func(doc *itemsDoc) {
		for _, key := range keys {
			it, ok := doc.Items[key]
			if !ok {
				continue
			}
			entries = append(entries, Entry{Key: key, Item: it})
		}
	})
	return entries
}

// Item looks up a single item by key.
func (s *Store) Item(key string) (Item, bool) {
	var (
		it Item
		ok bool
	)
	s.items.Read(func(doc *itemsDoc) {
		it, ok = doc.Items[key]
	})
	return it, ok
}

// AddItem validates and appends a new item, also appending its key to the
// given category (creating the category if needed). The price is parsed as a
// decimal BTC amount; unparsable or negative input fails with [ErrBadPrice]
// and leaves the catalog unchanged.
func (s *Store) AddItem(name, price, filePath, category string) (Entry, error) {
	if name == "" {
		return Entry{}, ErrEmptyName
	}
	d, err := decimal.NewFromString(price)
	if err != nil || d.Sign() < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrBadPrice, price)
	}

	it := Item{
		Name:     name,
		PriceBTC: d.InexactFloat64(),
		FilePath: filePath,
	}

	var key string
	if err := s.items.Write(func(doc *itemsDoc) error {
		if doc.Items == nil {
			doc.Items = make(map[string]Item)
		}
		key = nextKey(doc.Items)
		doc.Items[key] = it
		return nil
	}); err != nil {
		return Entry{}, err
	}

	if err := s.categories.Write(func(doc *categoriesDoc) error {
		for i, c := range doc.Categories {
			if c.Key == category {
				doc.Categories[i].Items = append(doc.Categories[i].Items, key)
				return nil
			}
		}
		doc.Categories = append(doc.Categories, Category{Key: category, Items: []string{key}})
		return nil
	}); err != nil {
		return Entry{}, err
	}

	return Entry{Key: key, Item: it}, nil
}

// DeleteItem removes an item and drops its key from every category.
func (s *Store) DeleteItem(key string) error {
	var found bool
	if err := s.items.Write(func(doc *itemsDoc) error {
		if _, found = doc.Items[key]; found {
			delete(doc.Items, key)
		}
		return nil
	}); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return s.categories.Write(func(doc *categoriesDoc) error {
		for i, c := range doc.Categories {
			doc.Categories[i].Items = slices.DeleteFunc(slices.Clone(c.Items), func(k string) bool {
				return k == key
			})
		}
		return nil
	})
}

// Snapshot returns a copy of the whole catalog, used by backups.
func (s *Store) Snapshot() ([]Category, map[string]Item) {
	var cats []Category
	s.categories.Read(func(doc *categoriesDoc) {
		for _, c := range doc.Categories {
			cats = append(cats, Category{Key: c.Key, Items: slices.Clone(c.Items)})
		}
	})
	items := make(map[string]Item)
	s.items.Read(func(doc *itemsDoc) {
		for k, it := range doc.Items {
			items[k] = it
		}
	})
	return cats, items
}

// nextKey picks the first unused sequential item key.
func nextKey(items map[string]Item) string {
	for n := len(items) + 1; ; n++ {
		key := "item" + strconv.Itoa(n)
		if _, taken := items[key]; !taken {
			return key
		}
	}
}
