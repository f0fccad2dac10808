// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package docfile opens JSON documents backed by [crawshaw.dev/jsonfile],
// seeding defaults when a document is absent and recovering from corrupt
// files instead of refusing to start.
package docfile

import (
	"errors"
	"io/fs"
	"os"

	"crawshaw.dev/jsonfile"

	"github.com/satstall/satstall/internal/logger"
)

// Open loads the JSON document at path. If the file doesn't exist, a new one
// is created and seeded with seed. If the file exists but can't be parsed, it
// is moved aside to path+".corrupt" and a fresh seeded document is created in
// its place; the failure is logged, not fatal.
func Open[T any](path string, logf logger.Logf, seed func(*T)) (*jsonfile.JSONFile[T], error) {
	db, err := jsonfile.Load[T](path)
	if err == nil {
		return db, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		logf("%s is unreadable (%v), moving it aside and starting from defaults", path, err)
		if err := os.Rename(path, path+".corrupt"); err != nil {
			return nil, err
		}
	}
	return create(path, seed)
}

func create[T any](path string, seed func(*T)) (*jsonfile.JSONFile[T], error) {
	db, err := jsonfile.New[T](path)
	if err != nil {
		return nil, err
	}
	if seed == nil {
		return db, nil
	}
	if err := db.Write(func(doc *T) error {
		seed(doc)
		return nil
	}); err != nil {
		return nil, err
	}
	return db, nil
}
