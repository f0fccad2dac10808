// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package docfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/satstall/satstall/internal/testutil"
)

type doc struct {
	Greeting string `json:"greeting"`
}

func TestOpenCreatesAndSeeds(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.json")
	db, err := Open(path, t.Logf, func(d *doc) { d.Greeting = "hello" })
	if err != nil {
		t.Fatal(err)
	}

	var got string
	db.Read(func(d *doc) { got = d.Greeting })
	testutil.AssertEqual(t, got, "hello")

	if _, err := os.Stat(path); err != nil {
		t.Errorf("document file was not created: %v", err)
	}
}

func TestOpenExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"greeting":"saved"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := Open(path, t.Logf, func(d *doc) { d.Greeting = "default" })
	if err != nil {
		t.Fatal(err)
	}

	// The seed must not clobber existing content.
	var got string
	db.Read(func(d *doc) { got = d.Greeting })
	testutil.AssertEqual(t, got, "saved")
}

func TestOpenRecoversFromCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := Open(path, t.Logf, func(d *doc) { d.Greeting = "fresh" })
	if err != nil {
		t.Fatal(err)
	}

	var got string
	db.Read(func(d *doc) { got = d.Greeting })
	testutil.AssertEqual(t, got, "fresh")

	b, err := os.ReadFile(path + ".corrupt")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, string(b), "not json at all")
}
