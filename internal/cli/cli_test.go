// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cli

import (
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
)

func testEnv(args ...string) *Env {
	return &Env{
		Args:   args,
		Getenv: func(string) string { return "" },
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	var ran bool
	app := AppFunc(func(ctx context.Context, env *Env) error {
		ran = true
		return nil
	})
	if err := Run(context.Background(), app, testEnv()); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("app didn't run")
	}
}

func TestRunVersionFlag(t *testing.T) {
	t.Parallel()

	app := AppFunc(func(ctx context.Context, env *Env) error {
		t.Error("app ran despite -version")
		return nil
	})
	err := Run(context.Background(), app, testEnv("-version"))
	if !errors.Is(err, ErrExitVersion) {
		t.Fatalf("err = %v, want ErrExitVersion", err)
	}
	if isPrintableError(err) {
		t.Error("ErrExitVersion must not be printed")
	}
}

func TestRunBadFlag(t *testing.T) {
	t.Parallel()

	app := AppFunc(func(ctx context.Context, env *Env) error { return nil })
	err := Run(context.Background(), app, testEnv("-no-such-flag"))
	if err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
	if isPrintableError(err) {
		t.Error("flag parse errors must not be printed twice")
	}
}

type flagApp struct {
	verbose bool
	args    []string
}

func (a *flagApp) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.verbose, "verbose", false, "Be more verbose.")
}

func (a *flagApp) Run(ctx context.Context, env *Env) error {
	a.args = env.Args
	return nil
}

func TestRunAppFlags(t *testing.T) {
	t.Parallel()

	app := &flagApp{}
	if err := Run(context.Background(), app, testEnv("-verbose", "rest")); err != nil {
		t.Fatal(err)
	}
	if !app.verbose {
		t.Error("app flag was not parsed")
	}
	if len(app.args) != 1 || app.args[0] != "rest" {
		t.Errorf("env.Args = %v, want [rest]", app.args)
	}
}

func TestRunAppError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	app := AppFunc(func(ctx context.Context, env *Env) error { return errBoom })
	if err := Run(context.Background(), app, testEnv()); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want %v", err, errBoom)
	}
}
