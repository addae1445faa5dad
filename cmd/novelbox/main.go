/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"novelbox/internal/config"
	"novelbox/internal/crash"
	applog "novelbox/internal/log"
	"novelbox/internal/version"
)

// errUsage marks bad arguments; main prints usage and exits 2.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "novelbox - visual-novel dialog interpreter")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  novelbox version|-v|--version            Show version")
	_, _ = fmt.Fprintln(w, "  novelbox parse <file> [section]          Print the compiled orders of a script")
	_, _ = fmt.Fprintln(w, "  novelbox expand <file> <table.csv>       Print a script after template expansion")
	_, _ = fmt.Fprintln(w, "  novelbox play <dialogs.yaml>             Run dialogs headless and print each page")
	_, _ = fmt.Fprintln(w, "  novelbox proof <dialogs.yaml> <out>      Run dialogs and write a proof (.pdf or a PNG dir)")
	_, _ = fmt.Fprintln(w, "  novelbox backlog [<dsn>] [n]             List the n most recent pages read")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "config:", err)
	}
	applog.Init(logOptions(cfg))
	l := applog.WithComponent("cli")

	rc := &crash.Context{}
	defer crash.Recover(rc)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage(os.Stdout)
		os.Exit(2)
	}
	rc.Command = args[1]
	if len(args) > 2 {
		rc.Input = args[2]
	}
	err = run(cfg, args[1], args[2:], os.Stdout, rc)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(os.Stderr, err)
		usage(os.Stderr)
		os.Exit(2)
	default:
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// logOptions maps the logging section; config.Load already applied NBX_LOG_*.
func logOptions(cfg config.AppConfig) applog.Options {
	return applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	}
}

func run(cfg config.AppConfig, cmd string, args []string, out io.Writer, rc *crash.Context) error {
	switch cmd {
	case "version", "--version", "-v":
		_, err := fmt.Fprintln(out, version.String())
		return err
	case "parse":
		if len(args) < 1 {
			return fmt.Errorf("parse requires <file>: %w", errUsage)
		}
		section, all := "", true
		if len(args) > 1 {
			section, all = args[1], false
		}
		return parseCmd(out, args[0], section, all)
	case "expand":
		if len(args) < 2 {
			return fmt.Errorf("expand requires <file> and <table.csv>: %w", errUsage)
		}
		return expandCmd(out, args[0], args[1])
	case "play":
		if len(args) < 1 {
			return fmt.Errorf("play requires <dialogs.yaml>: %w", errUsage)
		}
		return playCmd(cfg, out, args[0], rc)
	case "proof":
		if len(args) < 2 {
			return fmt.Errorf("proof requires <dialogs.yaml> and <out>: %w", errUsage)
		}
		return proofCmd(cfg, out, args[0], args[1], rc)
	case "backlog":
		dsn, n := cfg.Storage.DSN, 20
		if len(args) > 0 {
			dsn = args[0]
		}
		if len(args) > 1 {
			if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
				return fmt.Errorf("backlog count %q: %w", args[1], errUsage)
			}
		}
		return backlogCmd(cfg, out, dsn, n)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}
