// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/models"
	"github.com/tomtom215/reelpick/internal/normalize"
	"github.com/tomtom215/reelpick/internal/recommender"
	"github.com/tomtom215/reelpick/internal/session"
)

const (
	loadingText = "Loading movie..."
	promptText  = "[l]ike  [d]islike  [s]kip  [r]eload  [q]uit > "
	helpText    = "commands: l/like, d/dislike, s/skip, r/reload, q/quit"
)

type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdFeedback
	cmdReload
	cmdQuit
	cmdEmpty
)

// parseCommand maps one input line to a command.
func parseCommand(line string) (commandKind, models.FeedbackAction) {
	word := strings.ToLower(strings.TrimSpace(line))
	switch word {
	case "":
		return cmdEmpty, ""
	case "r", "reload":
		return cmdReload, ""
	case "q", "quit", "exit":
		return cmdQuit, ""
	}
	if action, err := models.ParseFeedbackAction(word); err == nil {
		return cmdFeedback, action
	}
	return cmdUnknown, ""
}

// renderSnapshot prints the card for snap, or the loading text, and every notice.
func renderSnapshot(w io.Writer, snap session.Snapshot) {
	if snap.Movie == nil {
		fmt.Fprintln(w, loadingText)
	} else {
		renderCard(w, snap.Movie)
	}
	for _, n := range snap.Notices {
		fmt.Fprintf(w, "! %s\n", n.Message)
	}
}

func renderCard(w io.Writer, m *models.DisplayMovie) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, m.Title)
	fmt.Fprintf(w, "%s | %s\n", m.YearLabel, m.DurationLabel)
	fmt.Fprintln(w, normalize.StarRow(m.StarCount))
	if m.Overview != "" {
		fmt.Fprintln(w, m.Overview)
	}
	if m.PosterURL != "" {
		fmt.Fprintf(w, "Poster: %s\n", m.PosterURL)
	}
	fmt.Fprintln(w)
}

// player drives a session from line-oriented input.
type player struct {
	session *session.Controller
	in      *bufio.Scanner
	out     io.Writer
}

func runPlay(cfg *config.Config, stdin io.Reader, stdout io.Writer) error {
	ctrl := session.NewController(recommender.New(&cfg.Recommender), session.Options{
		Display: normalize.Options{FallbackPoster: cfg.Display.FallbackPoster},
	})
	defer ctrl.Close()

	p := &player{session: ctrl, in: bufio.NewScanner(stdin), out: stdout}
	return p.loop(context.Background())
}

// loop runs until q or end of input. Backend failures are shown as notices
// and never end the loop.
func (p *player) loop(ctx context.Context) error {
	fmt.Fprintln(p.out, loadingText)
	_ = p.session.LoadCurrent(ctx)
	renderSnapshot(p.out, p.session.Snapshot())

	for {
		fmt.Fprint(p.out, promptText)
		if !p.in.Scan() {
			fmt.Fprintln(p.out)
			return p.in.Err()
		}

		kind, action := parseCommand(p.in.Text())
		switch kind {
		case cmdQuit:
			return nil
		case cmdEmpty:
			continue
		case cmdUnknown:
			fmt.Fprintln(p.out, helpText)
			continue
		case cmdReload:
			fmt.Fprintln(p.out, loadingText)
			_ = p.session.LoadCurrent(ctx)
		case cmdFeedback:
			if p.session.Snapshot().Movie == nil {
				fmt.Fprintln(p.out, "No movie to rate yet, try r to reload.")
				continue
			}
			err := p.session.Submit(ctx, action)
			if errors.Is(err, session.ErrSubmitInFlight) {
				fmt.Fprintln(p.out, "Still recording the last choice.")
				continue
			}
		}
		renderSnapshot(p.out, p.session.Snapshot())
	}
}
