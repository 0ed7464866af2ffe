package docs

import (
	"strings"

	"github.com/joescharf/shipgate/internal/models"
)

// ParseHandoff splits a session-handoff document on "## " headings and
// maps the four canonical sections onto the handoff record. Sections
// with unrecognized headings are ignored; absent sections leave their
// field empty.
func ParseHandoff(md string) models.SessionHandoff {
	var h models.SessionHandoff

	var target *string
	var body []string
	flush := func() {
		if target != nil {
			*target = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = body[:0]
	}

	for _, line := range strings.Split(md, "\n") {
		if heading, ok := strings.CutPrefix(line, "## "); ok {
			flush()
			switch strings.ToLower(strings.TrimSpace(heading)) {
			case "what was done":
				target = &h.WhatWasDone
			case "current state":
				target = &h.CurrentState
			case "next step":
				target = &h.NextStep
			case "blockers":
				target = &h.Blockers
			default:
				target = nil
			}
			continue
		}
		if target != nil {
			body = append(body, line)
		}
	}
	flush()

	return h
}
