package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/orizon-lang/astopt/internal/optimize"
)

const defaultWidth = 80

type passCount struct {
	Pass    string `json:"pass"`
	Changes int    `json:"changes"`
}

type changeReport struct {
	Pass        string `json:"pass"`
	Description string `json:"description"`
	Span        string `json:"span"`
	Before      string `json:"before,omitempty"`
	After       string `json:"after,omitempty"`
}

type fileReport struct {
	Path    string         `json:"path"`
	Changes []changeReport `json:"changes"`
}

type stringCandidate struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Count   int    `json:"count"`
	First   string `json:"first_file"`
}

type summary struct {
	Enabled bool              `json:"enabled"`
	Units   int               `json:"units"`
	Total   int               `json:"total"`
	Passes  []passCount       `json:"passes"`
	Files   []fileReport      `json:"files"`
	Strings []stringCandidate `json:"strings,omitempty"`
}

// buildSummary collects the outcome of one run from its context.
func buildSummary(ctx *optimize.Context, units int) summary {
	s := summary{Enabled: ctx.Enabled(), Units: units, Total: ctx.Count()}

	for id, n := range ctx.CountsByPass() {
		s.Passes = append(s.Passes, passCount{Pass: id, Changes: n})
	}
	sort.Slice(s.Passes, func(i, j int) bool { return s.Passes[i].Pass < s.Passes[j].Pass })

	for _, path := range ctx.Files() {
		fr := fileReport{Path: path}
		for _, e := range ctx.EntriesForFile(path) {
			fr.Changes = append(fr.Changes, changeReport{
				Pass:        e.PassID,
				Description: e.Description,
				Span:        e.Span.String(),
				Before:      e.Before,
				After:       e.After,
			})
		}
		s.Files = append(s.Files, fr)
	}

	for _, lit := range ctx.StringLiterals() {
		if lit.Count < 2 {
			continue
		}
		s.Strings = append(s.Strings, stringCandidate{Name: lit.Name, Content: lit.Content, Count: lit.Count, First: lit.FirstFile})
	}
	return s
}

func writeJSON(w io.Writer, s summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeText prints s wrapped to width columns.
func writeText(w io.Writer, s summary, width int) {
	if !s.Enabled {
		fmt.Fprintf(w, "optimization disabled; %d units passed through\n", s.Units)
		return
	}
	fmt.Fprintf(w, "%d changes across %d units\n", s.Total, s.Units)
	for _, pc := range s.Passes {
		fmt.Fprintf(w, "  %-20s %d\n", pc.Pass, pc.Changes)
	}

	for _, fr := range s.Files {
		fmt.Fprintf(w, "\n%s\n", fr.Path)
		for _, c := range fr.Changes {
			for _, line := range wrap(fmt.Sprintf("[%s] %s (%s)", c.Pass, c.Description, c.Span), width-2) {
				fmt.Fprintf(w, "  %s\n", line)
			}
			if c.Before == "" && c.After == "" {
				continue
			}
			for _, line := range wrap("- "+c.Before, width-4) {
				fmt.Fprintf(w, "    %s\n", line)
			}
			for _, line := range wrap("+ "+c.After, width-4) {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	if len(s.Strings) > 0 {
		fmt.Fprintf(w, "\nstring constant candidates\n")
		for _, c := range s.Strings {
			for _, line := range wrap(fmt.Sprintf("%s = %q (%d uses, first in %s)", c.Name, c.Content, c.Count, c.First), width-2) {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
}

// wrap splits s into lines of at most width runes, breaking at spaces
// where possible.
func wrap(s string, width int) []string {
	if width < 20 {
		width = 20
	}
	var lines []string
	r := []rune(s)
	for len(r) > width {
		cut := width
		for i := width; i > 0; i-- {
			if r[i] == ' ' {
				cut = i
				break
			}
		}
		lines = append(lines, strings.TrimRight(string(r[:cut]), " "))
		r = []rune(strings.TrimLeft(string(r[cut:]), " "))
	}
	if len(r) > 0 || len(lines) == 0 {
		lines = append(lines, string(r))
	}
	return lines
}
