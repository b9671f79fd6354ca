package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/srg/advscan/pkg/config"
	"github.com/srg/advscan/scanner"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/term"
)

// addressWidth fits a colon-separated MAC address
const addressWidth = 17

// resultPrinter renders results as table rows or JSON lines
type resultPrinter struct {
	out     io.Writer
	format  string
	addr    *color.Color
	printed int
}

func newResultPrinter(out io.Writer, format string) *resultPrinter {
	addr := color.New(color.FgCyan)
	if isTerminal(out) {
		addr.EnableColor()
	} else {
		addr.DisableColor()
	}
	return &resultPrinter{out: out, format: format, addr: addr}
}

// Print writes one result as soon as it arrives
func (p *resultPrinter) Print(r scanner.Result) error {
	defer func() { p.printed++ }()

	if p.format == config.FormatJSON {
		return json.NewEncoder(p.out).Encode(r)
	}

	if p.printed == 0 {
		if err := p.header(); err != nil {
			return err
		}
	}
	return p.row(r)
}

// Finish reports an empty scan in table mode
func (p *resultPrinter) Finish() error {
	if p.printed == 0 && p.format != config.FormatJSON {
		_, err := fmt.Fprintln(p.out, "No advertisements received")
		return err
	}
	return nil
}

// PrintLatest writes the newest payload per address in first-seen order
func (p *resultPrinter) PrintLatest(latest *orderedmap.OrderedMap[string, string]) error {
	results := make([]scanner.Result, 0, latest.Len())
	for pair := latest.Oldest(); pair != nil; pair = pair.Next() {
		results = append(results, scanner.Result{Address: pair.Key, Payload: pair.Value})
	}

	if p.format == config.FormatJSON {
		encoder := json.NewEncoder(p.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	if len(results) == 0 {
		return p.Finish()
	}
	if err := p.header(); err != nil {
		return err
	}
	for _, r := range results {
		if err := p.row(r); err != nil {
			return err
		}
		p.printed++
	}
	return nil
}

func (p *resultPrinter) header() error {
	_, err := fmt.Fprintf(p.out, "%-*s  %s\n", addressWidth, "ADDRESS", "PAYLOAD")
	return err
}

func (p *resultPrinter) row(r scanner.Result) error {
	addr := fmt.Sprintf("%-*s", addressWidth, displayAddress(r.Address))
	_, err := fmt.Fprintf(p.out, "%s  %s\n", p.addr.Sprint(addr), r.Payload)
	return err
}

// displayAddress shows results without a sender address
func displayAddress(addr string) string {
	if addr == "" {
		return "(none)"
	}
	return addr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
