package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/adstruct"
	"github.com/srg/blescan/internal/bledb"
	"github.com/srg/blescan/scanner"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/term"
)

// reportPrinter writes report events and decoded fields in the selected format.
type reportPrinter struct {
	w      io.Writer
	format string

	newPeer *color.Color
	updated *color.Color
	dim     *color.Color
}

func newReportPrinter(w io.Writer, format string) *reportPrinter {
	p := &reportPrinter{
		w:       w,
		format:  format,
		newPeer: color.New(color.FgGreen, color.Bold),
		updated: color.New(color.FgCyan),
		dim:     color.New(color.Faint),
	}

	if !isTerminal(w) {
		p.newPeer.DisableColor()
		p.updated.DisableColor()
		p.dim.DisableColor()
	}
	return p
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintEvent writes one report event.
func (p *reportPrinter) PrintEvent(ev scanner.ReportEvent) error {
	if p.format == "json" {
		return p.writeJSON(eventJSON(ev))
	}

	r := ev.Report
	tag := p.updated.Sprint("[UPD]")
	if ev.Type == scanner.EventNew {
		tag = p.newPeer.Sprint("[NEW]")
	}

	if _, err := fmt.Fprintf(p.w, "%s %s  %-7s %-15s %4d dBm\n",
		tag, r.Key(), r.AddressType, r.EventType, r.RSSI); err != nil {
		return err
	}
	return p.printFields(ev.Fields, "    ")
}

// PrintFields writes decoded fields of a bare payload.
func (p *reportPrinter) PrintFields(payload []byte, fields []adstruct.Field) error {
	if p.format == "json" {
		om := orderedmap.New[string, any]()
		om.Set("payload", hex.EncodeToString(payload))
		om.Set("fields", fieldsJSON(fields))
		return p.writeJSON(om)
	}

	if _, err := fmt.Fprintf(p.w, "%s\n", p.dim.Sprintf("payload %s (%d bytes)", hex.EncodeToString(payload), len(payload))); err != nil {
		return err
	}
	return p.printFields(fields, "  ")
}

// PrintSummary writes the end of scan line in text mode.
func (p *reportPrinter) PrintSummary(peers int, dropped int64) error {
	if p.format == "json" {
		return nil
	}
	msg := fmt.Sprintf("Scan complete: %d device(s)", peers)
	if dropped > 0 {
		msg += fmt.Sprintf(", %d event(s) dropped", dropped)
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func (p *reportPrinter) printFields(fields []adstruct.Field, indent string) error {
	if len(fields) == 0 {
		_, err := fmt.Fprintf(p.w, "%s%s\n", indent, p.dim.Sprint("(no AD structures)"))
		return err
	}
	for _, f := range fields {
		line := f.String()
		if note := describe(f); note != "" {
			line += " " + p.dim.Sprintf("(%s)", note)
		}
		if _, err := fmt.Fprintf(p.w, "%s%s\n", indent, line); err != nil {
			return err
		}
	}
	return nil
}

func (p *reportPrinter) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintf(p.w, "%s\n", data)
	return err
}

// describe resolves assigned numbers of a field to names.
func describe(f adstruct.Field) string {
	switch f.Kind {
	case adstruct.KindUUID, adstruct.KindServiceData:
		return bledb.LookupService(hex.EncodeToString(ble.Reverse(f.UUID)))
	case adstruct.KindAppearance:
		return bledb.LookupAppearance(f.Appearance)
	case adstruct.KindManufacturerData:
		notes := []string{}
		if name := bledb.LookupCompany(f.CompanyID); name != "" {
			notes = append(notes, name)
		}
		if parsed, err := adstruct.ParseManufacturerData(f); err == nil && parsed != nil {
			if s, ok := parsed.(fmt.Stringer); ok {
				notes = append(notes, s.String())
			}
		}
		return strings.Join(notes, ", ")
	default:
		return ""
	}
}

func eventJSON(ev scanner.ReportEvent) *orderedmap.OrderedMap[string, any] {
	r := ev.Report
	om := orderedmap.New[string, any]()
	om.Set("event", ev.Type.String())
	om.Set("timestamp", ev.Timestamp.Format(time.RFC3339Nano))
	om.Set("address", r.Key())
	om.Set("address_type", r.AddressType.String())
	om.Set("event_type", r.EventType.String())
	om.Set("rssi", r.RSSI)
	om.Set("payload", hex.EncodeToString(r.Payload()))
	om.Set("fields", fieldsJSON(ev.Fields))
	return om
}

func fieldsJSON(fields []adstruct.Field) []adstruct.Field {
	if fields == nil {
		return []adstruct.Field{}
	}
	return fields
}
