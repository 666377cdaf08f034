// Package ics decodes a single remote calendar object's raw text into the
// start/end/summary tuple the availability engine needs. Real-world CalDAV
// payloads are frequently truncated, re-encoded, or emitted by
// non-compliant producers, so a structured go-ical decode is backed by a
// regex fallback that pulls the interesting lines straight out of the text.
package ics

import (
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// EventDescriptor is the best-effort result of decoding one calendar
// object. Start and End are nil when extraction could not recover them;
// such an event is unusable for busy-interval computation and is skipped
// by the caller, never defaulted. All recovered instants are normalized
// to UTC.
type EventDescriptor struct {
	Start   *time.Time
	End     *time.Time
	Summary string
}

// Usable reports whether the descriptor carries both instants.
func (d EventDescriptor) Usable() bool {
	return d.Start != nil && d.End != nil
}

var (
	dtStartRe = regexp.MustCompile(`(?m)^DTSTART[^:\r\n]*:([^\r\n]+)`)
	dtEndRe   = regexp.MustCompile(`(?m)^DTEND[^:\r\n]*:([^\r\n]+)`)
	summaryRe = regexp.MustCompile(`(?m)^SUMMARY[^:\r\n]*:([^\r\n]+)`)

	compactUTCRe   = regexp.MustCompile(`^\d{8}T\d{6}Z$`)
	compactLocalRe = regexp.MustCompile(`^\d{8}T\d{6}$`)
	extendedUTCRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)
)

// Extract decodes one raw calendar object. The returned bool reports
// whether the regex fallback was used instead of the structured decoder.
func Extract(raw string) (EventDescriptor, bool) {
	if strings.Contains(raw, "BEGIN:VEVENT") && strings.Contains(raw, "END:VEVENT") {
		if desc, ok := extractStructured(raw); ok {
			return desc, false
		}
	}
	return extractFallback(raw), true
}

// extractStructured runs the full go-ical decoder and reads the first
// VEVENT. It fails (triggering the fallback) when the decode errors, no
// VEVENT is present, or the event lacks a start or end.
func extractStructured(raw string) (EventDescriptor, bool) {
	cal, err := ical.NewDecoder(strings.NewReader(raw)).Decode()
	if err != nil {
		return EventDescriptor{}, false
	}

	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		startProp := child.Props.Get(ical.PropDateTimeStart)
		endProp := child.Props.Get(ical.PropDateTimeEnd)
		if startProp == nil || endProp == nil {
			return EventDescriptor{}, false
		}

		// Floating times are interpreted in the process-local zone;
		// everything is converted to UTC before leaving this package.
		start, err := startProp.DateTime(time.Local)
		if err != nil {
			return EventDescriptor{}, false
		}
		end, err := endProp.DateTime(time.Local)
		if err != nil {
			return EventDescriptor{}, false
		}

		desc := EventDescriptor{}
		startUTC := start.UTC()
		endUTC := end.UTC()
		desc.Start = &startUTC
		desc.End = &endUTC
		if p := child.Props.Get(ical.PropSummary); p != nil {
			desc.Summary = p.Value
		}
		return desc, true
	}

	return EventDescriptor{}, false
}

// extractFallback pattern-matches DTSTART/DTEND/SUMMARY lines directly in
// the raw text. Each field is independently optional; a token that does
// not parse yields a missing field, not an error.
func extractFallback(raw string) EventDescriptor {
	desc := EventDescriptor{}
	if m := dtStartRe.FindStringSubmatch(raw); m != nil {
		desc.Start = parseDateToken(strings.TrimSpace(m[1]))
	}
	if m := dtEndRe.FindStringSubmatch(raw); m != nil {
		desc.End = parseDateToken(strings.TrimSpace(m[1]))
	}
	if m := summaryRe.FindStringSubmatch(raw); m != nil {
		desc.Summary = strings.TrimSpace(m[1])
	}
	return desc
}

// parseDateToken decodes the three date-token shapes seen in the wild:
// compact UTC (20250602T080000Z), compact local (20250602T080000,
// interpreted in local time), and extended ISO UTC
// (2025-06-02T08:00:00Z). Anything else yields nil.
func parseDateToken(tok string) *time.Time {
	var t time.Time
	var err error
	switch {
	case compactUTCRe.MatchString(tok):
		t, err = time.Parse("20060102T150405", strings.TrimSuffix(tok, "Z"))
	case compactLocalRe.MatchString(tok):
		t, err = time.ParseInLocation("20060102T150405", tok, time.Local)
	case extendedUTCRe.MatchString(tok):
		t, err = time.Parse(time.RFC3339, tok)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
