package parser

import (
	"fmt"
	"strconv"
	"time"

	"reservas/pkg/logger"
	"reservas/pkg/model"
)

type Status int

const (
	// StatusParsed means the line item carries a valid reservation.
	StatusParsed Status = iota
	// StatusNotApplicable means the line item is not a reservation at all
	// (wrong SKU, or the workshop product added as an accessory with no
	// booking properties). Expected and silent.
	StatusNotApplicable
	// StatusMalformed means the line item claims to be a reservation but its
	// properties do not parse. Dropped from results, logged for data quality.
	StatusMalformed
)

type Outcome struct {
	Status  Status
	Start   time.Time
	End     time.Time
	Persons int
	Reason  string
}

func parsed(start, end time.Time) Outcome {
	return Outcome{Status: StatusParsed, Start: start, End: end}
}

func notApplicable() Outcome {
	return Outcome{Status: StatusNotApplicable}
}

func malformed(format string, args ...any) Outcome {
	return Outcome{Status: StatusMalformed, Reason: fmt.Sprintf(format, args...)}
}

// Strategy extracts a reservation interval from one line item's property bag.
// Strategies are pure: NotApplicable when the encoding they understand is
// absent, Malformed when it is present but broken.
type Strategy struct {
	Name    string
	Extract func(li model.LineItem) Outcome
}

// Parser turns line items into reservation intervals. The property schema is
// owned upstream and has gone through several incompatible revisions, so the
// parser is an ordered strategy list: first strategy that recognizes the
// encoding wins. New encodings are new strategies, existing ones stay frozen.
type Parser struct {
	sku        string
	strategies []Strategy
	log        *logger.Logger
}

func New(workshopSKU string, log *logger.Logger) *Parser {
	return &Parser{
		sku: workshopSKU,
		strategies: []Strategy{
			{Name: "booking_timestamps", Extract: extractBookingTimestamps},
			{Name: "fecha_hora", Extract: extractFechaHora},
			{Name: "reservas_blob", Extract: extractReservasBlob},
		},
		log: log,
	}
}

// Parse extracts a reservation from one line item. It never fails the caller:
// anything that cannot become a valid interval comes back as NotApplicable or
// Malformed and the caller drops it.
func (p *Parser) Parse(li model.LineItem) Outcome {
	if li.SKU != p.sku {
		return notApplicable()
	}

	for _, s := range p.strategies {
		out := s.Extract(li)
		if out.Status == StatusNotApplicable {
			continue
		}

		if out.Status == StatusMalformed {
			p.log.Debug("malformed booking properties",
				"strategy", s.Name,
				"reason", out.Reason,
			)
			return out
		}

		if !out.Start.Before(out.End) {
			p.log.Debug("malformed booking interval",
				"strategy", s.Name,
				"start", out.Start,
				"end", out.End,
			)
			return malformed("start %s is not before end %s", out.Start, out.End)
		}

		if li.Quantity <= 0 {
			return malformed("non-positive quantity %d", li.Quantity)
		}
		out.Persons = li.Quantity
		return out
	}

	return notApplicable()
}

// extractBookingTimestamps handles the numeric encoding: start as epoch
// millis, duration in minutes. No text parsing, so it is tried first.
func extractBookingTimestamps(li model.LineItem) Outcome {
	rawStart, ok := li.PropertyValue("_booking_start_timestamp")
	if !ok {
		return notApplicable()
	}

	millis, err := strconv.ParseInt(rawStart, 10, 64)
	if err != nil {
		return malformed("bad _booking_start_timestamp %q", rawStart)
	}

	rawDuration, ok := li.PropertyValue("_booking_duration")
	if !ok {
		return malformed("_booking_start_timestamp without _booking_duration")
	}
	minutes, err := strconv.Atoi(rawDuration)
	if err != nil || minutes <= 0 {
		return malformed("bad _booking_duration %q", rawDuration)
	}

	start := time.UnixMilli(millis).UTC()
	return parsed(start, start.Add(time.Duration(minutes)*time.Minute))
}

// extractFechaHora handles the two-property text encoding: any key containing
// "fecha" carries the date, any key containing "hora" carries a time range in
// "H:MM AM/PM - H:MM AM/PM" form. Both instants land on the parsed day.
func extractFechaHora(li model.LineItem) Outcome {
	rawDate, hasDate := li.PropertyContaining("fecha")
	rawTime, hasTime := li.PropertyContaining("hora")
	if !hasDate || !hasTime {
		return notApplicable()
	}

	day, err := parseDate(rawDate)
	if err != nil {
		return malformed("bad fecha %q: %v", rawDate, err)
	}

	from, to, err := parseTimeRange(rawTime)
	if err != nil {
		return malformed("bad hora %q: %v", rawTime, err)
	}

	return parsed(day.Add(from), day.Add(to))
}

// extractReservasBlob handles the single-property encoding where date and
// time hide inside one "reservas" value behind Fecha:/Hora: sub-labels.
func extractReservasBlob(li model.LineItem) Outcome {
	blob, ok := li.PropertyValue("reservas")
	if !ok {
		return notApplicable()
	}

	m := reservasRegex.FindStringSubmatch(blob)
	if m == nil {
		return malformed("reservas value %q has no Fecha/Hora labels", blob)
	}

	day, err := parseDate(m[1])
	if err != nil {
		return malformed("bad fecha in reservas %q: %v", m[1], err)
	}

	from, to, err := parseTimeRange(m[2])
	if err != nil {
		return malformed("bad hora in reservas %q: %v", m[2], err)
	}

	return parsed(day.Add(from), day.Add(to))
}
