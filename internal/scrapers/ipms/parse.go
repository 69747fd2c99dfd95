package ipms

import (
	"bytes"
	"cursedcompass-backend/internal/components/assert"
	"cursedcompass-backend/internal/components/telemetry"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_parser_parse = "parser.parse"
)

// Strategy is one way of pulling rooms out of a response document.
type Strategy interface {
	// Name identifies the strategy in logs and diagnostics.
	Name() string
	// Extract returns the rooms found in the document. An error means the strategy found
	// something it could not make sense of, rooms may still be returned alongside it.
	Extract(doc *goquery.Document) ([]Room, error)
}

type ParseResult struct {
	Rooms []Room
	// Strategy is the name of the strategy that produced Rooms,
	// empty if no strategy found anything.
	Strategy string
}

// Parser runs its strategies in order and keeps the rooms of the first
// one that finds any. It never fails, the worst case is no rooms.
type Parser struct {
	strategies []Strategy
	tel        telemetry.API
}

func NewParser(tel telemetry.API, strategies ...Strategy) Parser {
	assert.NotNil(tel)
	return Parser{
		strategies: strategies,
		tel:        telemetry.NewScopedAPI("ipms_parser", tel),
	}
}

// NewDefaultParser reads the embedded resgrid array and falls back to
// scraping room-like markup. `idPrefix` prefixes synthesized room ids.
func NewDefaultParser(idPrefix string, tel telemetry.API) Parser {
	return NewParser(
		tel,
		ResgridStrategy{IdPrefix: idPrefix},
		MarkupStrategy{IdPrefix: idPrefix},
	)
}

func (p Parser) Parse(body []byte) ParseResult {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		p.tel.ReportWarning(report_parser_parse, fmt.Errorf("parse html: %w", err))
		return ParseResult{}
	}

	for _, strategy := range p.strategies {
		rooms, err := strategy.Extract(doc)
		if err != nil {
			p.tel.ReportWarning(report_parser_parse, strategy.Name(), err)
		}
		if len(rooms) == 0 {
			p.tel.ReportDebug(report_parser_parse, strategy.Name(), "no rooms")
			continue
		}

		p.tel.ReportDebug(report_parser_parse, strategy.Name(), len(rooms))
		return ParseResult{Rooms: rooms, Strategy: strategy.Name()}
	}

	return ParseResult{}
}
