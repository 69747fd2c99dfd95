package bootstrap

import (
	"cursedcompass-backend/internal/availability"
	"cursedcompass-backend/internal/components/chrono"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/scrapers/ipms"
	"fmt"
	"strings"
)

type CheckerOptions struct {
	// Transcripts receives full request/response dumps, may be nil.
	Transcripts telemetry.InstrumentOutput
	// NoDump disables keeping raw availability responses.
	NoDump bool
}

// NewChecker wires up the checker of the configured hotel.
func NewChecker(cfg Config, clock chrono.TimeAPI, tel telemetry.API, options CheckerOptions) (*availability.Checker, error) {
	client, err := ipms.NewClient(ipms.ClientOptions{
		BaseUrl:           cfg.Hotel.BaseUrl,
		LandingPath:       cfg.Hotel.LandingPath,
		PropertyCode:      cfg.Hotel.PropertyCode,
		Timeout:           cfg.Scraper.Timeout(),
		MaxRedirects:      cfg.Scraper.MaxRedirects,
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		CloudflareBypass:  cfg.Scraper.CloudflareBypass,
		Transcripts:       options.Transcripts,
	}, clock, tel)
	if err != nil {
		return nil, fmt.Errorf("create booking client for %s: %w", cfg.Hotel.Id, err)
	}

	var dump availability.ResponseDump
	if cfg.Scraper.DumpDir != "" && !options.NoDump {
		prefix := strings.ReplaceAll(cfg.Hotel.Id, "-", "_") + "_response"
		dump = availability.NewFilesystemDump(cfg.Scraper.DumpDir, prefix, clock, tel)
	}

	return availability.NewChecker(
		client,
		ipms.NewDefaultParser(cfg.Hotel.IdPrefix, tel),
		availability.CheckerOptions{
			HotelId:      cfg.Hotel.Id,
			PropertyCode: cfg.Hotel.PropertyCode,
			Timeout:      cfg.Scraper.CheckTimeout(),
			Filter:       availability.Filter{MinInventory: cfg.Scraper.MinInventory},
			Dump:         dump,
		},
		clock,
		tel,
	), nil
}

// NewRegistry registers the checker of the configured hotel.
func NewRegistry(cfg Config, clock chrono.TimeAPI, tel telemetry.API, options CheckerOptions) (*availability.Registry, error) {
	checker, err := NewChecker(cfg, clock, tel, options)
	if err != nil {
		return nil, err
	}
	registry := availability.NewRegistry()
	registry.Register(cfg.Hotel.Id, checker)
	return registry, nil
}
