package availability

import (
	"context"
	"cursedcompass-backend/internal/components/assert"
	"cursedcompass-backend/internal/components/chrono"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/scrapers/ipms"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_checker_init  = "checker.init"
	report_checker_check = "checker.check"
	report_checker_stage = "checker.stage"
	report_checker_rooms = "checker.rooms"
)

const instrumentationName = "cursedcompass-backend/internal/availability"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)
)

// DefaultTimeout bounds a whole check. Each of the two network round trips
// is bounded on its own by the client, this leaves room for both.
const DefaultTimeout = 60 * time.Second

// stage is a step of a check, every check walks them in order and stops
// at the first one that fails.
type stage string

const (
	stageIdle               stage = "idle"
	stageSessionEstablished stage = "session-established"
	stageRequested          stage = "requested"
	stageParsed             stage = "parsed"
	stageFiltered           stage = "filtered"
	stageDone               stage = "done"
)

// BookingClient is the conversation with a hotel's booking system.
type BookingClient interface {
	EstablishSession(ctx context.Context) error
	FetchRooms(ctx context.Context, form ipms.FormData) ([]byte, error)
}

type CheckerOptions struct {
	HotelId      string
	PropertyCode string
	// Timeout bounds a whole check, defaults to DefaultTimeout.
	Timeout time.Duration
	// Filter.MinInventory defaults to DefaultMinInventory.
	Filter Filter
	// Dump keeps raw responses, may be nil.
	Dump ResponseDump
}

// Details is what a check saw before filtering.
type Details struct {
	// Strategy names the parser strategy that found the rooms.
	Strategy string
	// Parsed holds every room found, including those the filter removed.
	Parsed []ipms.Room
}

// Checker runs availability checks against one hotel.
//
// A check holds the session of the underlying client from start to finish
// so checks on the same Checker are serialized.
type Checker struct {
	mutex sync.Mutex

	client  BookingClient
	parser  ipms.Parser
	options CheckerOptions
	time    chrono.TimeAPI
	tel     telemetry.API
	checks  metric.Int64Counter
}

func NewChecker(
	client BookingClient,
	parser ipms.Parser,
	options CheckerOptions,
	clock chrono.TimeAPI,
	tel telemetry.API,
) *Checker {
	assert.NotNil(client)
	assert.NotNil(clock)
	assert.NotNil(tel)
	assert.NotEmptyStr(options.HotelId)
	assert.NotEmptyStr(options.PropertyCode)

	tel = telemetry.NewScopedAPI("availability", tel)

	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	if options.Filter.MinInventory <= 0 {
		options.Filter.MinInventory = DefaultMinInventory
	}

	checks, err := meter.Int64Counter(
		"availability.checks",
		metric.WithDescription("Number of availability checks by outcome."),
	)
	if err != nil {
		tel.ReportWarning(report_checker_init, err)
	}

	return &Checker{
		client:  client,
		parser:  parser,
		options: options,
		time:    clock,
		tel:     tel,
		checks:  checks,
	}
}

func (c *Checker) HotelId() string {
	return c.options.HotelId
}

// CheckAvailability runs a single check, it never fails, failures
// are reported through the Success and Error fields of the response.
func (c *Checker) CheckAvailability(ctx context.Context, req ipms.AvailabilityRequest) Response {
	res, _ := c.CheckWithDetails(ctx, req)
	return res
}

// CheckWithDetails is CheckAvailability that also returns what the parser
// found before filtering.
func (c *Checker) CheckWithDetails(ctx context.Context, req ipms.AvailabilityRequest) (Response, Details) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ctx, span := tracer.Start(ctx, "availability.check", trace.WithAttributes(
		attribute.String("hotel.id", c.options.HotelId),
		attribute.String("check_in", req.CheckInString()),
		attribute.String("check_out", req.CheckOutString()),
		attribute.Int("guests", req.Guests),
	))
	defer span.End()

	res, details := c.run(ctx, req)

	span.SetAttributes(
		attribute.Bool("success", res.Success),
		attribute.Int("rooms.found", res.TotalRoomsFound),
		attribute.Int("rooms.kept", res.RoomsAfterFiltering),
		attribute.String("parser.strategy", details.Strategy),
	)
	if !res.Success {
		span.SetStatus(codes.Error, res.Error)
	}
	if c.checks != nil {
		c.checks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("hotel.id", c.options.HotelId),
			attribute.Bool("success", res.Success),
		))
	}

	return res, details
}

func (c *Checker) enter(s stage) {
	c.tel.ReportDebug(report_checker_stage, c.options.HotelId, string(s))
}

func (c *Checker) fail(at stage, err error) Response {
	c.tel.ReportBroken(report_checker_check, string(at), err)
	c.enter(stageDone)
	return failure(c.options.HotelId, c.time.Now(), err)
}

func (c *Checker) run(ctx context.Context, req ipms.AvailabilityRequest) (Response, Details) {
	c.enter(stageIdle)

	err := req.Validate()
	if err != nil {
		return c.fail(stageIdle, err), Details{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	err = c.client.EstablishSession(ctx)
	if err != nil {
		return c.fail(stageIdle, err), Details{}
	}
	c.enter(stageSessionEstablished)

	form := ipms.BuildFormData(req, c.options.PropertyCode)
	body, err := c.client.FetchRooms(ctx, form)
	if err != nil {
		return c.fail(stageSessionEstablished, err), Details{}
	}
	c.enter(stageRequested)

	var sourcePath string
	if c.options.Dump != nil {
		sourcePath = c.options.Dump.Save(req, body)
	}

	parsed := c.parser.Parse(body)
	c.enter(stageParsed)

	kept, removed := c.options.Filter.Apply(parsed.Rooms)
	c.enter(stageFiltered)
	c.tel.ReportDebug(report_checker_rooms, parsed.Strategy, len(parsed.Rooms), removed)
	c.tel.ReportCount(report_checker_rooms, int64(len(kept)))

	c.enter(stageDone)
	return Response{
		HotelId:             c.options.HotelId,
		Rooms:               kept,
		Success:             true,
		ScrapedAt:           c.time.Now(),
		SourceHtmlPath:      sourcePath,
		TotalRoomsFound:     len(parsed.Rooms),
		RoomsAfterFiltering: len(kept),
	}, Details{Strategy: parsed.Strategy, Parsed: parsed.Rooms}
}
