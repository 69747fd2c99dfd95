package service

import (
	"context"
	"cursedcompass-backend/internal/availability"
	"cursedcompass-backend/internal/components/assert"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/history"
	"cursedcompass-backend/internal/scrapers/ipms"
)

const (
	report_http_request       = "http.request"
	report_availability_check = "availability.check"
	report_history_record     = "history.record"
	report_history_list       = "history.list"
	report_history_get        = "history.get"
)

// HistoryAPI is where the results of checks are kept, the route layer
// records every check it runs and serves the most recent ones back.
//
// note: fault injection point
type HistoryAPI interface {
	Record(ctx context.Context, req ipms.AvailabilityRequest, res availability.Response) (string, error)
	List(ctx context.Context, limit int) ([]history.Record, error)
	Get(ctx context.Context, id string) (history.Record, error)
}

// CheckerRegistry resolves hotel ids to their checkers.
type CheckerRegistry interface {
	Get(hotelId string) (availability.HotelChecker, error)
}

// AvailabilityService exposes availability checks over http.
type AvailabilityService struct {
	checkers     CheckerRegistry
	history      HistoryAPI
	defaultHotel string
	tel          telemetry.API
}

type serviceConfig struct {
	history HistoryAPI
	tel     telemetry.API
}

type ServiceOption func(cfg *serviceConfig)

// WithHistory records every check into `history`, without it
// checks are not recorded and the history route is unavailable.
func WithHistory(history HistoryAPI) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.history = history
	}
}

func WithCustomTelemetryAPI(tel telemetry.API) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.tel = tel
	}
}

// NewAvailabilityService creates an AvailabilityService, `defaultHotel` is
// checked when a request does not name a hotel.
func NewAvailabilityService(checkers CheckerRegistry, defaultHotel string, options ...ServiceOption) AvailabilityService {
	assert.NotNil(checkers)
	assert.NotEmptyStr(defaultHotel)

	cfg := serviceConfig{}
	for _, opt := range options {
		opt(&cfg)
	}

	var tel telemetry.API = telemetry.SlogAPI{}
	if cfg.tel != nil {
		tel = cfg.tel
	}

	return AvailabilityService{
		checkers:     checkers,
		history:      cfg.history,
		defaultHotel: defaultHotel,
		tel:          telemetry.NewScopedAPI("service", tel),
	}
}
