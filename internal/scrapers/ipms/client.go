package ipms

import (
	"context"
	"cursedcompass-backend/internal/components/assert"
	"cursedcompass-backend/internal/components/chrono"
	"cursedcompass-backend/internal/components/telemetry"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_establish_session = "client.establish-session"
	report_client_fetch_rooms       = "client.fetch-rooms"
)

const (
	userAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"
	secChUa       = `"Chromium";v="136", "Google Chrome";v="136", "Not.A/Brand";v="99"`
	noCache       = "no-cache, no-store, must-revalidate"
	formEncoded   = "application/x-www-form-urlencoded; charset=UTF-8"
	availablePath = "/booking/rmdetails"
)

type ClientOptions struct {
	// BaseUrl is the booking host, ex. "https://live.ipms247.com".
	BaseUrl string
	// LandingPath is the hotel's booking page under /booking/, ex. "book-rooms-jeromegrandhotel".
	LandingPath string
	// PropertyCode is the booking system's id of the hotel, ex. "10246".
	PropertyCode string

	// Timeout bounds each request, defaults to 30 seconds.
	Timeout time.Duration
	// MaxRedirects bounds the redirects followed per request, defaults to 5.
	MaxRedirects int
	// RequestsPerSecond limits outbound requests, 0 disables the limiter.
	RequestsPerSecond float64
	// CloudflareBypass swaps in a transport with a browser-like TLS fingerprint.
	CloudflareBypass bool
	// Transcripts receives full request/response dumps, may be nil.
	Transcripts telemetry.InstrumentOutput
}

// Client talks to the booking system of a single hotel.
//
// It holds the session cookies of the check in progress, so a Client must not be used
// by more than one check at a time. Use one Client per in-flight check or serialize access.
type Client struct {
	http    *resty.Client
	baseUrl *url.URL
	options ClientOptions
	time    chrono.TimeAPI
	tel     telemetry.API

	sessionCookies string
}

func NewClient(options ClientOptions, clock chrono.TimeAPI, tel telemetry.API) (*Client, error) {
	assert.NotNil(clock)
	assert.NotNil(tel)
	assert.NotEmptyStr(options.LandingPath)
	assert.NotEmptyStr(options.PropertyCode)

	tel = telemetry.NewScopedAPI("ipms_scraper", tel)

	if options.Timeout <= 0 {
		options.Timeout = 30 * time.Second
	}
	if options.MaxRedirects <= 0 {
		options.MaxRedirects = 5
	}

	baseUrl, err := url.Parse(strings.TrimSuffix(options.BaseUrl, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", options.BaseUrl)
	}

	httpClient := resty.New()
	httpClient.SetTimeout(options.Timeout)
	httpClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(options.MaxRedirects))
	// session cookies are carried by hand, a jar would append its own copies
	httpClient.SetCookieJar(nil)
	if options.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	if options.RequestsPerSecond > 0 {
		// max burst >= 1 just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(options.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, options.Transcripts)

	return &Client{
		http:    httpClient,
		baseUrl: baseUrl,
		options: options,
		time:    clock,
		tel:     tel,
	}, nil
}

func (c *Client) cacheBust() string {
	return strconv.FormatInt(c.time.Now().UnixMilli(), 10)
}

func (c *Client) landingUrl() string {
	return fmt.Sprintf("%s/booking/%s", c.baseUrl.String(), c.options.LandingPath)
}

// SessionCookies returns the cookie header value of the current session.
func (c *Client) SessionCookies() string {
	return c.sessionCookies
}

// FetchRooms submits the availability search with the current session
// and returns the raw response body.
func (c *Client) FetchRooms(ctx context.Context, form FormData) ([]byte, error) {
	timestamp := c.cacheBust()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"Accept":             "text/html, */*; q=0.01",
			"Accept-Language":    "en-US,en;q=0.9",
			"Cache-Control":      noCache,
			"Pragma":             "no-cache",
			"Expires":            "0",
			"Content-Type":       formEncoded,
			"DNT":                "1",
			"Origin":             c.baseUrl.String(),
			"Priority":           "u=1, i",
			"Referer":            c.landingUrl(),
			"Sec-Ch-Ua":          secChUa,
			"Sec-Ch-Ua-Mobile":   "?0",
			"Sec-Ch-Ua-Platform": `"macOS"`,
			"Sec-Fetch-Dest":     "empty",
			"Sec-Fetch-Mode":     "cors",
			"Sec-Fetch-Site":     "same-origin",
			"User-Agent":         userAgent,
			"X-Requested-With":   "XMLHttpRequest",
			"X-Cache-Bust":       timestamp,
			"Cookie":             c.sessionCookies,
		}).
		SetQueryParam("_t", timestamp).
		SetBody(form.Encode()).
		Post(c.baseUrl.String() + availablePath)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
		c.tel.ReportBroken(report_client_fetch_rooms, err)
		return nil, err
	}
	if !res.IsSuccess() {
		err = fmt.Errorf("%w: unexpected status %s", ErrTransport, res.Status())
		c.tel.ReportBroken(report_client_fetch_rooms, err)
		return nil, err
	}

	c.tel.ReportDebug(report_client_fetch_rooms, res.Status(), len(res.Body()))
	return res.Body(), nil
}
