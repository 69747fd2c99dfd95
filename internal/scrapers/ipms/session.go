package ipms

import (
	"context"
	"fmt"
	"strings"
)

// joinSetCookies keeps the name=value part of each Set-Cookie header
// (dropping Path, Expires, ...) and joins them into a Cookie header value.
func joinSetCookies(setCookies []string) string {
	pairs := make([]string, 0, len(setCookies))
	for _, cookie := range setCookies {
		pair, _, _ := strings.Cut(cookie, ";")
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	return strings.Join(pairs, "; ")
}

// EstablishSession visits the hotel's landing page like a browser would and keeps
// the anti-bot cookies it hands out. Any previous session is discarded first,
// sessions are never reused across checks.
func (c *Client) EstablishSession(ctx context.Context) error {
	c.sessionCookies = ""

	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.9",
			"Cache-Control":             noCache,
			"Pragma":                    "no-cache",
			"Expires":                   "0",
			"Sec-Ch-Ua":                 secChUa,
			"Sec-Ch-Ua-Mobile":          "?0",
			"Sec-Ch-Ua-Platform":        `"macOS"`,
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
			"Upgrade-Insecure-Requests": "1",
			"User-Agent":                userAgent,
		}).
		SetQueryParam("_t", c.cacheBust()).
		Get(c.landingUrl())
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSession, err)
		c.tel.ReportBroken(report_client_establish_session, err)
		return err
	}
	if !res.IsSuccess() {
		err = fmt.Errorf("%w: unexpected status %s", ErrSession, res.Status())
		c.tel.ReportBroken(report_client_establish_session, err)
		return err
	}

	cookies := joinSetCookies(res.Header().Values("Set-Cookie"))
	if cookies == "" {
		err = fmt.Errorf("%w: landing page set no cookies", ErrSession)
		c.tel.ReportBroken(report_client_establish_session, err)
		return err
	}
	c.sessionCookies = cookies

	c.tel.ReportDebug(report_client_establish_session, len(strings.Split(cookies, "; ")))
	return nil
}
