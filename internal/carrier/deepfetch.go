package carrier

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"carrierscope/internal/fetch"
	"carrierscope/internal/metrics"
)

var (
	// Hop one: either the named registration transfer page or a path into
	// the secondary safety measurement system.
	crossRefLink = regexp.MustCompile(`(?i)href="([^"]*(?:CarrierRegistration\.aspx|/SMS/Carrier/)[^"]*)"`)
	// Hop two: the registration detail page.
	registrationLink = regexp.MustCompile(`(?i)href="([^"]*CarrierRegistration\.aspx[^"]*)"`)

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// EmailResolver follows the bounded cross-reference chain from a snapshot
// page to recover a contact email. Recovery is best-effort: every failure
// along the chain degrades to an empty email and is logged, never
// propagated.
type EmailResolver struct {
	fetcher fetch.Fetcher
	pauser  fetch.Pauser
	delay   time.Duration
	logger  *zap.Logger
}

// NewEmailResolver builds an EmailResolver. delay is the politeness pause
// taken before each hop.
func NewEmailResolver(fetcher fetch.Fetcher, delay time.Duration, logger *zap.Logger) *EmailResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailResolver{
		fetcher: fetcher,
		pauser:  fetch.TimerPauser{},
		delay:   delay,
		logger:  logger,
	}
}

// WithPauser swaps the politeness pauser; tests use this to avoid sleeping.
func (r *EmailResolver) WithPauser(p fetch.Pauser) *EmailResolver {
	r.pauser = p
	return r
}

// Resolve walks snapshot -> cross-reference page -> registration page and
// returns the first email-shaped substring on the final page, or "".
func (r *EmailResolver) Resolve(ctx context.Context, snapshot, pageURL string) string {
	crossRef := firstLink(snapshot, crossRefLink)
	if crossRef == "" {
		metrics.ObserveDeepFetch(metrics.DeepFetchMissing)
		return ""
	}
	crossRefURL := absoluteURL(pageURL, crossRef)

	r.pauser.Pause(ctx, r.delay)
	crossRefPage, err := r.fetcher.Fetch(ctx, crossRefURL)
	if err != nil {
		r.logger.Warn("cross-reference fetch failed",
			zap.String("url", crossRefURL),
			zap.Error(err),
		)
		metrics.ObserveDeepFetch(metrics.DeepFetchFailed)
		return ""
	}

	detail := firstLink(crossRefPage, registrationLink)
	if detail == "" {
		metrics.ObserveDeepFetch(metrics.DeepFetchMissing)
		return ""
	}
	detailURL := absoluteURL(crossRefURL, detail)

	r.pauser.Pause(ctx, r.delay)
	detailPage, err := r.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		r.logger.Warn("registration detail fetch failed",
			zap.String("url", detailURL),
			zap.Error(err),
		)
		metrics.ObserveDeepFetch(metrics.DeepFetchFailed)
		return ""
	}

	email := emailPattern.FindString(detailPage)
	if email == "" {
		metrics.ObserveDeepFetch(metrics.DeepFetchMissing)
		return ""
	}
	metrics.ObserveDeepFetch(metrics.DeepFetchFound)
	return email
}

func firstLink(page string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "&amp;", "&")
}

// absoluteURL resolves href against base; an unparseable pair falls back to
// the href as given.
func absoluteURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
