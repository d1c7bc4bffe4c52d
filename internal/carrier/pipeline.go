package carrier

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"carrierscope/internal/fetch"
	"carrierscope/internal/metrics"
)

// Pipeline runs one identifier end to end: snapshot fetch, eligibility
// check, and (in full mode) field extraction plus best-effort email
// recovery. Every outcome is a Verdict; no error escapes an identifier.
type Pipeline struct {
	fetcher fetch.Fetcher
	filter  *Filter
	extract Extractor
	email   *EmailResolver
	baseURL string
	mode    Mode
	logger  *zap.Logger
}

// NewPipeline builds a Pipeline. fetcher should already wrap retry behavior.
func NewPipeline(
	fetcher fetch.Fetcher,
	filter *Filter,
	extract Extractor,
	email *EmailResolver,
	baseURL string,
	mode Mode,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher: fetcher,
		filter:  filter,
		extract: extract,
		email:   email,
		baseURL: baseURL,
		mode:    mode,
		logger:  logger,
	}
}

// SnapshotURL builds the lookup URL for an identifier.
func (p *Pipeline) SnapshotURL(id string) string {
	return fmt.Sprintf(
		"%s?searchtype=ANY&query_type=queryCarrierSnapshot&query_param=USDOT&query_string=%s",
		p.baseURL,
		url.QueryEscape(id),
	)
}

// Run executes the pipeline for one identifier.
func (p *Pipeline) Run(ctx context.Context, id string) Verdict {
	metrics.IncActiveLookups()
	defer metrics.DecActiveLookups()

	id = strings.TrimSpace(id)
	snapshotURL := p.SnapshotURL(id)

	page, err := p.fetcher.Fetch(ctx, snapshotURL)
	if err != nil {
		p.logger.Info("snapshot fetch failed",
			zap.String("id", id),
			zap.Error(err),
		)
		return p.rejected(id, ReasonFetchFailure)
	}

	if reason, ok := p.filter.Check(page); !ok {
		p.logger.Info("identifier rejected",
			zap.String("id", id),
			zap.String("reason", string(reason)),
		)
		return p.rejected(id, reason)
	}

	verdict := Verdict{ID: id, Accepted: true, URL: snapshotURL}
	// URL-collection mode keeps only the source URL; full extraction and
	// deep-fetch are skipped entirely.
	if p.mode != ModeURLs {
		record := p.buildRecord(ctx, id, snapshotURL, page)
		verdict.Record = &record
	}
	metrics.ObserveVerdict("accepted")
	return verdict
}

func (p *Pipeline) rejected(id string, reason RejectReason) Verdict {
	metrics.ObserveVerdict(string(reason))
	return Verdict{ID: id, Reason: reason}
}

func (p *Pipeline) buildRecord(ctx context.Context, id, snapshotURL, page string) Record {
	x := p.extract
	record := Record{
		ID:              id,
		LegalName:       x.ByLabel(page, LabelLegalName),
		DBAName:         x.ByLabel(page, LabelDBAName),
		EntityType:      x.ByLabel(page, LabelEntityType),
		AuthorityStatus: x.ByLabel(page, LabelAuthorityStatus),
		FormDate:        x.ByLabel(page, LabelFormDate),
		PowerUnits:      x.ByLabel(page, LabelPowerUnits),
		Drivers:         x.ByLabel(page, LabelDrivers),
		Physical:        ParseAddress(x.ByLabel(page, LabelPhysicalAddress)),
		Mailing:         ParseAddress(x.ByLabel(page, LabelMailingAddress)),
		Phone:           x.ByLabel(page, LabelPhone),
		Cargo:           x.MarkedSection(page, SectionCargoCarried),
		SourceURL:       snapshotURL,
	}
	record.Operation = InferOperation(x.MarkedSection(page, SectionOperationClass))
	if p.email != nil {
		record.Email = p.email.Resolve(ctx, page, snapshotURL)
	}
	return record
}
