// Package carrier defines the carrier-registration record model and the
// extraction/filter pipeline that produces it.
package carrier

import "strings"

// Mode selects how much work the pipeline performs per accepted identifier.
type Mode string

// Output modes.
const (
	ModeFull Mode = "full"
	ModeURLs Mode = "urls"
	ModeBoth Mode = "both"
)

// RejectReason explains why an identifier did not make it into the batch result.
type RejectReason string

// Rejection reasons, in the order the predicate chain can produce them.
const (
	ReasonNotFound        RejectReason = "not-found"
	ReasonNotAuthorized   RejectReason = "not-authorized"
	ReasonTooNew          RejectReason = "too-new"
	ReasonFleetTooSmall   RejectReason = "insufficient-fleet"
	ReasonTooFewDrivers   RejectReason = "insufficient-drivers"
	ReasonFetchFailure    RejectReason = "fetch-failure"
	ReasonMissingFormDate RejectReason = "missing-registration-date"
)

// OperationCategory classifies what kind of operation a carrier runs.
type OperationCategory string

// Operation categories inferred from the classification table.
const (
	OperationProperty  OperationCategory = "Property"
	OperationPassenger OperationCategory = "Passenger"
	OperationBroker    OperationCategory = "Broker"
)

// Address is a free-text address plus its decomposed parts, when parseable.
type Address struct {
	Raw   string
	City  string
	State string
	Zip   string
}

// Record is the normalized carrier registration extracted from a snapshot
// page. A Record is only built for identifiers that passed every eligibility
// predicate.
type Record struct {
	ID              string
	LegalName       string
	DBAName         string
	EntityType      string
	AuthorityStatus string
	FormDate        string
	PowerUnits      string
	Drivers         string
	Physical        Address
	Mailing         Address
	Phone           string
	Email           string
	Operation       OperationCategory
	Cargo           []string
	SourceURL       string
}

// Verdict is the value-typed outcome of one identifier's pipeline run.
// Rejections are ordinary values, never errors.
type Verdict struct {
	ID       string
	Accepted bool
	Reason   RejectReason
	Record   *Record
	URL      string
}

// BatchResult aggregates accepted output across a whole run.
type BatchResult struct {
	Records []Record
	URLs    []string
}

// CSVHeader is the fixed header row for record output.
func CSVHeader() []string {
	return []string{
		"id",
		"legal_name",
		"dba_name",
		"entity_type",
		"authority_status",
		"form_date",
		"power_units",
		"drivers",
		"physical_address",
		"physical_city",
		"physical_state",
		"physical_zip",
		"mailing_address",
		"mailing_city",
		"mailing_state",
		"mailing_zip",
		"phone",
		"email",
		"operation",
		"cargo",
		"source_url",
	}
}

// CSVRow flattens the record into the column order of CSVHeader.
func (r Record) CSVRow() []string {
	return []string{
		r.ID,
		r.LegalName,
		r.DBAName,
		r.EntityType,
		r.AuthorityStatus,
		r.FormDate,
		r.PowerUnits,
		r.Drivers,
		r.Physical.Raw,
		r.Physical.City,
		r.Physical.State,
		r.Physical.Zip,
		r.Mailing.Raw,
		r.Mailing.City,
		r.Mailing.State,
		r.Mailing.Zip,
		r.Phone,
		r.Email,
		string(r.Operation),
		strings.Join(r.Cargo, "; "),
		r.SourceURL,
	}
}
