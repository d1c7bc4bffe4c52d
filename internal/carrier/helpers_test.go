package carrier

import "time"

// snapshotFields parameterizes the parts of the fixture page the filter
// cares about.
type snapshotFields struct {
	Status     string
	FormDate   string
	PowerUnits string
	Drivers    string
	ExtraBody  string
}

// buildSnapshot renders a snapshot page in the shape the lookup service
// serves: label anchors inside header cells, marker tables nested one level
// down, and a cross-reference link at the bottom.
func buildSnapshot(f snapshotFields) string {
	return `<html><body>
<table>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#legalname">Legal Name:</a></th>
<td class="queryfield">ACME HAULING &amp; SONS LLC</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#dbaname">DBA Name:</a></th>
<td class="queryfield">ACME EXPRESS</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#entitytype">Entity Type:</a></th>
<td class="queryfield">CARRIER</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#authstatus">Operating Authority Status:</a></th>
<td class="queryfield">` + f.Status + `</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#mcs150">MCS-150 Form Date:</a></th>
<td class="queryfield">` + f.FormDate + `</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#powerunits">Power Units:</a></th>
<td class="queryfield">` + f.PowerUnits + `</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#drivers">Drivers:</a></th>
<td class="queryfield">` + f.Drivers + `</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#physaddr">Physical Address:</a></th>
<td class="queryfield">100 DEPOT RD<br>SPRINGFIELD, IL 62704</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#mailaddr">Mailing Address:</a></th>
<td class="queryfield">PO BOX 77<br>SPRINGFIELD, IL 62705</td></tr>
<tr><th class="querylabelbkg"><a href="saferhelp.aspx#phone">Phone:</a></th>
<td class="queryfield">(217) 555-0139</td></tr>
</table>
<table>
<tr><th colspan="6"><a href="saferhelp.aspx#opclass">Operation Classification:</a></th></tr>
<tr><td>
<table>
<tr>
<td class="queryfield">X</td><td class="queryfield">Auth. For Hire Property</td>
<td class="queryfield">&nbsp;</td><td class="queryfield">Passenger</td>
<td class="queryfield">&nbsp;</td><td class="queryfield">Broker</td>
</tr>
</table>
</td></tr>
</table>
<table>
<tr><th colspan="6"><a href="saferhelp.aspx#cargo">Cargo Carried:</a></th></tr>
<tr><td>
<table>
<tr>
<td class="queryfield">X</td><td class="queryfield">General Freight</td>
<td class="queryfield">X</td><td class="queryfield">Building Materials</td>
<td class="queryfield">&nbsp;</td><td class="queryfield">Liquids/Gases</td>
</tr>
<tr>
<td class="queryfield">X</td><td class="queryfield">General Freight</td>
</tr>
</table>
</td></tr>
</table>
<a href="http://ai.fmcsa.dot.gov/SMS/Carrier/123456/Overview.aspx">SMS Results</a>
` + f.ExtraBody + `
</body></html>`
}

// eligibleSnapshot is a page that passes every predicate against fixedNow.
func eligibleSnapshot() string {
	return buildSnapshot(snapshotFields{
		Status:     "AUTHORIZED FOR Property",
		FormDate:   fixedNow.AddDate(0, 0, -200).Format("01/02/2006"),
		PowerUnits: "5",
		Drivers:    "3",
	})
}

// fixedNow anchors the filter clock in tests.
var fixedNow = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}
