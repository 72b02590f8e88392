package templates

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/a-h/templ"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

const styles = `
body{font-family:system-ui,sans-serif;margin:0;display:flex;min-height:100vh;color:#1f2933}
aside{width:280px;padding:1.5rem;background:#f5f7fa;border-right:1px solid #e4e7eb}
main{flex:1;padding:1.5rem 2rem;max-width:1100px}
label{display:block;margin:.75rem 0 .25rem;font-weight:600}
select,input{width:100%;padding:.35rem}
select[multiple]{height:10rem}
.metrics{display:flex;gap:1rem}
.metric{flex:1;padding:1rem;border:1px solid #e4e7eb;border-radius:6px}
.metric span{display:block;font-size:.85rem;color:#52606d}
.metric strong{font-size:1.5rem}
table{border-collapse:collapse;width:100%;font-size:.9rem}
th,td{border-bottom:1px solid #e4e7eb;padding:.35rem .5rem;text-align:left}
.notice{padding:.75rem 1rem;background:#fffbea;border-left:4px solid #f0b429}
.error{padding:.75rem 1rem;background:#ffeeee;border-left:4px solid #e12d39}
img{max-width:100%}
.downloads a{display:block;margin-top:.75rem}
`

// Signals returns the datastar signal object mirroring the criteria.
func Signals(c models.FilterCriteria) ([]byte, error) {
	compare := c.Compare
	if compare == nil {
		compare = []string{}
	}
	return json.Marshal(map[string]any{
		"region":  c.Region,
		"start":   dateValue(c.Start),
		"end":     dateValue(c.End),
		"compare": compare,
	})
}

// Page is the full dashboard document.
func Page(vm models.ViewModel) templ.Component {
	return component(func(ctx context.Context, h *html) {
		signals, err := Signals(vm.Criteria)
		if err != nil {
			h.err = err
			return
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>India Unemployment Dashboard</title>`)
		h.raw(`<script type="module"`)
		h.attr("src", datastarScript)
		h.raw(`></script><style>` + styles + `</style></head>`)

		h.raw(`<body`)
		h.attr("data-signals", string(signals))
		h.raw(`><aside>`)
		h.render(ctx, Controls(vm))
		h.raw(`</aside><main><h1>India Unemployment Dashboard</h1>`)
		for _, section := range Sections(vm) {
			h.render(ctx, section)
		}
		h.raw(`</main></body></html>`)
	})
}

// Sections lists every fragment with a stable element id, in page order.
func Sections(vm models.ViewModel) []templ.Component {
	return []templ.Component{
		Notices(vm),
		Preview(vm),
		Metrics(vm),
		Summary(vm),
		Trend(vm),
		Comparison(vm),
	}
}

func Controls(vm models.ViewModel) templ.Component {
	return component(func(ctx context.Context, h *html) {
		c := vm.Criteria
		h.raw(`<form id="controls" data-on-change="@get('/sse/dashboard')" onsubmit="return false">`)
		h.raw(`<h2>Filters</h2>`)

		h.raw(`<label for="region">Select a State:</label><select id="region" data-bind-region>`)
		for _, r := range vm.Regions {
			option(h, r, r == c.Region)
		}
		h.raw(`</select>`)

		if vm.HasDate {
			for _, f := range []struct {
				name, label string
				value       string
			}{
				{"start", "From:", dateValue(c.Start)},
				{"end", "To:", dateValue(c.End)},
			} {
				h.printf(`<label for="%s">%s</label><input type="date"`, f.name, f.label)
				h.attr("id", f.name)
				h.attr("data-bind-"+f.name, "")
				h.attr("value", f.value)
				h.attr("min", dateValue(vm.MinDate))
				h.attr("max", dateValue(vm.MaxDate))
				h.raw(`>`)
			}
		}

		h.raw(`<h2>Multi-State Comparison</h2>`)
		h.raw(`<label for="compare">Select states to compare:</label><select id="compare" multiple data-bind-compare>`)
		for _, r := range vm.Regions {
			if r == c.Region {
				continue
			}
			option(h, r, slices.Contains(c.Compare, r))
		}
		h.raw(`</select>`)

		if vm.Ready() {
			q := Query(c)
			h.raw(`<div class="downloads"><a`)
			h.attr("href", "/download/csv?"+q)
			h.attr("download", vm.DownloadName)
			h.raw(`>Download Filtered Data as CSV</a><a`)
			h.attr("href", "/download/xlsx?"+q)
			h.raw(`>Download as Excel</a></div>`)
		}
		h.raw(`</form>`)
	})
}

func option(h *html, value string, selected bool) {
	h.raw(`<option`)
	h.attr("value", value)
	if selected {
		h.raw(` selected`)
	}
	h.raw(`>`)
	h.text(value)
	h.raw(`</option>`)
}

func Notices(vm models.ViewModel) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div id="notices">`)
		if !vm.Ready() {
			h.raw(`<p class="error">`)
			h.text(vm.Message)
			h.raw(`</p>`)
		}
		for _, n := range vm.Notices {
			h.raw(`<p class="notice">`)
			h.text(n)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
	})
}

// sectionMessage writes the inline message for a section and reports whether
// there was one.
func sectionMessage(h *html, vm models.ViewModel, section string) bool {
	msg, ok := vm.Messages[section]
	if ok {
		h.raw(`<p class="notice">`)
		h.text(msg)
		h.raw(`</p>`)
	}
	return ok
}

func Preview(vm models.ViewModel) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="preview">`)
		if vm.Ready() {
			h.raw(`<h2>Data Preview for `)
			h.text(vm.Criteria.Region)
			h.raw(`</h2>`)
			if !sectionMessage(h, vm, models.SectionPreview) {
				h.raw(`<table><thead><tr>`)
				for _, col := range vm.Columns {
					h.raw(`<th>`)
					h.text(title(col))
					h.raw(`</th>`)
				}
				h.raw(`</tr></thead><tbody>`)
				for _, row := range vm.Preview {
					h.raw(`<tr>`)
					for _, cell := range row {
						h.raw(`<td>`)
						h.text(cell)
						h.raw(`</td>`)
					}
					h.raw(`</tr>`)
				}
				h.raw(`</tbody></table>`)
				h.printf(`<p>%d rows selected.</p>`, vm.RowCount)
			}
		}
		h.raw(`</section>`)
	})
}

func metric(h *html, label, value string) {
	h.raw(`<div class="metric"><span>`)
	h.text(label)
	h.raw(`</span><strong>`)
	h.text(value)
	h.raw(`</strong></div>`)
}

func Metrics(vm models.ViewModel) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="metrics">`)
		if vm.Ready() {
			h.raw(`<h2>Key Metrics</h2>`)
			if !sectionMessage(h, vm, models.SectionMetrics) && vm.Metrics != nil {
				h.raw(`<div class="metrics">`)
				metric(h, "Avg Unemployment Rate", percent(vm.Metrics.AvgUnemploymentRate))
				if v := vm.Metrics.AvgLabourParticipationRate; v != nil {
					metric(h, "Avg Labour Participation", percent(*v))
				}
				if v := vm.Metrics.AvgEstimatedEmployed; v != nil {
					metric(h, "Avg Employed", count(*v))
				}
				h.raw(`</div>`)
			}
		}
		h.raw(`</section>`)
	})
}

func Summary(vm models.ViewModel) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="summary">`)
		if vm.Ready() {
			h.raw(`<h2>Summary Statistics</h2>`)
			if !sectionMessage(h, vm, models.SectionSummary) && vm.Summary != nil {
				h.raw(`<div class="metrics">`)
				metric(h, "Min Unemployment Rate", percent(vm.Summary.Min))
				metric(h, "Max Unemployment Rate", percent(vm.Summary.Max))
				metric(h, "Median Unemployment Rate", percent(vm.Summary.Median))
				h.raw(`</div>`)
			}
		}
		h.raw(`</section>`)
	})
}

func chart(h *html, src, alt string) {
	h.raw(`<img`)
	h.attr("src", src)
	h.attr("alt", alt)
	h.raw(`>`)
}

func Trend(vm models.ViewModel) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="trend">`)
		if vm.Ready() {
			h.raw(`<h2>Unemployment Rate Trend</h2>`)
			if !sectionMessage(h, vm, models.SectionTrend) && vm.Trend != nil {
				q := Query(vm.Criteria)
				chart(h, "/charts/trend.png?"+q, "Unemployment rate over time for "+vm.Criteria.Region)
				if vm.Labour != nil {
					h.raw(`<h2>Labour Participation Rate Trend</h2>`)
					chart(h, "/charts/trend.png?"+q+"&column="+models.ColumnLabourParticipationRate,
						"Labour participation rate over time for "+vm.Criteria.Region)
				}
			}
		}
		h.raw(`</section>`)
	})
}

func Comparison(vm models.ViewModel) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="comparison">`)
		if vm.Ready() && len(vm.Criteria.Compare) > 0 {
			h.raw(`<h2>Multi-State Comparison</h2>`)
			if !sectionMessage(h, vm, models.SectionComparison) {
				q := Query(vm.Criteria)
				chart(h, "/charts/compare.png?"+q, "Unemployment rate comparison")

				h.raw(`<h2>Average Unemployment Rates by State</h2>`)
				h.raw(`<table><thead><tr><th>State</th><th>Average Unemployment Rate (%)</th></tr></thead><tbody>`)
				for _, g := range vm.Ranking {
					h.raw(`<tr><td>`)
					h.text(g.Key)
					h.raw(`</td><td>`)
					h.printf("%.2f", g.Mean)
					h.raw(`</td></tr>`)
				}
				h.raw(`</tbody></table>`)
			}
		}
		h.raw(`</section>`)
	})
}
