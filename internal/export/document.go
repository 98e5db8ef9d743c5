package export

import (
	"fmt"
	"sort"

	"github.com/aymerick/raymond"

	"annexops/internal/completeness"
	"annexops/internal/manifest"
	"annexops/internal/schema"
	dErrors "annexops/pkg/domain-errors"
)

// annexTemplate renders the human-readable Annex IV document. Handlebars
// keeps the layout declarative; the context below is the only contract.
var annexTemplate = raymond.MustParse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Annex IV Technical Documentation: {{system_name}} {{version_label}}</title>
<style>
body { font-family: Georgia, serif; max-width: 60rem; margin: 2rem auto; color: #1a1a1a; }
h1 { border-bottom: 3px solid #1a1a1a; padding-bottom: .5rem; }
h2 { margin-top: 2rem; border-bottom: 1px solid #999; padding-bottom: .25rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: .4rem .6rem; text-align: left; vertical-align: top; }
th { background: #f2f2f2; }
.meta { color: #555; font-size: .9rem; }
.hash { font-family: monospace; word-break: break-all; }
.gap { color: #a33; }
.score { font-weight: bold; }
</style>
</head>
<body>
<h1>Annex IV Technical Documentation</h1>
<p class="meta">
System: <strong>{{system_name}}</strong> · Version: <strong>{{version_label}}</strong>
({{version_status}}) · Provider organization: {{org_name}}<br>
Generated at: {{generated_at}}<br>
Snapshot hash: <span class="hash">{{snapshot_hash}}</span><br>
Overall completeness: <span class="score">{{overall_score}}%</span>
</p>

{{#each sections}}
<h2>{{title}}</h2>
<p class="meta">Section {{key}} · completeness <span class="score">{{score}}%</span> · {{evidence_count}} evidence item(s)</p>
{{#if fields}}
<table>
<tr><th>Field</th><th>Value</th></tr>
{{#each fields}}
<tr><td>{{name}}</td><td>{{value}}</td></tr>
{{/each}}
</table>
{{else}}
<p class="meta">No content recorded for this section.</p>
{{/if}}
{{#if gaps}}
<ul>
{{#each gaps}}
<li class="gap">{{this}}</li>
{{/each}}
</ul>
{{/if}}
{{/each}}

<h2>Evidence Index</h2>
{{#if evidence}}
<table>
<tr><th>ID</th><th>Title</th><th>Type</th><th>Checksum</th></tr>
{{#each evidence}}
<tr><td>{{id}}</td><td>{{title}}</td><td>{{type}}</td><td class="hash">{{checksum}}</td></tr>
{{/each}}
</table>
{{else}}
<p class="meta">No evidence items attached.</p>
{{/if}}
</body>
</html>
`)

// renderDocument produces the AnnexIV.html artifact from the manifest and
// completeness report.
func renderDocument(m manifest.Manifest, report completeness.Report) ([]byte, error) {
	gapsByKey := make(map[string][]string, len(report.Sections))
	scoreByKey := make(map[string]float64, len(report.Sections))
	for _, sr := range report.Sections {
		gapsByKey[sr.SectionKey] = sr.Gaps
		scoreByKey[sr.SectionKey] = sr.Score
	}

	sections := make([]map[string]any, 0, len(m.Sections))
	for _, s := range m.Sections {
		fields := make([]map[string]any, 0, len(s.Content))
		names := make([]string, 0, len(s.Content))
		for name := range s.Content {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fields = append(fields, map[string]any{
				"name":  name,
				"value": fmt.Sprintf("%v", s.Content[name]),
			})
		}
		sections = append(sections, map[string]any{
			"key":            s.Key,
			"title":          schema.Title(s.Key),
			"score":          scoreByKey[s.Key],
			"evidence_count": len(s.EvidenceRefs),
			"fields":         fields,
			"gaps":           gapsByKey[s.Key],
		})
	}

	evidence := make([]map[string]any, 0, len(m.EvidenceIndex))
	for _, item := range m.EvidenceIndex {
		evidence = append(evidence, map[string]any{
			"id":       item.ID,
			"title":    item.Title,
			"type":     item.Type,
			"checksum": item.Checksum,
		})
	}

	html, err := annexTemplate.Exec(map[string]any{
		"system_name":    m.System.Name,
		"org_name":       m.Org.Name,
		"version_label":  m.Version.Label,
		"version_status": m.Version.Status,
		"generated_at":   m.GeneratedAt.Format("2006-01-02 15:04:05 UTC"),
		"snapshot_hash":  m.SnapshotHash,
		"overall_score":  report.OverallScore,
		"sections":       sections,
		"evidence":       evidence,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeComputation, "render annex document")
	}
	return []byte(html), nil
}
