package interviews

import (
	"bytes"
	"html/template"
)

var bodyTemplate = template.Must(template.New("interview").Parse(`<!DOCTYPE html>
<html>
<body>
<h2>Interview candidates for {{.Title}}</h2>
<p>The following candidates were shortlisted. Their CVs are attached where available.</p>
<table id="candidates" border="1" cellpadding="6" cellspacing="0">
<thead><tr><th>Rank</th><th>File</th><th>Match</th></tr></thead>
<tbody>
{{- range .Candidates}}
<tr><td class="rank">{{.Rank}}</td><td class="file">{{.FileName}}</td><td class="match">{{.OverallMatch}}</td></tr>
{{- end}}
</tbody>
</table>
{{- if .Missing}}
<p class="missing">Not attached: {{range $i, $name := .Missing}}{{if $i}}, {{end}}{{$name}}{{end}}</p>
{{- end}}
</body>
</html>
`))

type bodyData struct {
	Title      string
	Candidates []Candidate
	Missing    []string
}

func renderBody(data bodyData) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
