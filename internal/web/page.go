package web

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/hellenic-development/figma-meta/internal/config"
)

type page struct {
	HasDefaultToken bool
	FileKey         string
	NodeIDs         string
	MaxDepth        int
	Depths          []int
	Error           string
	Result          *resultView
}

type resultView struct {
	FileName     string
	DocumentName string
	NodeCount    int
	Skipped      []string
	JSON         string
	DownloadHref template.URL
}

// newPage pre-fills the form with what the user submitted, falling back to
// the configured values. The token itself is never echoed back.
func (s *Server) newPage(req extractRequest) *page {
	p := &page{
		HasDefaultToken: s.cfg.Token != "",
		FileKey:         req.FileKey,
		NodeIDs:         req.NodeIDs,
		MaxDepth:        req.MaxDepth,
	}
	if p.FileKey == "" {
		p.FileKey = s.cfg.FileKey
	}
	if p.NodeIDs == "" {
		p.NodeIDs = s.cfg.NodeIDs
	}
	if p.MaxDepth < config.MinDepth || p.MaxDepth > config.MaxDepth {
		p.MaxDepth = s.cfg.MaxDepth
	}
	for d := config.MinDepth; d <= config.MaxDepth; d++ {
		p.Depths = append(p.Depths, d)
	}
	return p
}

func (s *Server) render(w http.ResponseWriter, status int, p *page) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Figma metadata extractor</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; display: flex; min-height: 100vh; }
aside { width: 320px; padding: 1.5rem; background: #f4f4f6; box-sizing: border-box; }
main { flex: 1; padding: 1.5rem; overflow: auto; }
label { display: block; margin-top: 1rem; font-weight: 600; }
input, select { width: 100%; padding: .4rem; margin-top: .3rem; box-sizing: border-box; }
button { margin-top: 1.5rem; padding: .5rem 1rem; }
.error { color: #b00020; background: #fdecee; padding: .75rem; border-radius: 4px; }
pre { background: #1e1e1e; color: #e6e6e6; padding: 1rem; border-radius: 4px; }
</style>
</head>
<body>
<aside>
<h2>Settings</h2>
<form method="post" action="/extract">
<label for="token">Figma access token</label>
<input type="password" id="token" name="token" autocomplete="off"{{if .HasDefaultToken}} placeholder="using FIGMA_TOKEN"{{end}}>
<label for="file_key">File key or URL</label>
<input type="text" id="file_key" name="file_key" value="{{.FileKey}}">
<label for="node_ids">Node IDs (comma-separated)</label>
<input type="text" id="node_ids" name="node_ids" value="{{.NodeIDs}}">
<label for="max_depth">Max depth</label>
<select id="max_depth" name="max_depth">
{{- $cur := .MaxDepth}}{{range .Depths}}
<option value="{{.}}"{{if eq . $cur}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<button type="submit">Extract metadata</button>
</form>
</aside>
<main>
<h1>Figma metadata extractor</h1>
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{with .Result}}
<p>{{.NodeCount}} node(s) extracted{{with .DocumentName}} from <strong>{{.}}</strong>{{end}}.</p>
{{with .Skipped}}<p>Not found in the file: {{range $i, $id := .}}{{if $i}}, {{end}}<code>{{$id}}</code>{{end}}</p>{{end}}
<p><a href="{{.DownloadHref}}" download="{{.FileName}}">Download {{.FileName}}</a></p>
<pre>{{.JSON}}</pre>
{{else}}{{if not .Error}}<p>Fill in the settings and press <em>Extract metadata</em>.</p>{{end}}{{end}}
</main>
</body>
</html>
`))
