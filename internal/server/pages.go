package server

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"resumecritic/internal/common"
	"resumecritic/internal/errors"
	"resumecritic/internal/types"
	"resumecritic/internal/utils"
)

type indexPage struct {
	Industries      []types.IndustryInfo
	AutoIndustry    string
	AuthEnabled     bool
	MaxFileSizeText string
}

type resultPage struct {
	AnalysisID      string
	Filename        string
	Format          string
	Pages           int
	IndustryLabel   string
	HasJob          bool
	Result          *types.AnalysisResult
	MaxFileSizeText string
}

type errorPage struct {
	Status  int
	Title   string
	Code    string
	Message string
}

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Resume Critic</title>
<style>
body { font-family: Arial, sans-serif; max-width: 820px; margin: 40px auto; padding: 0 20px; background: #f5f5f5; color: #333; }
.card { background: #fff; padding: 28px 36px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); margin-bottom: 20px; }
h1 { text-align: center; }
.muted { color: #666; }
.score { font-size: 48px; font-weight: bold; text-align: center; color: #007bff; }
form label { display: block; margin-top: 14px; font-weight: bold; }
textarea, select, input[type=file] { width: 100%; margin-top: 6px; }
button { margin-top: 20px; background: #007bff; color: #fff; padding: 12px 30px; border: 0; border-radius: 5px; font-size: 16px; cursor: pointer; }
.stats td { padding: 2px 12px 2px 0; }
.error { border-left: 4px solid #d9534f; }
</style>
</head>
<body>{{end}}

{{define "foot"}}</body>
</html>{{end}}

{{define "list"}}{{if .}}<ul>{{range .}}<li>{{.}}</li>{{end}}</ul>{{else}}<p class="muted">None</p>{{end}}{{end}}

{{define "index"}}{{template "head"}}
<div class="card">
<h1>Resume Critic</h1>
<p class="muted">Upload a resume (PDF, DOCX or plain text, up to {{.MaxFileSizeText}}) for keyword, structure and tone feedback.</p>
{{if .AuthEnabled}}<p class="muted">This server requires an API key; send it in the X-API-Key header.</p>{{end}}
<form action="/upload" method="post" enctype="multipart/form-data">
<label for="file">Resume</label>
<input id="file" type="file" name="file" accept=".pdf,.docx,.txt,.md" required>
<label for="industry">Industry</label>
<select id="industry" name="industry">
<option value="{{.AutoIndustry}}">Detect automatically</option>
{{range .Industries}}<option value="{{.Name}}">{{.Label}}</option>
{{end}}</select>
<label for="job_description">Job description (optional)</label>
<textarea id="job_description" name="job_description" rows="8"></textarea>
<button type="submit">Analyze Resume</button>
</form>
</div>
{{template "foot"}}{{end}}

{{define "result"}}{{template "head"}}
<div class="card">
<h1>Resume Critique</h1>
<p class="muted">{{.Filename}} ({{.Format}}{{if .Pages}}, {{.Pages}} pages{{end}}) &middot; analysis {{.AnalysisID}}</p>
<div class="score">{{.Result.OverallScore}}/100</div>
<p style="text-align:center">Industry: <strong>{{.IndustryLabel}}</strong></p>
<table class="stats">
<tr><td>Words</td><td>{{.Result.Stats.WordCount}}</td></tr>
<tr><td>Lines</td><td>{{.Result.Stats.LineCount}}</td></tr>
<tr><td>Email</td><td>{{if .Result.Stats.HasEmail}}yes{{else}}no{{end}}</td></tr>
<tr><td>Phone</td><td>{{if .Result.Stats.HasPhone}}yes{{else}}no{{end}}</td></tr>
</table>
</div>
<div class="card">
<h2>Keywords</h2>
<p>Coverage: {{.Result.KeywordAnalysis.KeywordCoverage}}{{with .Result.KeywordAnalysis.Note}} <span class="muted">({{.}})</span>{{end}}</p>
<h3>Found</h3>{{template "list" .Result.KeywordAnalysis.FoundKeywords}}
<h3>{{if .HasJob}}Missing from the job description{{else}}Worth adding{{end}}</h3>{{template "list" .Result.KeywordAnalysis.SuggestedKeywords}}
</div>
<div class="card">
<h2>Strengths</h2>{{template "list" .Result.Strengths}}
<h2>Areas for Improvement</h2>{{template "list" .Result.AreasForImprovement}}
</div>
<div class="card">
<h2>Formatting</h2>
<p><strong>Structure:</strong> {{.Result.FormattingFeedback.Structure}}</p>
<p><strong>Readability:</strong> {{.Result.FormattingFeedback.Readability}}</p>
{{template "list" .Result.FormattingFeedback.Suggestions}}
<h2>Recommendations</h2>{{template "list" .Result.Recommendations}}
<p><a href="/">Analyze another resume</a></p>
</div>
{{template "foot"}}{{end}}

{{define "error"}}{{template "head"}}
<div class="card error">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
{{with .Code}}<p class="muted">Error code: {{.}}</p>{{end}}
<p><a href="/">Back</a></p>
</div>
{{template "foot"}}{{end}}
`))

// indexHandler serves the upload form
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "index", indexPage{
		Industries:      s.Critic().Industries(),
		AutoIndustry:    common.AutoIndustry,
		AuthEnabled:     len(s.apiKeySet()) > 0,
		MaxFileSizeText: s.maxFileSizeText(),
	})
}

func (s *Server) renderResult(w http.ResponseWriter, page resultPage) {
	s.renderPage(w, http.StatusOK, "result", page)
}

// renderError shows err as an HTML page with the mapped status
func (s *Server) renderError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	page := errorPage{Status: status, Title: http.StatusText(status), Message: "internal error"}
	if appErr, ok := errors.As(err); ok {
		page.Code = appErr.Code
		page.Message = appErr.Message
	}
	s.renderPage(w, status, "error", page)
}

// renderPage buffers the template output before writing headers
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		s.Logger.LogError(err, "Failed to render page", "template", name)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Failed to write page: %v", err)
	}
}

func (s *Server) maxFileSizeText() string {
	if s.MaxFileSize <= 0 {
		return "unlimited"
	}
	return utils.FormatFileSize(s.MaxFileSize)
}
