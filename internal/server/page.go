package server

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"

	"lottus/internal/domain"
)

var md = goldmark.New()

// pageTemplate is the shared-document page. Styling stays minimal — the
// page exists so a scanned QR code shows something readable, not to be
// the app.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}}{{else}}Lottus{{end}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 36rem; margin: 2rem auto; padding: 0 1rem; color: #27272a; }
h1 { font-size: 1.4rem; }
ol { padding-left: 1.4rem; }
li { margin: 0.6rem 0; }
li p { display: inline; margin: 0; }
.pause { color: #a1a1aa; font-size: 0.85em; margin-left: 0.4em; }
img.qr { display: block; margin: 2rem auto; }
</style>
</head>
<body>
<h1>{{if .Title}}{{.Title}}{{else}}Untitled{{end}}</h1>
{{if .Verses}}<ol>
{{range .Verses}}<li>{{.HTML}}<span class="pause">{{.Pause}}</span></li>
{{end}}</ol>{{else}}<p>This document has no verses yet.</p>{{end}}
<img class="qr" src="/{{.Token}}/qr.png" alt="QR code for this document" width="192" height="192">
</body>
</html>
`))

type pageVerse struct {
	HTML  template.HTML
	Pause string
}

type pageData struct {
	Title  string
	Verses []pageVerse
	Token  string
}

// renderPage writes the HTML page for a shared document. Verse text is
// treated as inline markdown.
func renderPage(w io.Writer, doc domain.Document, token string) error {
	data := pageData{Title: doc.Title, Token: token}
	for _, v := range doc.Verses {
		data.Verses = append(data.Verses, pageVerse{
			HTML:  renderVerse(v.Text),
			Pause: fmtPause(v.Pause),
		})
	}
	return pageTemplate.Execute(w, data)
}

// renderVerse converts verse text to HTML via goldmark. On a conversion
// failure (rare — goldmark accepts almost anything) the text is shown
// escaped instead.
func renderVerse(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

func fmtPause(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}
