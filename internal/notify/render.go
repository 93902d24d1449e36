package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/formpost/formpost/internal/model"
)

// Subject is the subject line of every notification.
const Subject = "New Form Submission"

// Line is one labeled field of a notification.
type Line struct {
	Label string
	Value string
}

// Lines returns the notification lines ordered by field name.
func Lines(fields model.Fields) []Line {
	keys := fields.Keys()
	lines := make([]Line, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, Line{Label: capitalize(k), Value: fields[k].Text()})
	}
	return lines
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// RenderText renders the plain-text body.
func RenderText(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s: %s\n", l.Label, l.Value)
	}
	return b.String()
}

var htmlTmpl = template.Must(template.New("notification").Funcs(template.FuncMap{
	"multiline": func(s string) template.HTML {
		escaped := template.HTMLEscapeString(s)
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	},
}).Parse(`<div style="background:#f4f6fb;padding:32px 0;font-family:'Segoe UI',Roboto,Arial,sans-serif;">
<div style="max-width:480px;margin:40px auto;background:#fff;border-radius:18px;overflow:hidden;">
<div style="background:linear-gradient(90deg,#6a82fb 0%,#fc5c7d 100%);padding:24px 32px 16px 32px;">
<h2 style="color:#fff;margin:0;font-weight:700;">{{.Subject}}</h2>
</div>
<div style="padding:28px 32px 16px 32px;">
{{- range .Lines}}
<div style="margin-bottom:18px;"><span style="display:inline-block;min-width:80px;color:#6a82fb;font-weight:600;">{{.Label}}:</span> <span style="color:#222;">{{multiline .Value}}</span></div>
{{- end}}
</div>
</div>
</div>
`))

// RenderHTML renders the HTML body. Values are escaped and newlines become <br>.
func RenderHTML(lines []Line) (string, error) {
	var buf bytes.Buffer
	err := htmlTmpl.Execute(&buf, struct {
		Subject string
		Lines   []Line
	}{Subject, lines})
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
