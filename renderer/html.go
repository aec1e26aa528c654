package renderer

import (
	"bytes"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ARR Report</title>
</head>
<body>
`

const htmlFoot = `</body>
</html>
`

// HTML converts a markdown report into a standalone html page. Tables use
// the GitHub flavored markdown syntax.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(htmlHead)
	conv := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := conv.Convert([]byte(markdown), &buf); err != nil {
		return "", eris.Wrap(err, "failed to convert report to html")
	}
	buf.WriteString(htmlFoot)
	return buf.String(), nil
}
