package profiling

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the profile as a Markdown document with one table for
// numeric columns and one for the rest.
func (p Profile) Markdown(title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d rows, %d columns\n\n", p.Rows, len(p.Columns))

	var numeric, other []ColumnProfile
	for _, c := range p.Columns {
		if c.Summary != nil {
			numeric = append(numeric, c)
		} else {
			other = append(other, c)
		}
	}

	if len(numeric) > 0 {
		b.WriteString("## Numeric columns\n\n")
		b.WriteString("| column | missing | mean | sd | min | median | max | outliers |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, c := range numeric {
			s := c.Summary
			fmt.Fprintf(&b, "| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %d |\n",
				c.Name, c.Missing, s.Mean, s.StdDev, s.Min, s.Median, s.Max, s.Outliers)
		}
		b.WriteString("\n")
	}

	if len(other) > 0 {
		b.WriteString("## Other columns\n\n")
		b.WriteString("| column | kind | missing | top levels |\n")
		b.WriteString("|---|---|---:|---|\n")
		for _, c := range other {
			top := make([]string, len(c.Levels))
			for i, l := range c.Levels {
				top[i] = fmt.Sprintf("%s (%d)", l.Value, l.Count)
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", c.Name, c.Kind, c.Missing, strings.Join(top, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the Markdown report as a standalone HTML page.
func (p Profile) HTML(title string) []byte {
	md := []byte(p.Markdown(title))
	ps := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML(md, ps, renderer)
}
