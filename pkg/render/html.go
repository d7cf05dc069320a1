package render

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday"
)

var (
	headingRe   = regexp.MustCompile(`<(/?)h[1-6][^>]*>`)
	codeClassRe = regexp.MustCompile(`<code class="[^"]*">`)
	blankRe     = regexp.MustCompile(`\n{3,}`)
)

// Chat clients accept only a handful of inline tags, so block markup is flattened.
var replacer = strings.NewReplacer(
	"<p>", "",
	"</p>", "\n",
	"<strong>", "<b>",
	"</strong>", "</b>",
	"<em>", "<i>",
	"</em>", "</i>",
	"<del>", "<s>",
	"</del>", "</s>",
	"<ul>", "",
	"</ul>", "",
	"<ol>", "",
	"</ol>", "",
	"<li>", "• ",
	"</li>", "",
	"<br />", "\n",
	"<br>", "\n",
	"<hr />", "",
	"<hr>", "",
)

// ToHTML renders model markdown into the HTML subset chat clients display.
func ToHTML(markdown string) string {
	html := string(blackfriday.MarkdownCommon([]byte(markdown)))

	html = headingRe.ReplaceAllStringFunc(html, func(tag string) string {
		if strings.HasPrefix(tag, "</") {
			return "</b>\n"
		}
		return "<b>"
	})
	html = codeClassRe.ReplaceAllString(html, "<code>")
	html = replacer.Replace(html)
	html = blankRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
