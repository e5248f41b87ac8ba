package utils

import (
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTML 为图片加上懒加载和 no-referrer，并去掉外层 body
func EnhanceHTML(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	out, _ := doc.Find("body").Html()
	if out == "" {
		out, _ = doc.Html()
	}
	return template.HTML(out)
}

// MediaPreview renders a thumbnail for image-looking URLs and a plain link
// otherwise.
func MediaPreview(url string) template.HTML {
	if url == "" {
		return ""
	}
	esc := template.HTMLEscapeString(url)
	lower := strings.ToLower(url)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return EnhanceHTML(policy.Sanitize(`<img src="` + esc + `" alt="">`))
		}
	}
	return template.HTML(policy.Sanitize(`<a href="` + esc + `">` + esc + `</a>`))
}
