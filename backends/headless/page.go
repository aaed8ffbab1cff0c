// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package headless

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// page is the part of a parsed HTML document the headless engine acts on.
type page struct {
	Title      string
	Background string
	Scripts    []pageScript
}

// pageScript is either inline source or an external src, never both.
type pageScript struct {
	Src    string
	Inline string
}

var bodyRuleRe = regexp.MustCompile(`(?is)(?:^|[\s,}])body\s*\{([^}]*)\}`)

func parsePage(html string) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	p := &page{Title: strings.TrimSpace(doc.Find("title").First().Text())}

	body := doc.Find("body").First()
	if style, ok := body.Attr("style"); ok {
		p.Background = backgroundOf(style)
	}
	if p.Background == "" {
		if bg, ok := body.Attr("bgcolor"); ok {
			p.Background = strings.TrimSpace(bg)
		}
	}
	if p.Background == "" {
		// Last matching body rule wins, as in the cascade.
		doc.Find("style").Each(func(_ int, s *goquery.Selection) {
			for _, m := range bodyRuleRe.FindAllStringSubmatch(s.Text(), -1) {
				if bg := backgroundOf(m[1]); bg != "" {
					p.Background = bg
				}
			}
		})
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if typ, ok := s.Attr("type"); ok && !isJavaScriptType(typ) {
			return
		}
		if src, ok := s.Attr("src"); ok {
			p.Scripts = append(p.Scripts, pageScript{Src: strings.TrimSpace(src)})
			return
		}
		p.Scripts = append(p.Scripts, pageScript{Inline: s.Text()})
	})
	return p, nil
}

// backgroundOf returns the background-color (or background) value of a
// declaration block.
func backgroundOf(decls string) string {
	var bg, bgColor string
	for _, d := range strings.Split(decls, ";") {
		name, value, ok := strings.Cut(d, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "background-color":
			bgColor = value
		case "background":
			bg = value
		}
	}
	if bgColor != "" {
		return bgColor
	}
	return bg
}

func isJavaScriptType(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "module":
		return true
	}
	return false
}
