// Package audit parses submitted markup and scores it across seven
// independent quality dimensions.
package audit

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

var errEmptyDocument = errors.New("empty document")

// ParseDocument builds the scorer-facing document representation from raw
// markup. Parsing happens exactly once per audit; the scorers only read the
// derived fields. A failure here is the only way an audit call can fail.
func ParseDocument(sourceURL, rawHTML string) (*models.Document, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, &interfaces.ParseError{Err: errEmptyDocument}
	}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &interfaces.ParseError{Err: err}
	}

	doc := &models.Document{
		SourceURL:    sourceURL,
		RawHTML:      rawHTML,
		Title:        strings.TrimSpace(gq.Find("title").First().Text()),
		MetaTags:     make(map[string]string),
		PropertyTags: make(map[string]string),
	}

	sourceHost := hostOf(sourceURL)

	gq.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if name, ok := s.Attr("name"); ok && name != "" {
			doc.MetaTags[strings.ToLower(name)] = content
		}
		if prop, ok := s.Attr("property"); ok && prop != "" {
			doc.PropertyTags[strings.ToLower(prop)] = content
		}
	})
	doc.HasViewport = doc.MetaTags["viewport"] != ""

	gq.Find("link").Each(func(_ int, s *goquery.Selection) {
		rel := strings.ToLower(strings.TrimSpace(s.AttrOr("rel", "")))
		href := strings.TrimSpace(s.AttrOr("href", ""))
		switch rel {
		case "canonical":
			if doc.CanonicalURL == "" {
				doc.CanonicalURL = href
			}
		case "stylesheet":
			if href != "" {
				doc.Stylesheets = append(doc.Stylesheets, href)
			}
		case "preconnect", "preload", "prefetch", "dns-prefetch":
			doc.ResourceHints = append(doc.ResourceHints, rel)
		}
	})

	gq.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		doc.Headings = append(doc.Headings, models.Heading{
			Level: int(s.Nodes[0].Data[1] - '0'),
			Text:  strings.TrimSpace(s.Text()),
		})
	})

	gq.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			doc.Paragraphs = append(doc.Paragraphs, text)
		}
	})
	doc.WordCount = len(strings.Fields(gq.Find("body").Text()))

	gq.Find("img").Each(func(i int, s *goquery.Selection) {
		alt, hasAlt := s.Attr("alt")
		doc.Images = append(doc.Images, models.ImageRef{
			Src:      strings.TrimSpace(s.AttrOr("src", "")),
			Alt:      strings.TrimSpace(alt),
			HasAlt:   hasAlt,
			Loading:  strings.ToLower(strings.TrimSpace(s.AttrOr("loading", ""))),
			Srcset:   strings.TrimSpace(s.AttrOr("srcset", "")),
			Sizes:    strings.TrimSpace(s.AttrOr("sizes", "")),
			Position: i,
		})
	})

	gq.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		doc.Links = append(doc.Links, models.LinkRef{
			Href:     href,
			Text:     strings.TrimSpace(s.Text()),
			Internal: isInternalLink(href, sourceHost),
		})
	})

	gq.Find("script").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		scriptType := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		if scriptType == "application/ld+json" {
			doc.StructuredData++
			return
		}
		if src != "" {
			doc.Scripts = append(doc.Scripts, models.ScriptRef{Src: src})
			return
		}
		doc.Scripts = append(doc.Scripts, models.ScriptRef{
			Inline:     true,
			InlineSize: len(s.Text()),
		})
	})
	doc.StructuredData += gq.Find("[itemscope]").Length()

	labelFor := make(map[string]bool)
	gq.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		if id := strings.TrimSpace(s.AttrOr("for", "")); id != "" {
			labelFor[id] = true
		}
	})

	gq.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		controlType := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		if controlType == "hidden" || controlType == "submit" || controlType == "button" {
			return
		}
		id := strings.TrimSpace(s.AttrOr("id", ""))
		doc.FormControls = append(doc.FormControls, models.FormControlRef{
			ID:        id,
			Type:      controlType,
			HasLabel:  labelFor[id] || s.ParentsFiltered("label").Length() > 0,
			AriaLabel: strings.TrimSpace(s.AttrOr("aria-label", "")),
		})
	})

	gq.Find("button, [role=button], [role=tab], [role=menuitem]").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		hasAria := s.AttrOr("aria-label", "") != "" || s.AttrOr("aria-labelledby", "") != "" || text != ""
		doc.Interactive = append(doc.Interactive, models.InteractiveRef{
			Tag:     goquery.NodeName(s),
			Text:    text,
			HasAria: hasAria,
		})
	})

	return doc, nil
}

// isInternalLink reports whether href stays on the source host. Relative
// references always count as internal.
func isInternalLink(href, sourceHost string) bool {
	parsed, err := url.Parse(href)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return true
	}
	return sourceHost != "" && strings.EqualFold(parsed.Host, sourceHost)
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
