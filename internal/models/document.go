package models

// Document is the parsed, request-scoped representation of one page submitted
// for auditing. It is built once by the audit composer and handed read-only to
// the section scorers; it is never persisted.
type Document struct {
	// SourceURL is the page's origin, if known. Optional.
	SourceURL string

	// RawHTML is the original markup the document was parsed from.
	RawHTML string

	// Title is the text content of the <title> element, empty if absent.
	Title string

	// MetaTags maps meta name attributes to their content (name -> content).
	MetaTags map[string]string

	// PropertyTags maps meta property attributes (Open Graph, Twitter cards)
	// to their content.
	PropertyTags map[string]string

	// CanonicalURL is the href of link[rel=canonical], empty if absent.
	CanonicalURL string

	// Headings is the document's heading sequence in source order.
	Headings []Heading

	// Paragraphs holds the text of each <p> element in source order.
	Paragraphs []string

	// WordCount is the total word count of the visible text content.
	WordCount int

	// Images describes every <img> element.
	Images []ImageRef

	// Links describes every <a href> element.
	Links []LinkRef

	// Scripts describes every <script> element (external and inline).
	Scripts []ScriptRef

	// Stylesheets holds the href of each link[rel=stylesheet].
	Stylesheets []string

	// ResourceHints holds rel values of resource-hint link tags
	// (preconnect, preload, prefetch, dns-prefetch).
	ResourceHints []string

	// HasViewport reports whether a viewport meta tag is present.
	HasViewport bool

	// StructuredData counts JSON-LD script blocks and microdata scopes.
	StructuredData int

	// FormControls describes labelable form controls (input, select, textarea).
	FormControls []FormControlRef

	// Interactive describes interactive elements considered for ARIA checks
	// (buttons, custom role elements).
	Interactive []InteractiveRef
}

// Heading is one heading element in the document's heading sequence.
type Heading struct {
	Level int // 1..6
	Text  string
}

// ImageRef describes one <img> element.
type ImageRef struct {
	Src      string
	Alt      string
	HasAlt   bool // distinguishes alt="" (decorative) from a missing attribute
	Loading  string
	Srcset   string
	Sizes    string
	Position int // source-order index, used as a below-the-fold proxy
}

// LinkRef describes one anchor element.
type LinkRef struct {
	Href     string
	Text     string
	Internal bool // same host as SourceURL, or relative
}

// ScriptRef describes one script element.
type ScriptRef struct {
	Src        string
	Inline     bool
	InlineSize int // bytes of inline content, 0 for external scripts
}

// FormControlRef describes one labelable form control.
type FormControlRef struct {
	ID        string
	Type      string
	HasLabel  bool // associated <label for=> or wrapping label
	AriaLabel string
}

// InteractiveRef describes one interactive element inspected for ARIA coverage.
type InteractiveRef struct {
	Tag     string
	Text    string
	HasAria bool // aria-label, aria-labelledby or accessible text content
}

// MixedContentRefs returns the src/href values of subresources loaded over
// plain http. Only meaningful when the document itself is served over https.
func (d *Document) MixedContentRefs() []string {
	var refs []string
	for _, img := range d.Images {
		if hasInsecureScheme(img.Src) {
			refs = append(refs, img.Src)
		}
	}
	for _, s := range d.Scripts {
		if hasInsecureScheme(s.Src) {
			refs = append(refs, s.Src)
		}
	}
	for _, href := range d.Stylesheets {
		if hasInsecureScheme(href) {
			refs = append(refs, href)
		}
	}
	return refs
}

func hasInsecureScheme(ref string) bool {
	return len(ref) > 7 && ref[:7] == "http://"
}
