package fetch

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mizutanik/refurbwatch/internal/config"
)

// RenderDetector decides whether a fetched page looks like a JS shell that
// needs a headless re-render before matching.
type RenderDetector struct {
	minHTMLBytes int
	selectors    []string
	keywords     [][]byte
}

// NewRenderDetector constructs a detector with the configured thresholds.
func NewRenderDetector(cfg config.RenderConfig) *RenderDetector {
	lowerKeywords := make([][]byte, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lowerKeywords = append(lowerKeywords, bytes.ToLower([]byte(kw)))
	}
	return &RenderDetector{
		minHTMLBytes: cfg.MinHTMLBytes,
		selectors:    cfg.SelectorMust,
		keywords:     lowerKeywords,
	}
}

// NeedsRender inspects the page for signals that indicate JS rendering is
// required.
func (d *RenderDetector) NeedsRender(page Page) bool {
	if d == nil {
		return false
	}
	switch {
	case d.bodyBelowThreshold(page.Body):
		return true
	case d.containsKeywords(page.Body):
		return true
	default:
		return d.missingSelectors(page.Body)
	}
}

func (d *RenderDetector) bodyBelowThreshold(body []byte) bool {
	return d.minHTMLBytes > 0 && len(body) < d.minHTMLBytes
}

func (d *RenderDetector) containsKeywords(body []byte) bool {
	if len(body) == 0 || len(d.keywords) == 0 {
		return false
	}
	lowerBody := bytes.ToLower(body)
	for _, kw := range d.keywords {
		if len(kw) == 0 {
			continue
		}
		if bytes.Contains(lowerBody, kw) {
			return true
		}
	}
	return false
}

func (d *RenderDetector) missingSelectors(body []byte) bool {
	if len(d.selectors) == 0 || len(body) == 0 {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return true
	}
	for _, sel := range d.selectors {
		if sel == "" {
			continue
		}
		if doc.Find(sel).Length() == 0 {
			return true
		}
	}
	return false
}
