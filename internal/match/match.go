// Package match applies text and markup heuristics to decide whether the
// watched product variant appears in a fetched page body.
//
// The heuristics are best-effort by design: false negatives are expected
// whenever the storefront markup changes. Absence of a match is a normal
// outcome, never an error.
package match

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PriceNotFound is the placeholder price used when no currency token could be
// extracted from a listing fragment.
const PriceNotFound = "price not found"

// fragmentSelector enumerates the block-level elements considered listing
// fragment candidates.
const fragmentSelector = "div[class], section[class], article[class], li[class]"

// Target describes the product variant being searched for. It is decoupled
// from the configuration layer so the matcher can be exercised directly in
// tests.
type Target struct {
	// Model is the product line name, e.g. "MacBook Air".
	Model string
	// Variant is the generation marker, e.g. "M4".
	Variant string
	// Window bounds the plain-text co-occurrence lookaround, in bytes.
	Window int
	// FragmentClassHint marks listing fragments, matched case-insensitively
	// against class attributes, e.g. "refurb".
	FragmentClassHint string
	// CurrencyPrefix starts a price token, e.g. "¥".
	CurrencyPrefix string
}

// Result is one best-effort extracted listing. Results are transient: they
// are produced during a run, handed to the notifier, and discarded.
type Result struct {
	Title      string    `json:"title"`
	Price      string    `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// Matcher holds the compiled heuristics for one target.
type Matcher struct {
	target       Target
	lowerModel   string
	lowerVariant string
	lowerHint    string
	genericTitle string
	coOccur      *regexp.Regexp
	quoted       *regexp.Regexp
	price        *regexp.Regexp
}

// New compiles the heuristics for the given target.
func New(t Target) *Matcher {
	model := regexp.QuoteMeta(t.Model)
	variant := regexp.QuoteMeta(t.Variant)
	return &Matcher{
		target:       t,
		lowerModel:   strings.ToLower(t.Model),
		lowerVariant: strings.ToLower(t.Variant),
		lowerHint:    strings.ToLower(t.FragmentClassHint),
		genericTitle: fmt.Sprintf("%s (%s)", t.Model, t.Variant),
		coOccur: regexp.MustCompile(fmt.Sprintf(
			`(?i)(?:%s[\s\S]{0,%d}%s|%s[\s\S]{0,%d}%s)`,
			variant, t.Window, model, model, t.Window, variant,
		)),
		// The colon anchors the pattern to JSON-ish field values so that
		// plain HTML attribute values do not double-report.
		quoted: regexp.MustCompile(fmt.Sprintf(`(?i):\s*"([^"]*%s[^"]*)"`, model)),
		price:  regexp.MustCompile(regexp.QuoteMeta(t.CurrencyPrefix) + `[0-9][0-9,]*`),
	}
}

// Match runs all heuristics over the body and returns the apparent listings
// in order of appearance. An empty slice means "not available this run".
//
// Structured listing fragments come first, then quoted product titles. The
// heuristics overlap and duplicates are possible on unusual markup; callers
// get the raw, undeduplicated view.
func (m *Matcher) Match(body []byte, observedAt time.Time) []Result {
	var results []Result
	results = append(results, m.fragmentResults(body, observedAt)...)
	results = append(results, m.quotedTitleResults(body, observedAt)...)
	if len(results) == 0 && m.coOccur.Match(body) {
		// The identifiers co-occur but no structured listing was found;
		// report general availability with a placeholder.
		results = append(results, Result{
			Title:      m.genericTitle,
			Price:      PriceNotFound,
			ObservedAt: observedAt,
		})
	}
	return results
}

// fragmentResults scans block elements whose class suggests a refurbished
// listing and extracts a title/price pair from each one containing both
// identifiers.
func (m *Matcher) fragmentResults(body []byte, observedAt time.Time) []Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		// Unparseable markup falls back to the text heuristics.
		return nil
	}
	var results []Result
	doc.Find(fragmentSelector).Each(func(_ int, s *goquery.Selection) {
		if !m.classMatches(s) {
			return
		}
		frag, herr := goquery.OuterHtml(s)
		if herr != nil || !m.containsBoth(frag) {
			return
		}
		if m.hasNestedCandidate(s) {
			// A more specific fragment exists inside this one.
			return
		}
		results = append(results, Result{
			Title:      m.extractTitle(s),
			Price:      m.extractPrice(s),
			ObservedAt: observedAt,
		})
	})
	return results
}

// quotedTitleResults picks up product titles embedded as quoted strings in
// inline JSON blobs, keeping only those naming the variant.
func (m *Matcher) quotedTitleResults(body []byte, observedAt time.Time) []Result {
	var results []Result
	for _, groups := range m.quoted.FindAllSubmatch(body, -1) {
		title := string(groups[1])
		if !m.containsFold(title, m.lowerVariant) {
			continue
		}
		results = append(results, Result{
			Title:      strings.TrimSpace(title),
			Price:      PriceNotFound,
			ObservedAt: observedAt,
		})
	}
	return results
}

func (m *Matcher) classMatches(s *goquery.Selection) bool {
	cls, ok := s.Attr("class")
	return ok && strings.Contains(strings.ToLower(cls), m.lowerHint)
}

func (m *Matcher) hasNestedCandidate(s *goquery.Selection) bool {
	nested := false
	s.Find(fragmentSelector).EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if !m.classMatches(c) {
			return true
		}
		frag, err := goquery.OuterHtml(c)
		if err != nil || !m.containsBoth(frag) {
			return true
		}
		nested = true
		return false
	})
	return nested
}

func (m *Matcher) containsBoth(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, m.lowerModel) && strings.Contains(lower, m.lowerVariant)
}

func (m *Matcher) containsFold(text, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(text), lowerNeedle)
}

// extractTitle prefers the first heading inside the fragment, then any
// title/alt attribute mentioning the model, then the generic label.
func (m *Matcher) extractTitle(s *goquery.Selection) string {
	if h := s.Find("h1,h2,h3,h4,h5,h6").First(); h.Length() > 0 {
		if title := strings.TrimSpace(h.Text()); title != "" {
			return title
		}
	}
	if title := m.attrTitle(s); title != "" {
		return title
	}
	found := ""
	s.Find("[title],[alt]").EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if title := m.attrTitle(c); title != "" {
			found = title
			return false
		}
		return true
	})
	if found != "" {
		return found
	}
	return m.genericTitle
}

func (m *Matcher) attrTitle(s *goquery.Selection) string {
	for _, name := range []string{"title", "alt"} {
		if v, ok := s.Attr(name); ok && m.containsFold(v, m.lowerModel) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (m *Matcher) extractPrice(s *goquery.Selection) string {
	if price := m.price.FindString(s.Text()); price != "" {
		return price
	}
	return PriceNotFound
}
