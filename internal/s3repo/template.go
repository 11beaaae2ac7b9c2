package s3repo

import (
	"fmt"
	"strings"
	"time"
)

// Object key templates use placeholder segments between "/" and "."
// delimiters, e.g. "yyyymmdd/s/sss.csv.gz". Each placeholder expands from
// the download filters.
const (
	PlaceholderDate        = "yyyymmdd"
	PlaceholderYear        = "yyyy"
	PlaceholderTicker      = "sss"
	PlaceholderTickerStart = "s"
	PlaceholderProductCode = "ss"
	PlaceholderTradeCode   = "ssmy"
	PlaceholderExpDate     = "expdate"
)

var allPlaceholders = map[string]struct{}{
	PlaceholderDate:        {},
	PlaceholderYear:        {},
	PlaceholderTicker:      {},
	PlaceholderTickerStart: {},
	PlaceholderProductCode: {},
	PlaceholderTradeCode:   {},
	PlaceholderExpDate:     {},
}

// Template is a parsed object key format. Placeholders are recognized only
// as whole path or name segments, so a literal "sss" inside a longer word
// is left alone.
type Template struct {
	format       string
	placeholders []string
}

// ParseTemplate parses an object key format into a template. The format is
// split into "/"-separated prefixes and a final file name; the name is
// further split on "." with a trailing ".zip"/".gz" compound extension
// kept intact.
func ParseTemplate(pathFormat string) (*Template, error) {
	if pathFormat == "" {
		return nil, fmt.Errorf("s3repo: empty path format")
	}
	parts := strings.Split(pathFormat, "/")
	prefixes, name := parts[:len(parts)-1], parts[len(parts)-1]

	var placeholders []string
	outParts := make([]string, 0, len(parts))
	for _, p := range prefixes {
		if _, ok := allPlaceholders[p]; ok {
			placeholders = append(placeholders, p)
			outParts = append(outParts, "{"+p+"}")
		} else {
			outParts = append(outParts, p)
		}
	}

	nameTemplate, namePlaceholders := parseNameTemplate(name)
	placeholders = append(placeholders, namePlaceholders...)
	outParts = append(outParts, nameTemplate)

	return &Template{
		format:       strings.Join(outParts, "/"),
		placeholders: dedupe(placeholders),
	}, nil
}

func parseNameTemplate(name string) (string, []string) {
	parts := strings.Split(name, ".")
	var extension string
	if len(parts) > 2 && (parts[len(parts)-1] == "zip" || parts[len(parts)-1] == "gz") {
		extension = strings.Join(parts[len(parts)-2:], ".")
		parts = parts[:len(parts)-2]
	} else if len(parts) > 1 {
		extension = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}

	var placeholders []string
	for i, p := range parts {
		if _, ok := allPlaceholders[p]; ok {
			placeholders = append(placeholders, p)
			parts[i] = "{" + p + "}"
		}
	}
	template := strings.Join(parts, ".")
	if extension != "" {
		template += "." + extension
	}
	return template, placeholders
}

// Placeholders returns the placeholder names used by the template, in
// order of first appearance.
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.placeholders))
	copy(out, t.placeholders)
	return out
}

// Format returns the template string with placeholders braced.
func (t *Template) Format() string { return t.format }

// Filters restricts an expansion to a date range and symbol set.
type Filters struct {
	StartDate time.Time
	EndDate   time.Time
	Symbols   []string
}

// Expand produces the object keys matching the filters, in date-major,
// symbol-minor order with duplicates removed. Every placeholder in the
// template must be derivable from the filters.
func (t *Template) Expand(f Filters) ([]string, error) {
	for _, p := range t.placeholders {
		switch p {
		case PlaceholderDate, PlaceholderYear:
			if f.StartDate.IsZero() || f.EndDate.IsZero() {
				return nil, fmt.Errorf("s3repo: template requires a date filter for %q", p)
			}
			if f.EndDate.Before(f.StartDate) {
				return nil, fmt.Errorf("s3repo: end date %s precedes start date %s",
					f.EndDate.Format("20060102"), f.StartDate.Format("20060102"))
			}
		case PlaceholderTicker, PlaceholderTickerStart:
			if len(f.Symbols) == 0 {
				return nil, fmt.Errorf("s3repo: template requires a symbol filter for %q", p)
			}
		default:
			return nil, fmt.Errorf("s3repo: placeholder %q cannot be derived from download filters", p)
		}
	}

	dates := []time.Time{{}}
	if t.uses(PlaceholderDate) || t.uses(PlaceholderYear) {
		dates = dateRange(f.StartDate, f.EndDate)
	}
	symbols := []string{""}
	if t.uses(PlaceholderTicker) || t.uses(PlaceholderTickerStart) {
		symbols = f.Symbols
	}

	var keys []string
	for _, date := range dates {
		for _, symbol := range symbols {
			key := t.format
			key = strings.ReplaceAll(key, "{"+PlaceholderDate+"}", date.Format("20060102"))
			key = strings.ReplaceAll(key, "{"+PlaceholderYear+"}", date.Format("2006"))
			key = strings.ReplaceAll(key, "{"+PlaceholderTicker+"}", symbol)
			if symbol != "" {
				key = strings.ReplaceAll(key, "{"+PlaceholderTickerStart+"}", symbol[:1])
			}
			keys = append(keys, key)
		}
	}
	return dedupe(keys), nil
}

func (t *Template) uses(placeholder string) bool {
	for _, p := range t.placeholders {
		if p == placeholder {
			return true
		}
	}
	return false
}

// dateRange lists every day in [start, end], inclusive.
func dateRange(start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
