package parse

import "regexp"

// datePatterns are ordered most-specific first; the first match in the
// first matching pattern wins and is returned verbatim. No calendar
// validation is done; downstream treats the value as opaque display text.
var datePatterns = []*regexp.Regexp{
	// "December 31, 2024" / "December 31st 2024"
	regexp.MustCompile(`(?i)((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})`),
	// "Nov 7th, 2025 17:53:25" (mobile-payment timestamp form)
	regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s*-?\s*\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\s+\d{1,2}:\d{2}:\d{2})`),
	// "Nov 7th, 2025" / "Dec 31 24"
	regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s*-?\s*\d{1,2}(?:st|nd|rd|th)?,?\s+\d{2,4})`),
	// "31 Dec 2024"
	regexp.MustCompile(`(?i)(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4})`),
	// "2024-12-31" (ISO, must precede the generic numeric form)
	regexp.MustCompile(`(\d{4}-\d{1,2}-\d{1,2})`),
	// "12/31/2024", "12-31-24"
	regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
}

func extractDate(text string) *string {
	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			d := m[1]
			return &d
		}
	}
	return nil
}
