package datefmt

import "time"

// Placeholder is rendered for missing or unparseable timestamps.
const Placeholder = "N/A"

var ist = loadIST()

func loadIST() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// IST formats a timestamp for display in Indian Standard Time, matching
// the portal's long date style. Zero times render the placeholder
// instead of a misleading epoch date.
func IST(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.In(ist).Format("2 January 2006 at 03:04 pm")
}

// ISTString parses an RFC 3339 timestamp and formats it like IST.
// Empty or malformed input renders the placeholder.
func ISTString(raw string) string {
	if raw == "" {
		return Placeholder
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Placeholder
	}
	return IST(t)
}
