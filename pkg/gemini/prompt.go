package gemini

import "fmt"

const zonePrompt = `Identify the IANA time zone for the place a user typed into a world clock.

PLACE: %q

RULES:
- Answer with a canonical IANA identifier such as "America/New_York", "Europe/Berlin" or "Asia/Kolkata".
- Never answer with an abbreviation ("PST", "CET") or a raw offset ("UTC+2").
- If the place spans several zones (a large country, a US state split by a zone line),
  pick the zone of its capital or most populous city and set confidence_level to "low".
- If the text is a well-known nickname ("The Big Apple", "Bay Area"), resolve it to the city it names.
- detected_location is the human-readable place you resolved, e.g. "Porto, Portugal".
- detection_reasoning is one short sentence.`

// ZonePrompt returns the prompt asking Gemini to name the zone of place.
func ZonePrompt(place string) string {
	return fmt.Sprintf(zonePrompt, place)
}
