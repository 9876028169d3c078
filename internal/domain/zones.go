package domain

import "sort"

// knownZones maps AICC protection zone codes to display names.
var knownZones = map[string]string{
	"CGF": "Chugach National Forest",
	"CRS": "Copper River Area",
	"DAS": "Delta Area",
	"FAS": "Fairbanks Area",
	"GAD": "Galena Zone",
	"HNS": "Haines Area",
	"KKS": "Kenai/Kodiak Area",
	"MID": "Military Zone",
	"MSS": "Mat-Su Area",
	"SWS": "Southwest Area",
	"TAD": "Tanana Zone",
	"TAS": "Tok Area",
	"TNF": "Tongass National Forest",
	"UYD": "Upper Yukon Zone",
}

// KnownZones returns a copy of the zone code to display name table.
func KnownZones() map[string]string {
	out := make(map[string]string, len(knownZones))
	for k, v := range knownZones {
		out[k] = v
	}
	return out
}

// ZoneCodes returns the known zone codes in sorted order.
func ZoneCodes() []string {
	codes := make([]string, 0, len(knownZones))
	for k := range knownZones {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

// ZoneName returns the display name for a zone code. AllZones is "Statewide".
func ZoneName(code string) (string, bool) {
	if code == AllZones {
		return "Statewide", true
	}
	name, ok := knownZones[code]
	return name, ok
}

// IsKnownZone reports whether code is in the known-zones table or is AllZones.
func IsKnownZone(code string) bool {
	_, ok := ZoneName(code)
	return ok
}
