package parse

import (
	"regexp"
	"strings"
)

var (
	claimedIDRe = regexp.MustCompile(`(\d{17,})$`)
	steamIDRe   = regexp.MustCompile(`^\d{17}$`)
	conditionRe = regexp.MustCompile(`\(([^()]+)\)\s*$`)
)

// SteamIDFromClaimedID extracts the trailing run of at least 17 digits from an
// OpenID claimed identity such as "https://steamcommunity.com/openid/id/76561198000000000".
func SteamIDFromClaimedID(claimedID string) (string, bool) {
	m := claimedIDRe.FindStringSubmatch(strings.TrimSpace(claimedID))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsSteamID reports whether s looks like a 64-bit Steam ID.
func IsSteamID(s string) bool {
	return steamIDRe.MatchString(s)
}

// ConditionFromName returns the exterior written in parentheses at the end of
// a market hash name, e.g. "Field-Tested" for "AK-47 | Redline (Field-Tested)".
func ConditionFromName(marketHashName string) *string {
	m := conditionRe.FindStringSubmatch(marketHashName)
	if m == nil {
		return nil
	}
	condition := strings.TrimSpace(m[1])
	return &condition
}

// ExteriorFromFloat maps a wear float to its exterior bucket.
func ExteriorFromFloat(f float64) string {
	switch {
	case f < 0:
		return ""
	case f < 0.07:
		return "Factory New"
	case f < 0.15:
		return "Minimal Wear"
	case f < 0.38:
		return "Field-Tested"
	case f < 0.45:
		return "Well-Worn"
	default:
		return "Battle-Scarred"
	}
}
