package constants

import "strings"

// Profile selects how much work a recognition run performs.
type Profile string

// Stable values (accepted on the CLI and in config files).
const (
	ProfileFast     Profile = "FAST"     // single engine, minimal preprocessing
	ProfileBalanced Profile = "BALANCED" // preprocessing variants + full ensemble vote
	ProfileAccurate Profile = "ACCURATE" // ensemble + structure analysis
	ProfileMaximum  Profile = "MAXIMUM"  // every stage, slowest
)

var allProfiles = []Profile{
	ProfileFast,
	ProfileBalanced,
	ProfileAccurate,
	ProfileMaximum,
}

// Profiles returns the known profile names in cost order.
func Profiles() []string {
	result := make([]string, len(allProfiles))
	for i, p := range allProfiles {
		result[i] = string(p)
	}
	return result
}

// ParseProfile canonicalizes user input to a known profile.
func ParseProfile(input string) (Profile, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	for _, p := range allProfiles {
		if normalized == string(p) {
			return p, true
		}
	}
	return ProfileBalanced, false
}
