package navigation

import "strings"

// Profile is the travel mode used for routing.
type Profile string

const (
	ProfileAutomobile Profile = "automobile"
	ProfileWalking    Profile = "walking"
	ProfileCycling    Profile = "cycling"
)

// DefaultProfile is used when the host does not name one.
const DefaultProfile = ProfileAutomobile

var profileAliases = map[string]Profile{
	"automobile": ProfileAutomobile,
	"driving":    ProfileAutomobile,
	"car":        ProfileAutomobile,
	"walking":    ProfileWalking,
	"walk":       ProfileWalking,
	"foot":       ProfileWalking,
	"cycling":    ProfileCycling,
	"bike":       ProfileCycling,
	"bicycle":    ProfileCycling,
}

// IsValid reports whether p is a known profile.
func (p Profile) IsValid() bool {
	switch p {
	case ProfileAutomobile, ProfileWalking, ProfileCycling:
		return true
	default:
		return false
	}
}

// String returns the string representation of the profile.
func (p Profile) String() string {
	return string(p)
}

// ParseProfile resolves a host-supplied profile name. An empty name yields DefaultProfile.
func ParseProfile(s string) (Profile, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return DefaultProfile, nil
	}
	p, ok := profileAliases[name]
	if !ok {
		return "", NewInvalidProfileError(s)
	}
	return p, nil
}
