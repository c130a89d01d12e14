// Package platform recognises the media platforms a URL belongs to.
package platform

import (
	"strings"

	"github.com/dtroode/audiograb-server/internal/model"
)

// Unknown is the name reported for URLs that match no known platform.
const Unknown = "Unknown platform"

// matchers are checked against the lowercased URL as substrings.
var (
	supportedMatchers  = []string{"youtube", "youtu.be"}
	comingSoonMatchers = []string{"vk.com", "soundcloud.com", "spotify.com"}
)

var catalog = []model.Platform{
	{
		Name:     "YouTube",
		Domains:  []string{"youtube.com", "youtu.be"},
		Status:   model.PlatformActive,
		Features: []string{"MP3 download", "Thumbnail download", "Progress tracking"},
	},
	{
		Name:             "VK Music",
		Domains:          []string{"vk.com"},
		Status:           model.PlatformComingSoon,
		EstimatedRelease: "Q2 2025",
		Features:         []string{"Playlist download", "High quality audio"},
	},
	{
		Name:             "SoundCloud",
		Domains:          []string{"soundcloud.com"},
		Status:           model.PlatformComingSoon,
		EstimatedRelease: "Q3 2025",
		Features:         []string{"Track download", "Playlist support"},
	},
	{
		Name:             "Spotify",
		Domains:          []string{"spotify.com"},
		Status:           model.PlatformPlanned,
		EstimatedRelease: "Q4 2025",
		Features:         []string{"Preview download only (due to licensing)"},
	},
}

// IsSupported reports whether downloads from the URL's platform are available.
func IsSupported(url string) bool {
	return containsAny(strings.ToLower(url), supportedMatchers)
}

// IsComingSoon reports whether the URL belongs to an announced but unsupported platform.
func IsComingSoon(url string) bool {
	return containsAny(strings.ToLower(url), comingSoonMatchers)
}

// Name returns the display name of the URL's platform, or Unknown.
func Name(url string) string {
	lower := strings.ToLower(url)
	if containsAny(lower, supportedMatchers) {
		return "YouTube"
	}
	for _, m := range comingSoonMatchers {
		if !strings.Contains(lower, m) {
			continue
		}
		for _, p := range catalog {
			for _, d := range p.Domains {
				if d == m {
					return p.Name
				}
			}
		}
	}
	return Unknown
}

// Supported returns the platforms downloads are available for.
func Supported() []model.Platform {
	return filter(func(p model.Platform) bool { return p.Status == model.PlatformActive })
}

// Upcoming returns announced platforms that are not available yet.
func Upcoming() []model.Platform {
	return filter(func(p model.Platform) bool { return p.Status != model.PlatformActive })
}

// SupportedCount is the number of URL matchers for supported platforms.
func SupportedCount() int { return len(supportedMatchers) }

// ComingSoonCount is the number of URL matchers for upcoming platforms.
func ComingSoonCount() int { return len(comingSoonMatchers) }

func filter(keep func(model.Platform) bool) []model.Platform {
	var out []model.Platform
	for _, p := range catalog {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
