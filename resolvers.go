package settings

import "strings"

// Location of the online artwork source allow-list in the static
// configuration file.
const (
	ConfigSectionLibrary          = "library"
	ConfigKeyArtworkOnlineSources = "artwork_online_sources"
)

// AllowListBool returns a resolver implementing a two-tier default. While the
// list section.key is unconfigured or empty the resolver returns fallback.
// Once the list has any entry it returns true only when source is listed,
// compared without case, and fallback no longer applies.
func AllowListBool(section, key string, fallback bool, source string) BoolResolver {
	return func(rc ResolveContext) bool {
		if rc.Config == nil {
			return fallback
		}
		n := rc.Config.ListSize(section, key)
		if n <= 0 {
			return fallback
		}
		for i := 0; i < n; i++ {
			if strings.EqualFold(rc.Config.ListString(section, key, i), source) {
				return true
			}
		}
		return false
	}
}

// ArtworkSourceDefault is AllowListBool bound to library.artwork_online_sources.
func ArtworkSourceDefault(fallback bool, source string) BoolResolver {
	return AllowListBool(ConfigSectionLibrary, ConfigKeyArtworkOnlineSources, fallback, source)
}

// ConstInt returns a resolver that always yields value.
func ConstInt(value int) IntResolver {
	return func(ResolveContext) int { return value }
}

// ConstBool returns a resolver that always yields value.
func ConstBool(value bool) BoolResolver {
	return func(ResolveContext) bool { return value }
}

// ConstStr returns a resolver that always yields value.
func ConstStr(value string) StrResolver {
	return func(ResolveContext) (string, bool) { return value, true }
}
