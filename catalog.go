package settings

// Category names of the built-in catalog.
const (
	CategoryWebInterface = "webinterface"
	CategoryArtwork      = "artwork"
)

// Option names of the built-in catalog. Option names double as storage keys.
const (
	OptionShowComposerNowPlaying       = "show_composer_now_playing"
	OptionShowComposerForGenre         = "show_composer_for_genre"
	OptionArtworkSourceSpotify         = "use_artwork_source_spotify"
	OptionArtworkSourceDiscogs         = "use_artwork_source_discogs"
	OptionArtworkSourceCoverArtArchive = "use_artwork_source_coverartarchive"
)

// Online artwork source names as they appear in the configured allow-list.
const (
	ArtworkSourceSpotify         = "spotify"
	ArtworkSourceDiscogs         = "discogs"
	ArtworkSourceCoverArtArchive = "coverartarchive"
)

var defaultRegistry = MustNewRegistry(builtinCategories()...)

// Default returns the process-wide built-in catalog.
func Default() *Registry {
	return defaultRegistry
}

func builtinCategories() []Category {
	return []Category{
		{
			Name: CategoryWebInterface,
			Options: []Option{
				{Name: OptionShowComposerNowPlaying, Type: TypeBool},
				{Name: OptionShowComposerForGenre, Type: TypeStr},
			},
		},
		{
			Name: CategoryArtwork,
			Options: []Option{
				// Only spotify defaults on while no allow-list is configured.
				{Name: OptionArtworkSourceSpotify, Type: TypeBool, DefaultBool: ArtworkSourceDefault(true, ArtworkSourceSpotify)},
				{Name: OptionArtworkSourceDiscogs, Type: TypeBool, DefaultBool: ArtworkSourceDefault(false, ArtworkSourceDiscogs)},
				{Name: OptionArtworkSourceCoverArtArchive, Type: TypeBool, DefaultBool: ArtworkSourceDefault(false, ArtworkSourceCoverArtArchive)},
			},
		},
	}
}
