package catalog

const assetHost = "https://d1v0fxmwkpxbrg.cloudfront.net/audio-assets/"

const (
	categoryMostWatched = 1
	categoryTopRated    = 2
	categoryRock        = 3
)

func track(id int, title string, ms int64, file, thumb string) Track {
	return Track{
		ID:          id,
		Title:       title,
		Description: title,
		DurationMS:  ms,
		Type:        "mp3",
		AudioURL:    assetHost + file,
		Thumbnail:   thumb,
	}
}

func albionTracks(thumb string) []Track {
	return []Track{
		track(1, "Rise Up", 185000, "RiseUp.mp3", thumb),
		track(2, "ThroneKing", 166000, "ThroneKing.mp3", thumb),
		track(3, "Suspenseful", 104000, "Suspenseful.mp3", thumb),
		track(4, "From the ashes", 185000, "RiseUp.mp3", thumb),
		track(5, "Epic Adventure Action", 113000, "01-Tropical-Full-Track.mp3", thumb),
	}
}

func streetTracks(thumb string) []Track {
	return []Track{
		track(1, "Mellow", 183000, "Mellow.mp3", thumb),
		track(2, "Tropical", 187000, "01-Tropical-Full-Track.mp3", thumb),
		track(3, "Suspenseful", 104000, "Suspenseful.mp3", thumb),
	}
}

func harmoniesTracks(thumb string) []Track {
	return []Track{
		track(1, "Epic Adventure Action", 113000, "01-Tropical-Full-Track.mp3", thumb),
		track(2, "ThroneKing", 166000, "ThroneKing.mp3", thumb),
		track(3, "Mellow", 183000, "Mellow.mp3", thumb),
	}
}

func lunarTracks(thumb string) []Track {
	return []Track{
		track(1, "Art Motion", 185000, "RiseUp.mp3", thumb),
		track(2, "Dash Demo", 166000, "ThroneKing.mp3", thumb),
		track(3, "Adventures", 183000, "Mellow.mp3", thumb),
		track(4, "War memories", 104000, "Suspenseful.mp3", thumb),
	}
}

// Default returns the built-in demo catalog.
func Default() *Catalog {
	album := func(id, cat int, title, artist, desc, thumb string, tracks func(string) []Track) Album {
		return Album{
			ID:          id,
			CategoryID:  cat,
			Title:       title,
			Artist:      artist,
			Description: desc,
			Thumbnail:   thumb,
			Tracks:      tracks(thumb),
		}
	}
	return &Catalog{
		Categories: []Category{
			{ID: categoryMostWatched, Title: "Most Watched"},
			{ID: categoryTopRated, Title: "Top Rated"},
			{ID: categoryRock, Title: "Rock Music"},
		},
		Albums: []Album{
			album(1, categoryMostWatched, "Echoes of Albion", "",
				"British rock nostalgia with a contemporary indie twist.",
				"covers/echoes-of-albion.webp", albionTracks),
			album(2, categoryTopRated, "Echoes of the Street", "",
				"Hard-hitting beats and personal stories of urban life.",
				"covers/echoes-of-the-street.webp", streetTracks),
			album(3, categoryTopRated, "Eternal Harmonies", "",
				"Orchestral pieces with soaring arrangements.",
				"covers/eternal-harmonies.webp", harmoniesTracks),
			album(4, categoryTopRated, "Lunar Echoes", "",
				"Catchy hooks, dynamic beats and vocal harmonies.",
				"covers/lunar-echoes.webp", lunarTracks),
			album(5, categoryRock, "Midnight Melodies", "Ella Harmony",
				"Late-night R&B ballads with a touch of jazz.",
				"covers/midnight-melodies.webp", streetTracks),
			album(6, categoryRock, "Neon Dreams", "Eclipse",
				"Synth-driven rock for night drives.",
				"covers/neon-dreams.webp", lunarTracks),
			album(7, categoryRock, "Spray of Sunshine", "Joyful Riot",
				"Bright, upbeat guitar anthems.",
				"covers/spray-of-sunshine.webp", albionTracks),
		},
	}
}
