package catalog

import "anitrackr/internal/models"

// fallbackAnimeList keeps browse/search usable when the metadata API is
// unreachable (network failure, ad-blockers in embedded webviews).
var fallbackAnimeList = []models.AnimeMetadata{
	{
		ID:    1,
		Title: models.MediaTitle{Romaji: "Cowboy Bebop", English: "Cowboy Bebop"},
		CoverImage: models.CoverImage{
			Large:  "https://s4.anilist.co/file/anilistcdn/media/anime/cover/medium/bx1-CXtrrkMpJ8Zq.png",
			Medium: "https://s4.anilist.co/file/anilistcdn/media/anime/cover/small/bx1-CXtrrkMpJ8Zq.png",
		},
		BannerImage:  "https://s4.anilist.co/file/anilistcdn/media/anime/banner/1-T3PklVYzOP5s.jpg",
		Episodes:     26,
		Duration:     24,
		Status:       "FINISHED",
		Format:       "TV",
		Genres:       []string{"Action", "Adventure", "Sci-Fi"},
		AverageScore: 86,
		SeasonYear:   1998,
		Studio:       "Sunrise",
		Description:  "The year is 2071. The solar system is now easily accessible...",
	},
	{
		ID:    21,
		Title: models.MediaTitle{Romaji: "One Piece", English: "One Piece"},
		CoverImage: models.CoverImage{
			Large:  "https://s4.anilist.co/file/anilistcdn/media/anime/cover/medium/nx21-tXMN3Y20PIL9.jpg",
			Medium: "https://s4.anilist.co/file/anilistcdn/media/anime/cover/small/nx21-tXMN3Y20PIL9.jpg",
		},
		BannerImage:  "https://s4.anilist.co/file/anilistcdn/media/anime/banner/21-wf37VakJmZqs.jpg",
		Duration:     24,
		Status:       "RELEASING",
		Format:       "TV",
		Genres:       []string{"Action", "Adventure", "Comedy"},
		AverageScore: 88,
		SeasonYear:   1999,
		Studio:       "Toei Animation",
		Description:  "Gol D. Roger was known as the Pirate King, the strongest and most infamous being to have sailed the Grand Line...",
	},
	{
		ID:    140960,
		Title: models.MediaTitle{Romaji: "Spy x Family", English: "Spy x Family"},
		CoverImage: models.CoverImage{
			Large:  "https://s4.anilist.co/file/anilistcdn/media/anime/cover/medium/bx140960-v7Hu12rPvKYl.jpg",
			Medium: "https://s4.anilist.co/file/anilistcdn/media/anime/cover/small/bx140960-v7Hu12rPvKYl.jpg",
		},
		BannerImage:  "https://s4.anilist.co/file/anilistcdn/media/anime/banner/140960-Z7xSPlh6IHyB.jpg",
		Episodes:     25,
		Duration:     24,
		Status:       "FINISHED",
		Format:       "TV",
		Genres:       []string{"Action", "Comedy", "Slice of Life"},
		AverageScore: 85,
		SeasonYear:   2022,
		Studio:       "WIT STUDIO",
		Description:  "Master spy Twilight is the best at what he does when it comes to going undercover on dangerous missions in the name of a better world...",
	},
	{
		ID:    999999,
		Title: models.MediaTitle{Romaji: "Akira", English: "Akira"},
		CoverImage: models.CoverImage{
			Large:  "https://s4.anilist.co/file/anilistcdn/media/anime/cover/medium/bx47-RIG59VpD5XfR.png",
			Medium: "https://s4.anilist.co/file/anilistcdn/media/anime/cover/small/bx47-RIG59VpD5XfR.png",
		},
		Episodes:     1,
		Duration:     124,
		Status:       "FINISHED",
		Format:       "MOVIE",
		Genres:       []string{"Sci-Fi", "Action"},
		AverageScore: 82,
		SeasonYear:   1988,
		Studio:       "Tokyo Movie Shinsha",
		Description:  "A secret military project endangers Neo-Tokyo when it turns a biker gang member into a rampaging psychic psychopath...",
	},
}
