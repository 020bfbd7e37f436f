package catalog

// Movie is one entry of a movie listing.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

// TVShow is one entry of a TV listing.
type TVShow struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Video is a trailer or clip attached to a title.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// MoviePage is one page of a paginated movie listing.
type MoviePage struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int64   `json:"total_results"`
	Results      []Movie `json:"results"`
}

// TVPage is one page of a paginated TV listing.
type TVPage struct {
	Page         int      `json:"page"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int64    `json:"total_results"`
	Results      []TVShow `json:"results"`
}

// MovieDetails is a movie with videos, credits and similar titles appended.
type MovieDetails struct {
	Movie
	Genres  []Genre `json:"genres"`
	Runtime int     `json:"runtime"`
	Tagline string  `json:"tagline"`
	Videos  struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Credits struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
	Similar MoviePage `json:"similar"`
}

// TVDetails is a TV show with videos, credits and similar titles appended.
type TVDetails struct {
	TVShow
	Genres           []Genre `json:"genres"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	Tagline          string  `json:"tagline"`
	Videos           struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Credits struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
	Similar TVPage `json:"similar"`
}
