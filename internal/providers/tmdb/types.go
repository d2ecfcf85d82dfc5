package tmdb

// Result is one entry from a multi search or a find lookup.
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	MediaType    string  `json:"media_type"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

// DisplayTitle returns the movie title or the show name, whichever is set.
func (r Result) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// ReleaseDate and FirstAirDate are mutually exclusive per media type; Date
// returns whichever is populated.
func (r Result) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// SearchResponse wraps a page of search results.
type SearchResponse struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Genre is a named genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Details is the full metadata record for a movie or TV show. Movie and TV
// payloads share this shape; fields absent from one media type decode to
// their zero values.
type Details struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	Genres           []Genre `json:"genres"`
	Runtime          int     `json:"runtime"`
	EpisodeRunTime   []int   `json:"episode_run_time"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Status           string  `json:"status"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	OriginalLanguage string  `json:"original_language"`
}

// DisplayTitle returns the movie title or the show name, whichever is set.
func (d Details) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// Date returns the release date or first air date, whichever is populated.
func (d Details) Date() string {
	if d.ReleaseDate != "" {
		return d.ReleaseDate
	}
	return d.FirstAirDate
}

// Original returns the original-language title for either media type.
func (d Details) Original() string {
	if d.OriginalTitle != "" {
		return d.OriginalTitle
	}
	return d.OriginalName
}

// ExternalIDs carries cross-reference identifiers for a TMDB record.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}

// Image is one poster or backdrop candidate.
type Image struct {
	FilePath    string  `json:"file_path"`
	Language    string  `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// ImagesResponse holds every artwork candidate for a title.
type ImagesResponse struct {
	Posters   []Image `json:"posters"`
	Backdrops []Image `json:"backdrops"`
}

// CastCredit is one billed cast member.
type CastCredit struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewCredit is one crew member with their job.
type CrewCredit struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// CreditsResponse holds cast and crew for a title.
type CreditsResponse struct {
	Cast []CastCredit `json:"cast"`
	Crew []CrewCredit `json:"crew"`
}

// Video is one clip attached to a title.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// VideosResponse holds the clips attached to a title.
type VideosResponse struct {
	Results []Video `json:"results"`
}

// FindResponse is the result of an external-id lookup, split by media type.
type FindResponse struct {
	MovieResults []Result `json:"movie_results"`
	TVResults    []Result `json:"tv_results"`
}
