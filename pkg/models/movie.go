package models

import "time"

// ActorCredit pairs an actor's name with the character they played
// in a specific movie.
type ActorCredit struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

// MovieRecord is the normalized, in-memory form of one source row.
// It is built once per row by the importer, linked to reference ids,
// persisted, and discarded. Numeric fields that failed to parse are nil.
type MovieRecord struct {
	Title          string
	OriginalTitle  string
	ReleaseYear    int
	RuntimeMinutes *int
	Rating         float64
	Budget         *float64
	BoxOffice      *float64
	Overview       string
	Studios        string
	Collection     string
	PosterURL      string
	BackdropURL    string
	MPARating      string
	DirectorName   string
	GenreNames     []string
	Actors         []ActorCredit
}

// Movie is a persisted movie row.
type Movie struct {
	ID             int64         `json:"movie_id"`
	Title          string        `json:"title"`
	OriginalTitle  *string       `json:"original_title,omitempty"`
	ReleaseYear    *int          `json:"release_year,omitempty"`
	RuntimeMinutes *int          `json:"runtime_minutes,omitempty"`
	Rating         *float64      `json:"rating,omitempty"`
	Budget         *float64      `json:"budget,omitempty"`
	BoxOffice      *float64      `json:"box_office,omitempty"`
	DirectorID     *int64        `json:"director_id,omitempty"`
	CountryID      *int64        `json:"country_id,omitempty"`
	Overview       *string       `json:"overview,omitempty"`
	Genres         *string       `json:"genres,omitempty"`
	DirectorName   *string       `json:"director_name,omitempty"`
	Studios        *string       `json:"studios,omitempty"`
	PosterURL      *string       `json:"poster_url,omitempty"`
	BackdropURL    *string       `json:"backdrop_url,omitempty"`
	Collection     *string       `json:"collection,omitempty"`
	MPARating      *string       `json:"mpa_rating,omitempty"`
	Actors         []ActorCredit `json:"actors,omitempty"`
}

// Director is a persisted director row.
type Director struct {
	ID   int64  `json:"director_id"`
	Name string `json:"name"`
}

// DuplicateGroup describes a set of movie rows sharing the same
// (title, release year) natural key.
type DuplicateGroup struct {
	Title       string
	ReleaseYear *int
	Count       int
	MinID       int64
}

// ImportSummary reports the outcome of one import run.
type ImportSummary struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	RowsTotal    int
	Inserted     int
	Skipped      int
	Batches      int
	NewDirectors int
	NewGenres    int
	NewActors    int
}

// DatasetStats summarizes the imported dataset for the stats endpoint.
type DatasetStats struct {
	TotalMovies    int     `json:"totalMovies"`
	EarliestYear   *int    `json:"earliestYear"`
	LatestYear     *int    `json:"latestYear"`
	TotalBoxOffice float64 `json:"totalBoxOffice"`
	TopGrossing    *Movie  `json:"topGrossingMovie"`
}

// ReconcileSummary reports the outcome of one duplicate-reconciliation run.
// ResidualGroups counts (title, release year) groups that still hold more
// than one row after the delete pass committed; a non-zero value is a
// warning for the operator, not a retryable condition.
type ReconcileSummary struct {
	RunID          string
	GroupsFound    int
	RowsRemoved    int64
	ResidualGroups int
}
