package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JakitaK/dataset-webapi-group2/pkg/apperrors"
	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
)

// Sentinels applied when the export leaves a field blank.
const (
	UnknownTitle     = "Unknown Title"
	UnknownDirector  = "Unknown Director"
	DefaultMPARating = "NR"
)

// DefaultRating is assumed when the export carries no usable numeric
// rating, so rating-ordered queries never sink unrated rows below real
// low scores.
const DefaultRating = 7.5

// actorSlots is the number of fixed Actor N Name / Actor N Character
// column pairs in the export.
const actorSlots = 10

// releaseDateLayouts are tried in order when parsing the Release Date field.
var releaseDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006",
}

// NormalizeRow converts one raw source row into a canonical MovieRecord.
// It returns an error wrapping apperrors.ErrSkipRow when the row has no
// parseable release year; the record is otherwise always built. Numeric
// fields that fail to parse become nil rather than failing the row.
func NormalizeRow(row Row) (*models.MovieRecord, error) {
	title := strings.TrimSpace(row["Title"])
	if title == "" {
		title = UnknownTitle
	}

	originalTitle := strings.TrimSpace(row["Original Title"])
	if originalTitle == "" {
		originalTitle = title
	}

	year, err := parseReleaseYear(row["Release Date"])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: no parseable release date", apperrors.ErrSkipRow, title)
	}

	director := strings.TrimSpace(row["Directors"])
	if director == "" {
		director = UnknownDirector
	}

	rating := strings.TrimSpace(row["MPA Rating"])
	if rating == "" {
		rating = DefaultMPARating
	}

	return &models.MovieRecord{
		Title:          title,
		OriginalTitle:  originalTitle,
		ReleaseYear:    year,
		RuntimeMinutes: parseIntField(row["Runtime (min)"]),
		Rating:         parseRating(row["Rating"]),
		Budget:         parseNumericField(row["Budget"]),
		BoxOffice:      parseNumericField(row["Revenue"]),
		Overview:       strings.TrimSpace(row["Overview"]),
		Studios:        strings.TrimSpace(row["Studios"]),
		Collection:     strings.TrimSpace(row["Collection"]),
		PosterURL:      strings.TrimSpace(row["Poster URL"]),
		BackdropURL:    strings.TrimSpace(row["Backdrop URL"]),
		MPARating:      rating,
		DirectorName:   director,
		GenreNames:     SplitList(row["Genres"]),
		Actors:         actorsFromSlots(row),
	}, nil
}

func parseReleaseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty release date")
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Year(), nil
		}
	}
	return 0, fmt.Errorf("unparseable release date %q", raw)
}

// parseRating parses the 0-10 audience rating, falling back to
// DefaultRating when the field is blank or malformed.
func parseRating(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f <= 0 {
		return DefaultRating
	}
	return f
}

// parseIntField parses a non-negative integer field, returning nil when
// the value is blank, malformed, or negative.
func parseIntField(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// parseNumericField parses a money field, returning nil when the value is
// blank or malformed.
func parseNumericField(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// SplitList splits a `;`-delimited field into trimmed, non-empty values,
// preserving order.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// actorsFromSlots collects the populated fixed actor slots in their
// original order. Slots are not required to be contiguous: a gap in the
// middle does not stop collection.
func actorsFromSlots(row Row) []models.ActorCredit {
	var actors []models.ActorCredit
	for i := 1; i <= actorSlots; i++ {
		name := strings.TrimSpace(row[fmt.Sprintf("Actor %d Name", i)])
		if name == "" {
			continue
		}
		actors = append(actors, models.ActorCredit{
			Name:      name,
			Character: strings.TrimSpace(row[fmt.Sprintf("Actor %d Character", i)]),
		})
	}
	return actors
}

// ParseActorList parses an arbitrary-length `"Name as Character, ..."`
// list. Sources that carry the cast as a single delimited field use this
// instead of the fixed-slot columns.
func ParseActorList(raw string) []models.ActorCredit {
	var actors []models.ActorCredit
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		credit := models.ActorCredit{Name: part}
		if name, character, found := strings.Cut(part, " as "); found {
			credit.Name = strings.TrimSpace(name)
			credit.Character = strings.TrimSpace(character)
		}
		if credit.Name != "" {
			actors = append(actors, credit)
		}
	}
	return actors
}
