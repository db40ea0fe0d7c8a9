package importer

import (
	"sort"
	"strings"

	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
)

// RefSnapshot holds the names already stored for each reference-entity
// kind, loaded once per batch to bound query volume.
type RefSnapshot struct {
	Directors map[string]struct{}
	Genres    map[string]struct{}
	Actors    map[string]struct{}
}

// NewRefSnapshot builds a snapshot from the stored name lists.
func NewRefSnapshot(directors, genres, actors []string) *RefSnapshot {
	return &RefSnapshot{
		Directors: toSet(directors),
		Genres:    toSet(genres),
		Actors:    toSet(actors),
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// NewNames holds the reference-entity names present in a batch but absent
// from the store snapshot, deduplicated and sorted per kind.
type NewNames struct {
	Directors []string
	Genres    []string
	Actors    []string
}

// Total returns the number of new names across all kinds.
func (n NewNames) Total() int {
	return len(n.Directors) + len(n.Genres) + len(n.Actors)
}

// CollectNewNames computes the reference entities a batch introduces.
// Keying is exact-match on the trimmed name string; duplicates within the
// batch collapse to one entry; output order is deterministic so the write
// path is reproducible. The computation is pure: no I/O, no mutation of
// the snapshot.
func CollectNewNames(records []*models.MovieRecord, snap *RefSnapshot) NewNames {
	newDirectors := make(map[string]struct{})
	newGenres := make(map[string]struct{})
	newActors := make(map[string]struct{})

	for _, rec := range records {
		if name := strings.TrimSpace(rec.DirectorName); name != "" {
			if _, ok := snap.Directors[name]; !ok {
				newDirectors[name] = struct{}{}
			}
		}
		for _, genre := range rec.GenreNames {
			if name := strings.TrimSpace(genre); name != "" {
				if _, ok := snap.Genres[name]; !ok {
					newGenres[name] = struct{}{}
				}
			}
		}
		for _, actor := range rec.Actors {
			if name := strings.TrimSpace(actor.Name); name != "" {
				if _, ok := snap.Actors[name]; !ok {
					newActors[name] = struct{}{}
				}
			}
		}
	}

	return NewNames{
		Directors: sortedKeys(newDirectors),
		Genres:    sortedKeys(newGenres),
		Actors:    sortedKeys(newActors),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
