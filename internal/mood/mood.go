// Package mood maps user moods to genres and genres to curated seed titles.
package mood

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

//go:embed data/genre_seeds.json
var genreSeedsJSON []byte

const (
	// DefaultSeedCount is the number of seeds returned per mood.
	DefaultSeedCount = 8
	// DefaultPerGenre is the number of seeds drawn per genre for variety picks.
	DefaultPerGenre = 3

	suggestThreshold = 0.70
)

// moodGenres lists each mood's genres. Order is significant: it is the
// order seeds are collected in before shuffling.
var moodGenres = []struct {
	mood   string
	genres []string
}{
	{"chill", []string{"Drama", "Romance", "Indie"}},
	{"hype", []string{"Action", "Adventure", "Thriller"}},
	{"sad", []string{"Drama", "Romance"}},
	{"nostalgic", []string{"Family", "Drama", "Musical", "Comedy"}},
	{"spooky", []string{"Horror", "Thriller"}},
	{"funny", []string{"Comedy", "Family", "Romance"}},
	{"thoughtful", []string{"Documentary", "Biography", "Drama"}},
}

// Stat summarises the seeds behind one mood.
type Stat struct {
	Genres      int      `json:"genres"`
	TotalSeeds  int      `json:"totalSeeds"`
	UniqueSeeds int      `json:"uniqueSeeds"`
	GenreList   []string `json:"genreList"`
}

// ShuffleFunc permutes n elements through swap.
type ShuffleFunc func(n int, swap func(i, j int))

// Catalog answers mood and genre seed queries. It is read-only after
// construction and safe for concurrent use if its ShuffleFunc is.
type Catalog struct {
	moods   []string
	genres  map[string][]string
	seeds   map[string][]string
	shuffle ShuffleFunc
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithShuffle replaces the random shuffle (for deterministic tests).
func WithShuffle(fn ShuffleFunc) Option {
	return func(c *Catalog) {
		c.shuffle = fn
	}
}

// WithSeeds replaces the embedded genre seed catalog.
func WithSeeds(seeds map[string][]string) Option {
	return func(c *Catalog) {
		c.seeds = seeds
	}
}

// New loads the embedded seed catalog.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		genres:  make(map[string][]string, len(moodGenres)),
		shuffle: rand.Shuffle,
	}
	for _, mg := range moodGenres {
		c.moods = append(c.moods, mg.mood)
		c.genres[mg.mood] = mg.genres
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.seeds == nil {
		seeds, err := ParseSeeds(genreSeedsJSON)
		if err != nil {
			return nil, err
		}
		c.seeds = seeds
	}
	return c, nil
}

// ParseSeeds decodes a genre -> IMDb id list JSON document.
func ParseSeeds(data []byte) (map[string][]string, error) {
	var seeds map[string][]string
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse genre seeds: %w", err)
	}
	return seeds, nil
}

func normalize(mood string) string {
	return strings.ToLower(strings.TrimSpace(mood))
}

// Moods returns the supported moods in display order.
func (c *Catalog) Moods() []string {
	return slices.Clone(c.moods)
}

// Supported reports whether mood is known, ignoring case and surrounding space.
func (c *Catalog) Supported(mood string) bool {
	_, ok := c.genres[normalize(mood)]
	return ok
}

// GenresFor returns mood's genres, or nil for an unknown mood.
func (c *Catalog) GenresFor(mood string) []string {
	return slices.Clone(c.genres[normalize(mood)])
}

// Genres returns every genre that has seeds, sorted.
func (c *Catalog) Genres() []string {
	genres := make([]string, 0, len(c.seeds))
	for g := range c.seeds {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// SeedCount returns the number of seeds listed for genre.
func (c *Catalog) SeedCount(genre string) int {
	return len(c.seeds[genre])
}

// SeedsFor returns a copy of genre's seed ids.
func (c *Catalog) SeedsFor(genre string) []string {
	return slices.Clone(c.seeds[genre])
}

// SeedIDs collects the seeds of every genre of mood, drops duplicates,
// shuffles them and returns at most count ids. A count <= 0 selects
// DefaultSeedCount.
func (c *Catalog) SeedIDs(mood string, count int) []string {
	if count <= 0 {
		count = DefaultSeedCount
	}
	unique := c.uniqueSeeds(mood)
	c.shuffle(len(unique), func(i, j int) { unique[i], unique[j] = unique[j], unique[i] })
	if len(unique) > count {
		unique = unique[:count]
	}
	return unique
}

func (c *Catalog) uniqueSeeds(mood string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, genre := range c.genres[normalize(mood)] {
		for _, id := range c.seeds[genre] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// RandomSeedsFromGenres draws up to perGenre shuffled seeds from each genre
// and returns them deduplicated. A perGenre <= 0 selects DefaultPerGenre.
func (c *Catalog) RandomSeedsFromGenres(genres []string, perGenre int) []string {
	if perGenre <= 0 {
		perGenre = DefaultPerGenre
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, genre := range genres {
		seeds := c.SeedsFor(genre)
		c.shuffle(len(seeds), func(i, j int) { seeds[i], seeds[j] = seeds[j], seeds[i] })
		for _, id := range seeds[:min(perGenre, len(seeds))] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// Stats summarises every mood.
func (c *Catalog) Stats() map[string]Stat {
	stats := make(map[string]Stat, len(c.moods))
	for _, mood := range c.moods {
		genres := c.genres[mood]
		total := 0
		for _, g := range genres {
			total += c.SeedCount(g)
		}
		stats[mood] = Stat{
			Genres:      len(genres),
			TotalSeeds:  total,
			UniqueSeeds: len(c.uniqueSeeds(mood)),
			GenreList:   slices.Clone(genres),
		}
	}
	return stats
}

// Suggest returns the supported mood closest to an unknown input, or ""
// when nothing is similar enough.
func (c *Catalog) Suggest(mood string) string {
	input := normalize(mood)
	if input == "" {
		return ""
	}
	best, bestScore := "", float32(0)
	for _, m := range c.moods {
		score := edlib.JaroWinklerSimilarity(input, m)
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}
