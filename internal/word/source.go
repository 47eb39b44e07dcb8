// Package word loads the per-mode word pools and turns them into spawn
// draws for active matches. Pools live as plain newline-separated files
// under <dir>/words_<mode>.txt and are seeded with defaults on first boot.
package word

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/HONGMOEJI/acid-rain/internal/domain"
)

const (
	spawnXMin = 100
	spawnXMax = 700

	effectProbability = 0.2
)

var defaultPools = map[domain.Mode][]string{
	domain.ModeJava: {
		"public", "class", "extends", "implements", "void", "int", "boolean",
		"String", "final", "static", "private", "protected", "abstract",
		"try", "catch", "throw", "import", "return", "for", "while",
	},
	domain.ModePython: {
		"def", "class", "import", "from", "as", "if", "elif", "else",
		"while", "for", "in", "try", "except", "finally", "with", "print",
	},
	domain.ModeKotlin: {
		"fun", "val", "var", "class", "object", "interface", "override",
		"private", "public", "protected", "data", "return", "when",
	},
	domain.ModeC: {
		"int", "char", "float", "double", "void", "long", "short", "signed",
		"unsigned", "struct", "union", "if", "else", "for", "while", "return",
	},
}

// Source holds every mode's pool and hands out randomized spawn draws.
// Safe for concurrent use by all active matches.
type Source struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	pools map[domain.Mode][]string
	log   zerolog.Logger
}

// NewSource loads (seeding if absent) the word file for every mode.
// A pool that cannot be read falls back to its built-in defaults so a
// match can always spawn something.
func NewSource(dir string, rnd *rand.Rand, log zerolog.Logger) (*Source, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create words directory: %w", err)
	}

	s := &Source{
		rnd:   rnd,
		pools: make(map[domain.Mode][]string, len(defaultPools)),
		log:   log,
	}

	for _, mode := range domain.Modes() {
		words, err := loadPool(dir, mode)
		if err != nil {
			log.Warn().Err(err).Str("mode", mode.String()).Msg("word pool unavailable, using defaults")
			words = defaultPools[mode]
		}
		s.pools[mode] = words
		log.Debug().Str("mode", mode.String()).Int("words", len(words)).Msg("word pool loaded")
	}

	return s, nil
}

func poolPath(dir string, mode domain.Mode) string {
	return filepath.Join(dir, "words_"+strings.ToLower(mode.String())+".txt")
}

func loadPool(dir string, mode domain.Mode) ([]string, error) {
	path := poolPath(dir, mode)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := seedPool(path, defaultPools[mode]); err != nil {
			return nil, fmt.Errorf("seed word file: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word file: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word file: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word file %s is empty", path)
	}
	return words, nil
}

func seedPool(path string, words []string) error {
	return os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o644)
}

// Next draws one word for the given mode: uniform pick, random spawn X
// in [100, 700), and a 20% chance of carrying one of the two special
// effects.
func (s *Source) Next(mode domain.Mode) domain.Word {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.pools[mode]
	if len(pool) == 0 {
		return domain.Word{Text: "default", X: spawnXMin}
	}

	w := domain.Word{
		Text: pool[s.rnd.Intn(len(pool))],
		X:    spawnXMin + s.rnd.Intn(spawnXMax-spawnXMin),
	}

	if s.rnd.Float64() < effectProbability {
		if s.rnd.Intn(2) == 0 {
			w.Effect = domain.EffectBoost
		} else {
			w.Effect = domain.EffectBlind
		}
	}

	return w
}
