// Package words is the Jotto word oracle.
//
// It owns the dictionary of five-letter words and answers three questions:
// is a candidate a dictionary word, what is a random secret, and how many
// distinct letters do two words share.
//
// Loading never fails. A missing or unreadable word list degrades to a small
// built-in list, and an empty dictionary degrades RandomSecret to a fixed
// fallback word. Both cases are logged as warnings.
package words

import (
	"bufio"
	"crypto/rand"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"go_jotto_server/trie"
)

// WordLength is the length of every secret and guess.
const WordLength = 5

// FallbackSecret is returned by RandomSecret when the dictionary is empty.
const FallbackSecret = "apple"

// fallbackWords is used when the configured word list cannot be read.
var fallbackWords = []string{"apple", "beach", "chair", "dance", "eagle"}

// Dictionary is an immutable set of lower-case five-letter words.
// The zero value and a nil *Dictionary are both valid empty dictionaries.
type Dictionary struct {
	index *trie.Trie
	list  []string
}

// New builds a dictionary from ws. Entries are trimmed and lower-cased;
// anything that is not WordLength letters a-z is dropped.
func New(ws []string) *Dictionary {
	d := &Dictionary{index: trie.NewTrie()}
	for _, w := range ws {
		d.add(w)
	}
	return d
}

// Load reads a word list from path, one word per line. On any failure
// it logs a warning and returns the built-in fallback dictionary.
func Load(path string) *Dictionary {
	if path == "" {
		log.Warn().Msg("no word list configured, using built-in fallback list")
		return New(fallbackWords)
	}
	f, err := os.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("word list unavailable, using built-in fallback list")
		return New(fallbackWords)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("word list read failed, using built-in fallback list")
		return New(fallbackWords)
	}
	log.Info().Str("path", path).Int("words", d.Len()).Msg("word list loaded")
	return d
}

// Read builds a dictionary from r, one word per line. Blank lines and
// lines starting with '#' are skipped.
func Read(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{index: trie.NewTrie()}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		d.add(s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dictionary) add(w string) {
	w = strings.ToLower(strings.TrimSpace(w))
	if !WellFormed(w) || d.index.ContainsWord(w) {
		return
	}
	d.index.Add(w)
	d.list = append(d.list, w)
}

// Len returns the number of words loaded.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.list)
}

// IsValidWord reports whether candidate, lower-cased, is in the dictionary.
func (d *Dictionary) IsValidWord(candidate string) bool {
	if d == nil || d.index == nil {
		return false
	}
	return d.index.ContainsWord(strings.ToLower(strings.TrimSpace(candidate)))
}

// RandomSecret returns a uniformly random dictionary word, or
// FallbackSecret when the dictionary is empty.
func (d *Dictionary) RandomSecret() string {
	if d.Len() == 0 {
		log.Warn().Str("fallback", FallbackSecret).Msg("word list is empty, using fallback secret")
		return FallbackSecret
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.list))))
	if err != nil {
		return d.list[0]
	}
	return d.list[n.Int64()]
}

// CommonLetterCount lets *Dictionary satisfy interfaces that score guesses.
func (d *Dictionary) CommonLetterCount(a, b string) int {
	return CommonLetterCount(a, b)
}

// CommonLetterCount returns how many distinct letters a and b share,
// ignoring case, position and repetition.
func CommonLetterCount(a, b string) int {
	seen := letterSet(a)
	other := letterSet(b)
	n := 0
	for r := range seen {
		if _, ok := other[r]; ok {
			n++
		}
	}
	return n
}

func letterSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range strings.ToLower(s) {
		set[r] = struct{}{}
	}
	return set
}

// WellFormed reports whether w is exactly WordLength ASCII letters.
// Case is ignored.
func WellFormed(w string) bool {
	if len(w) != WordLength {
		return false
	}
	for _, r := range strings.ToLower(w) {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
