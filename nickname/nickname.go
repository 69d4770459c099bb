// Package nickname finds dictionary words hiding inside a nickname.
package nickname

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"
)

// minWordLength filters out the short noise words that match almost
// any nickname.
const minWordLength = 3

// Matcher holds a lowercased dictionary and reports which entries
// occur as substrings of a given nickname.
type Matcher struct {
	words []string
}

// New builds a Matcher from dictionary entries. Entries shorter than
// three characters are dropped; the rest are lowercased and
// deduplicated.
func New(words []string) *Matcher {
	seen := make(map[string]struct{}, len(words))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) < minWordLength {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		kept = append(kept, w)
	}
	sort.Strings(kept)
	return &Matcher{words: kept}
}

// Load reads a newline-separated dictionary.
func Load(r io.Reader) (*Matcher, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(words), nil
}

// LoadFile reads a newline-separated dictionary file.
func LoadFile(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of dictionary entries.
func (m *Matcher) Len() int {
	return len(m.words)
}

// Match returns every dictionary word that is a case-insensitive
// substring of the nickname, in lexicographic order.
func (m *Matcher) Match(nick string) []string {
	nick = strings.ToLower(nick)
	var out []string
	for _, w := range m.words {
		if strings.Contains(nick, w) {
			out = append(out, w)
		}
	}
	return out
}
