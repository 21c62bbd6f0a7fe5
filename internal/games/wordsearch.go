package games

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode"
)

const placementAttempts = 200

// Point addresses a grid cell
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// WordSearch is a square letter grid with hidden words placed left-to-right
// or top-to-bottom
type WordSearch struct {
	mu    sync.Mutex
	size  int
	grid  [][]rune
	words []string
	found map[string]bool
}

// NewWordSearch builds a puzzle. Words are upper-cased and stripped of
// non-letters. It fails when a word is longer than size or cannot be placed.
func NewWordSearch(words []string, size int, rng *rand.Rand) (*WordSearch, error) {
	if size <= 0 {
		return nil, errors.New("grid size must be positive")
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	ws := &WordSearch{
		size:  size,
		grid:  make([][]rune, size),
		found: make(map[string]bool),
	}
	for i := range ws.grid {
		ws.grid[i] = make([]rune, size)
	}

	for _, raw := range words {
		word := normalizeWord(raw)
		if word == "" {
			continue
		}
		if len([]rune(word)) > size {
			return nil, fmt.Errorf("word %q does not fit a %dx%d grid", raw, size, size)
		}
		if !ws.place(word, rng) {
			return nil, fmt.Errorf("could not place word %q", raw)
		}
		ws.words = append(ws.words, word)
	}

	for r := range ws.grid {
		for c := range ws.grid[r] {
			if ws.grid[r][c] == 0 {
				ws.grid[r][c] = rune('A' + rng.IntN(26))
			}
		}
	}
	return ws, nil
}

func normalizeWord(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (ws *WordSearch) place(word string, rng *rand.Rand) bool {
	letters := []rune(word)
	for attempt := 0; attempt < placementAttempts; attempt++ {
		vertical := rng.IntN(2) == 0
		dr, dc := 0, 1
		rowSpan, colSpan := ws.size, ws.size-len(letters)+1
		if vertical {
			dr, dc = 1, 0
			rowSpan, colSpan = ws.size-len(letters)+1, ws.size
		}
		row, col := rng.IntN(rowSpan), rng.IntN(colSpan)

		fits := true
		for i, l := range letters {
			cell := ws.grid[row+dr*i][col+dc*i]
			if cell != 0 && cell != l {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}
		for i, l := range letters {
			ws.grid[row+dr*i][col+dc*i] = l
		}
		return true
	}
	return false
}

// Find marks word as found if the straight line from start to end spells it
// in either direction
func (ws *WordSearch) Find(word string, start, end Point) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	word = normalizeWord(word)
	if ws.found[word] || !ws.hasWord(word) {
		return false
	}

	line, ok := ws.line(start, end)
	if !ok {
		return false
	}
	if line != word && reverse(line) != word {
		return false
	}
	ws.found[word] = true
	return true
}

func (ws *WordSearch) hasWord(word string) bool {
	for _, w := range ws.words {
		if w == word {
			return true
		}
	}
	return false
}

func (ws *WordSearch) line(start, end Point) (string, bool) {
	if !ws.inside(start) || !ws.inside(end) {
		return "", false
	}
	dr, dc := sign(end.Row-start.Row), sign(end.Col-start.Col)
	if dr != 0 && dc != 0 {
		return "", false
	}

	var b strings.Builder
	p := start
	for {
		b.WriteRune(ws.grid[p.Row][p.Col])
		if p == end {
			break
		}
		p.Row += dr
		p.Col += dc
	}
	return b.String(), true
}

func (ws *WordSearch) inside(p Point) bool {
	return p.Row >= 0 && p.Row < ws.size && p.Col >= 0 && p.Col < ws.size
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// Grid returns the letters row by row
func (ws *WordSearch) Grid() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	rows := make([]string, ws.size)
	for i, r := range ws.grid {
		rows[i] = string(r)
	}
	return rows
}

// Words returns the normalised hidden words
func (ws *WordSearch) Words() []string {
	return append([]string(nil), ws.words...)
}

// Complete reports whether every word has been found
func (ws *WordSearch) Complete() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.found) == len(ws.words)
}
