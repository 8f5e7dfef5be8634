// Package suggest ranks candidate strings by similarity, for "did you mean" hints on unknown
// commands and invalid flag choices.
package suggest

import (
	"cmp"
	"slices"
	"strings"
)

// threshold is the minimum similarity score required for a string to be considered similar.
const threshold = 0.5

type candidate struct {
	name  string
	score float64
}

// FindSimilar returns up to maxResults candidates similar to target, best match first. Ties are
// broken alphabetically.
func FindSimilar(target string, candidates []string, maxResults int) []string {
	if target == "" || maxResults <= 0 {
		return []string{}
	}

	var ranked []candidate
	for _, name := range candidates {
		if score := similarity(target, name); score > threshold {
			ranked = append(ranked, candidate{name: name, score: score})
		}
	}
	slices.SortFunc(ranked, func(a, b candidate) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	result := make([]string, 0, min(maxResults, len(ranked)))
	for _, c := range ranked[:min(maxResults, len(ranked))] {
		result = append(result, c.name)
	}
	return result
}

// similarity scores a against b between 0 and 1. Case is ignored and a prefix of b scores 0.9.
func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	switch {
	case a == b:
		return 1.0
	case strings.HasPrefix(b, a):
		return 0.9
	}
	return 1.0 - float64(levenshtein(a, b))/float64(max(len(a), len(b)))
}

// levenshtein returns the edit distance between a and b, keeping a single row of the matrix.
func levenshtein(a, b string) int {
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			prev := row[j]
			row[j] = min(row[j]+1, row[j-1]+1, diag+cost)
			diag = prev
		}
	}
	return row[len(b)]
}
