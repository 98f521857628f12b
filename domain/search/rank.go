package search

import "sort"

// TopK ranks entries by descending dot product against query and returns at
// most k results. Equal scores are ordered by ascending movie ID. Entries
// whose dimension differs from the query are skipped.
func TopK(query Vector, entries []Entry, k int) []Result {
	if len(entries) == 0 || k <= 0 {
		return []Result{}
	}

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		score, err := query.Dot(e.vector)
		if err != nil {
			continue
		}
		results = append(results, NewResult(e.movieID, e.title, e.genres, score))
	}

	SortResults(results)

	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// SortResults orders results by descending score, then ascending movie ID.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].movieID < results[j].movieID
	})
}
