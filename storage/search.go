package storage

import "github.com/sahilm/fuzzy"

// sessionTitles adapts a session slice to fuzzy.Source.
type sessionTitles []Session

func (s sessionTitles) Len() int            { return len(s) }
func (s sessionTitles) String(i int) string { return s[i].Title }

// SearchSessions fuzzy-matches query against session titles, best matches
// first. An empty query returns no results rather than everything; callers
// wanting the full list should use ListSessions.
func SearchSessions(sessions []Session, query string) []Session {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, sessionTitles(sessions))

	results := make([]Session, 0, len(matches))
	for _, m := range matches {
		results = append(results, sessions[m.Index])
	}
	return results
}
