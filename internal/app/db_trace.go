package app

import "strings"

// Traced queries become span attributes; collapsing whitespace keeps the
// multi-line SQL in this repo readable there, the cap keeps spans small.
const tracedQueryLimit = 512

func formatDBQueryForTrace(query string) string {
	compact := strings.Join(strings.Fields(query), " ")
	if len(compact) > tracedQueryLimit {
		return compact[:tracedQueryLimit] + "..."
	}
	return compact
}
