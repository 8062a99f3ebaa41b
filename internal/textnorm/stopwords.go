package textnorm

import (
	_ "embed"
	"strings"
)

//go:embed stopwords_general.txt
var generalStopwords string

// Ticket chatter, slang and courtesy words seen in helpdesk requests.
//
//go:embed stopwords_domain.txt
var domainStopwords string

// DefaultStopwords returns a fresh copy of the built-in Indonesian stopword
// set. Callers may mutate the returned map.
func DefaultStopwords() map[string]struct{} {
	set := make(map[string]struct{}, 1024)
	for _, src := range []string{generalStopwords, domainStopwords} {
		for _, w := range strings.Fields(src) {
			set[strings.ToLower(w)] = struct{}{}
		}
	}
	return set
}
