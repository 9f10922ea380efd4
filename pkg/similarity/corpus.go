// Package similarity provides the nearest-template searchers riskgate can
// plug into the clause and semantic analyzers.
package similarity

import (
	"sort"
	"strconv"

	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
)

// Template kinds stored under similarity.MetaKind.
const (
	KindClause   = "clause"
	KindDocument = "document"
)

// CorpusSource returns the corpus to search. It is called on every search
// so a registry reload is picked up without rebuilding the searcher.
type CorpusSource func() *patterns.Corpus

// RegistrySource serves the corpus of the registry's active snapshot.
func RegistrySource(r *patterns.Registry) CorpusSource {
	return func() *patterns.Corpus {
		if snap := r.Current(); snap != nil {
			return snap.Corpus
		}
		return nil
	}
}

// StaticSource always serves c.
func StaticSource(c *patterns.Corpus) CorpusSource {
	return func() *patterns.Corpus { return c }
}

type entry struct {
	id       string
	content  string
	metadata map[string]string
}

// entries flattens the corpus into searchable templates of the given kinds.
// No kinds means all of them.
func entries(c *patterns.Corpus, kinds map[string]bool) []entry {
	if c == nil {
		return nil
	}
	want := func(k string) bool { return len(kinds) == 0 || kinds[k] }

	var out []entry
	if want(KindClause) {
		for _, cl := range c.Clauses {
			out = append(out, entry{
				id:      cl.ID,
				content: cl.Text,
				metadata: map[string]string{
					similarity.MetaKind:       KindClause,
					similarity.MetaClauseType: cl.Type,
				},
			})
		}
	}
	if want(KindDocument) {
		for _, d := range c.Documents {
			out = append(out, entry{
				id:      d.ID,
				content: d.Text,
				metadata: map[string]string{
					similarity.MetaKind:        KindDocument,
					similarity.MetaSourceWords: strconv.Itoa(d.Words()),
				},
			})
		}
	}
	return out
}

func kindSet(kinds []string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

// rank sorts matches best first, breaking ties by ID, and keeps topK.
func rank(matches []similarity.Match, topK int) []similarity.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		si, sj := matches[i].Similarity(), matches[j].Similarity()
		if si != sj {
			return si > sj
		}
		return matches[i].ID < matches[j].ID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
