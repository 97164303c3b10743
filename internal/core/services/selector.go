package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// SelectEvidence builds a bounded evidence set from retrieval candidates.
//
// Candidates scoring below minSimilarity are dropped. The rest are ordered by
// descending score, then document ID, then offset start, and admitted
// greedily. A candidate is skipped when it overlaps an admitted fragment of
// the same document by more than maxOverlapRatio, or when its length would
// push the set past maxTotalLength. Skipping does not stop the scan, so a
// shorter candidate further down may still fit.
//
// No surviving candidate yields an empty set, which is not an error.
func SelectEvidence(
	candidates []domain.Fragment,
	maxTotalLength int,
	minSimilarity float64,
	maxOverlapRatio float64,
) domain.EvidenceSet {
	if len(candidates) == 0 || maxTotalLength <= 0 {
		return domain.EvidenceSet{}
	}

	ranked := make([]domain.Fragment, 0, len(candidates))
	for i := range candidates {
		score := candidates[i].Score
		if math.IsNaN(score) || score < minSimilarity {
			continue
		}
		ranked = append(ranked, candidates[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SourceDocumentID != b.SourceDocumentID {
			return a.SourceDocumentID < b.SourceDocumentID
		}
		if a.Offset.Start != b.Offset.Start {
			return a.Offset.Start < b.Offset.Start
		}
		return a.Offset.End < b.Offset.End
	})

	admitted := make([]domain.Fragment, 0, len(ranked))
	// admitted offsets grouped by document for the overlap check
	byDoc := make(map[string][]domain.OffsetRange)
	total := 0

	for i := range ranked {
		f := ranked[i]
		length := f.Length()
		if total+length > maxTotalLength {
			continue
		}
		if overlapsAdmitted(byDoc[f.SourceDocumentID], f.Offset, maxOverlapRatio) {
			continue
		}

		admitted = append(admitted, f)
		byDoc[f.SourceDocumentID] = append(byDoc[f.SourceDocumentID], f.Offset)
		total += length
	}

	return domain.NewEvidenceSet(admitted...)
}

func overlapsAdmitted(ranges []domain.OffsetRange, candidate domain.OffsetRange, maxRatio float64) bool {
	for _, r := range ranges {
		if r.OverlapRatio(candidate) > maxRatio {
			return true
		}
	}
	return false
}
