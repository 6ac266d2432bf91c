package coherence

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// npmi is the normalised pointwise mutual information of two words over
// sliding windows. Words never seen score zero.
func npmi(occ *occurrences, i, j int) float64 {
	if occ.windows == 0 {
		return 0
	}
	pi := occ.single[i] / occ.windows
	pj := occ.single[j] / occ.windows
	if pi == 0 || pj == 0 {
		return 0
	}
	pij := occ.pair(i, j)/occ.windows + epsilon
	return math.Log(pij/(pi*pj)) / -math.Log(pij)
}

// cv is the indirect cosine confirmation of every top word against the
// whole top-word set.
func cv(occ *occurrences, words []string) float64 {
	ids := make([]int, 0, len(words))
	for _, w := range words {
		if id, ok := occ.id(w); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0
	}

	vectors := make([][]float64, len(ids))
	set := make([]float64, len(ids))
	for a, i := range ids {
		v := make([]float64, len(ids))
		for b, j := range ids {
			v[b] = npmi(occ, i, j)
		}
		vectors[a] = v
		floats.Add(set, v)
	}

	total := 0.0
	for _, v := range vectors {
		total += cosine(v, set)
	}
	return total / float64(len(vectors))
}

func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// uMass averages log((D(wi, wj)/D + eps) / (D(wj)/D)) over every word paired
// with each word ranked above it.
func uMass(occ *occurrences, words []string) float64 {
	if occ.windows == 0 {
		return 0
	}
	total, pairs := 0.0, 0
	for a := 1; a < len(words); a++ {
		i, ok := occ.id(words[a])
		if !ok {
			continue
		}
		for b := 0; b < a; b++ {
			j, ok := occ.id(words[b])
			if !ok || occ.single[j] == 0 {
				continue
			}
			joint := occ.pair(i, j)/occ.windows + epsilon
			total += math.Log(joint / (occ.single[j] / occ.windows))
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}
