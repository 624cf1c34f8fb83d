package services

import "math"

// LexicalSimilarity computes a TF-IDF cosine similarity over unigrams and
// bigrams of two free-text documents. The result is clamped to [0,1] and is
// 0 when either document normalizes to nothing. It never fails: degenerate
// input degrades to 0.
func LexicalSimilarity(textA, textB string) float64 {
	termsA := ngramTerms(Tokenize(textA))
	termsB := ngramTerms(Tokenize(textB))
	if len(termsA) == 0 || len(termsB) == 0 {
		return 0
	}

	countsA := termCounts(termsA)
	countsB := termCounts(termsB)

	// Smoothed IDF over the two-document corpus, so shared terms still carry
	// a non-zero weight.
	idf := func(term string) float64 {
		df := 0
		if countsA[term] > 0 {
			df++
		}
		if countsB[term] > 0 {
			df++
		}
		return math.Log(3.0/(1.0+float64(df))) + 1.0
	}

	var dot, normA, normB float64
	for term, tf := range countsA {
		w := float64(tf) * idf(term)
		normA += w * w
		if tfB := countsB[term]; tfB > 0 {
			dot += w * float64(tfB) * idf(term)
		}
	}
	for term, tf := range countsB {
		w := float64(tf) * idf(term)
		normB += w * w
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

func ngramTerms(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

func termCounts(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	return counts
}
