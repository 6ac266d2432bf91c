package coherence

import "context"

// occurrences holds boolean window counts for a fixed word list.
type occurrences struct {
	index   map[string]int
	single  []float64
	joint   []float64
	n       int
	windows float64
}

func (o *occurrences) id(word string) (int, bool) {
	i, ok := o.index[word]
	return i, ok
}

// pair returns the number of windows containing both words.
func (o *occurrences) pair(i, j int) float64 {
	if i == j {
		return o.single[i]
	}
	return o.joint[i*o.n+j]
}

// count slides a boolean window of the given size over every text. A text
// no longer than the window counts once; window <= 0 treats every text as
// one window.
func count(ctx context.Context, texts [][]string, words []string, window int) (*occurrences, error) {
	n := len(words)
	occ := &occurrences{
		index:  make(map[string]int, n),
		single: make([]float64, n),
		joint:  make([]float64, n*n),
		n:      n,
	}
	for i, w := range words {
		occ.index[w] = i
	}

	inWindow := make([]int, n)
	var present []int
	pos := make([]int, n)

	add := func(id int) {
		if id < 0 {
			return
		}
		inWindow[id]++
		if inWindow[id] == 1 {
			pos[id] = len(present)
			present = append(present, id)
		}
	}
	remove := func(id int) {
		if id < 0 {
			return
		}
		inWindow[id]--
		if inWindow[id] == 0 {
			last := present[len(present)-1]
			present[pos[id]] = last
			pos[last] = pos[id]
			present = present[:len(present)-1]
		}
	}
	tally := func() {
		occ.windows++
		for a, i := range present {
			occ.single[i]++
			for _, j := range present[a+1:] {
				occ.joint[i*n+j]++
				occ.joint[j*n+i]++
			}
		}
	}

	ids := make([]int, 0, 256)
	for t, text := range texts {
		if t%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(text) == 0 {
			continue
		}
		ids = ids[:0]
		for _, token := range text {
			if id, ok := occ.index[token]; ok {
				ids = append(ids, id)
			} else {
				ids = append(ids, -1)
			}
		}

		span := window
		if span <= 0 || len(ids) <= span {
			span = len(ids)
		}
		for _, id := range ids[:span] {
			add(id)
		}
		tally()
		for end := span; end < len(ids); end++ {
			remove(ids[end-span])
			add(ids[end])
			tally()
		}
		for _, id := range ids[len(ids)-span:] {
			remove(id)
		}
	}
	return occ, nil
}
