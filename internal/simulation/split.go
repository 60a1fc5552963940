package simulation

import (
	"math/rand"
	"sort"
)

// trainTestSplit partitions row indices [0,n) into train/test sets with a
// seeded shuffle, so identical inputs always produce identical splits.
func trainTestSplit(n int, testSize float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	nTest := int(float64(n) * testSize)
	test = append(test, perm[:nTest]...)
	train = append(train, perm[nTest:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// stratifiedSplit splits per class so each class keeps roughly its overall
// proportion in both partitions. A class too small to contribute a test row
// goes entirely to the train set.
func stratifiedSplit(y []int, testSize float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))

	groups := make(map[int][]int)
	order := []int{}
	for i, class := range y {
		if _, ok := groups[class]; !ok {
			order = append(order, class)
		}
		groups[class] = append(groups[class], i)
	}
	sort.Ints(order)

	for _, class := range order {
		members := groups[class]
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		nTest := int(float64(len(members)) * testSize)
		if nTest == 0 && len(members) >= 2 {
			nTest = 1
		}
		test = append(test, members[:nTest]...)
		train = append(train, members[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// sampleRows picks up to max row positions out of n with a seeded shuffle,
// preserving the original row order in the result.
func sampleRows(n, max int, seed int64) []int {
	if n <= max {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	idx := append([]int(nil), perm[:max]...)
	sort.Ints(idx)
	return idx
}
