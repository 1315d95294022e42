package textutil

import "hash/fnv"

// StableIndex maps key onto [0,n) using FNV-1a. It returns 0 when n <= 0.
func StableIndex(key string, n int) int {
	if n <= 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(Fold(key)))
	return int(h.Sum32() % uint32(n))
}
