// Package content deterministically selects which content blocks appear on a
// page. Selection is seeded by the page's identity, never by real
// randomness, so the same location always shows the same subset (cacheable,
// reproducible) while different locations vary.
package content

// Hash is a stable, order-sensitive string hash (djb2). Not cryptographic;
// it only has to agree with itself across processes and over time.
func Hash(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}

	return h
}

// stride spaces the picks across the pool so neighbors in the pool do not
// cluster in the selection.
const stride = 7

// Select returns exactly k distinct indices into a pool of n items for the
// given identity, in selection order. Each pick is (hash + i*stride) mod n;
// collisions advance by linear probing to the next free slot. k is clamped
// to n.
func Select(identity string, n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}

	if k > n {
		k = n
	}

	h := int(Hash(identity) % uint32(n))
	taken := make([]bool, n)
	out := make([]int, 0, k)

	for i := 0; i < k; i++ {
		idx := (h + i*stride) % n
		for taken[idx] {
			idx = (idx + 1) % n
		}

		taken[idx] = true
		out = append(out, idx)
	}

	return out
}

// Pick returns the k pool items Select chooses for the identity, in
// selection order.
func Pick[T any](identity string, pool []T, k int) []T {
	indices := Select(identity, len(pool), k)

	out := make([]T, 0, len(indices))
	for _, idx := range indices {
		out = append(out, pool[idx])
	}

	return out
}
