package shared

import "hash/fnv"

// NumberingLockKey derives the advisory lock key guarding a document sequence.
func NumberingLockKey(docType string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("numbering:" + docType))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}
