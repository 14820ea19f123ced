package service

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyedLock serialises work per session ID without keeping a mutex per session.
type keyedLock struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyedLock) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	m := &k.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
