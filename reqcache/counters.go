package reqcache

import "sync/atomic"

func addCounter(counter *uint64, delta uint64) {
	atomic.AddUint64(counter, delta)
}

func loadCounter(counter *uint64) uint64 {
	return atomic.LoadUint64(counter)
}
