package counter

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// launch runs kernel once for every assignment id in [minID, maxID), spread
// over a pool of worker lanes. It returns after every lane has finished, so
// the caller sees all writes of the launch.
func launch(minID, maxID int64, kernel func(id int64)) {
	n := maxID - minID
	if n <= 0 {
		return
	}
	lanes := int64(runtime.GOMAXPROCS(0))
	if lanes > n {
		lanes = n
	}
	per := (n + lanes - 1) / lanes
	var g errgroup.Group
	for lo := minID; lo < maxID; lo += per {
		hi := lo + per
		if hi > maxID {
			hi = maxID
		}
		lo, hi := lo, hi
		g.Go(func() error {
			for id := lo; id < hi; id++ {
				kernel(id)
			}
			return nil
		})
	}
	g.Wait()
}
