package hal

import (
	"fmt"

	"cadence/rtos/spsc"
)

// initSampleQueue binds q to backing as a drop-on-full sample queue. Backing
// arrays are sized at compile time, so a rejected length is a build mistake
// and panics rather than leaving a zero-capacity queue behind.
func initSampleQueue(q *spsc.Ring[int16], backing []int16) {
	if err := q.Init(0, backing, spsc.Reject); err != nil {
		panic(fmt.Errorf("hal: audio queue of %d samples: %w", len(backing), err))
	}
}
