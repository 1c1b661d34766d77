package tracker_test

import (
	"fmt"

	"github.com/asyncache/asyncache/tracker"
)

func Example() {
	online := tracker.NewOnlineTracker()
	online.Subscribe(func(v bool) { fmt.Println("online:", v) })
	online.SetOnline(false)
	online.SetOnline(true)
	// Output:
	// online: false
	// online: true
}
