package entry_test

import (
	"context"
	"fmt"

	"github.com/asyncache/asyncache/entry"
	"github.com/asyncache/asyncache/key"
	"github.com/asyncache/asyncache/notify"
)

func Example() {
	nm := notify.New()
	defer nm.Close()
	cache := entry.NewCache(nm, func() bool { return true })

	e := cache.Build(key.Key{"todos", 1}, "", entry.Options{
		QueryFn: func(context.Context) (any, error) { return "buy milk", nil },
	})

	v, err := e.Fetch(context.Background(), entry.FetchOptions{})
	fmt.Println(v, err)
	// Output: buy milk <nil>
}
