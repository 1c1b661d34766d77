package mutation_test

import (
	"context"
	"fmt"

	"github.com/asyncache/asyncache/mutation"
	"github.com/asyncache/asyncache/notify"
)

func Example() {
	cache := mutation.NewCache(notify.New(), mutation.Hooks{})
	m := cache.Build(mutation.Options{
		Fn: func(ctx context.Context, variables any) (any, error) {
			name := variables.(string)
			return "hello " + name, nil
		},
		Hooks: mutation.Hooks{
			OnSuccess: func(data, variables, mutationContext any) {
				fmt.Println(data)
			},
		},
	})

	if _, err := m.Execute(context.Background(), "world"); err != nil {
		fmt.Println("error:", err)
	}
	// Output: hello world
}
