package once_test

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/go-faster/once"
)

func ExampleSlice() {
	var cache once.Slice[int]
	fmt.Println(cache.Set([]int{1, 2, 3}))
	fmt.Println(cache.Set([]int{4, 5, 6}))
	v, ok := cache.Get()
	fmt.Println(v, ok)
	// Output:
	// true
	// false
	// [1 2 3] true
}

func ExampleSliceMeta() {
	var cache once.SliceMeta[byte, uuid.UUID]
	cache.Set([]byte("payload"), uuid.MustParse("c71b7082-a2d5-4cd6-b33c-665a7d6ef5a7"))
	if m, ok := cache.Meta(); ok {
		fmt.Println(m)
	}
	// Output:
	// c71b7082-a2d5-4cd6-b33c-665a7d6ef5a7
}

// The cell has no blocking accessor. Callers that need "wait until set"
// build it on top, e.g. by polling with backoff.
func ExampleSlice_wait() {
	var cache once.Slice[string]
	go func() {
		time.Sleep(10 * time.Millisecond)
		cache.Set([]string{"ready"})
	}()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Millisecond

	var got []string
	if err := backoff.Retry(func() error {
		v, ok := cache.Get()
		if !ok {
			return errors.New("unset")
		}
		got = v
		return nil
	}, bo); err != nil {
		panic(err)
	}
	fmt.Println(got)
	// Output:
	// [ready]
}
