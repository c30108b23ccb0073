package appsize_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/ygrebnov/appsize"
)

func ExampleCollect() {
	items := []appsize.Item{
		{Key: "com.example.mail", Label: "Mail"},
		{Key: "com.example.maps", Label: "Maps"},
		{Key: "com.example.notes", Label: "Notes"},
	}
	sizes := map[string]int64{
		"com.example.mail": 3 << 20,
		"com.example.maps": 12 << 20,
	}

	m := appsize.Async(func(_ context.Context, it appsize.Item) (appsize.Stats, error) {
		n, ok := sizes[it.Key]
		if !ok {
			return appsize.Stats{}, errors.New("not installed")
		}
		return appsize.Stats{DataSize: n}, nil
	}, nil)

	entries, err := appsize.Collect(context.Background(), items, m)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, e := range entries {
		fmt.Printf("%s %d\n", e.Label, e.Size)
	}
	// Output:
	// Maps 12582912
	// Mail 3145728
}

func ExampleBatch_Snapshot() {
	items := []appsize.Item{{Key: "a", Label: "Alpha"}, {Key: "b", Label: "Beta", External: true}}

	m := appsize.MeasurerFunc(func(_ context.Context, _ appsize.Item, done func(appsize.Stats, bool)) {
		done(appsize.Stats{}, true)
	})
	b, err := appsize.New(items, m, appsize.WithEligibility(appsize.ExternalOnly))
	if err != nil {
		fmt.Println(err)
		return
	}
	p := b.Snapshot()
	fmt.Println(p.Completed, p.Total, p.Done())

	if _, err := b.Run(context.Background()); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(b.Snapshot())
	// Output:
	// 0 2 false
	// [2/2] Beta
}

func ExampleCollect_noResults() {
	m := appsize.MeasurerFunc(func(_ context.Context, _ appsize.Item, done func(appsize.Stats, bool)) {
		done(appsize.Stats{}, false)
	})
	_, err := appsize.Collect(context.Background(), []appsize.Item{{Key: "a"}}, m)
	fmt.Println(errors.Is(err, appsize.ErrNoResults))
	// Output: true
}
