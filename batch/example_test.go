package batch_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MasterOfBinary/throttledbatch/batch"
)

func Example() {
	// The executor stands in for the remote batch endpoint.
	upper := batch.ExecutorFunc(func(_ context.Context, reqs []batch.Request) (map[string]interface{}, error) {
		out := make(map[string]interface{}, len(reqs))
		for _, r := range reqs {
			out[r.ID] = strings.ToUpper(r.Call.(string))
		}
		return out, nil
	})

	b := batch.New(batch.NewConstantConfig(&batch.ConfigValues{
		MaxPerBatch:  2,
		StaggerDelay: 10 * time.Millisecond,
	})).WithExecutor(upper)

	b.Add("alpha")
	b.Add("beta")
	b.Add("gamma", "g")
	fmt.Println(b)

	results, err := b.Execute(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("%s=%v\n", id, results[id])
	}

	// Output:
	// ThrottledBatch{max:2,wait:10,queue:3}
	// 1=ALPHA
	// 2=BETA
	// g=GAMMA
}

func ExampleThrottledBatch_WithStats() {
	stats := batch.NewBasicStatsCollector()
	b := batch.New(batch.NewConstantConfig(&batch.ConfigValues{MaxPerBatch: 3})).
		WithExecutor(batch.ExecutorFunc(func(_ context.Context, reqs []batch.Request) (map[string]interface{}, error) {
			out := make(map[string]interface{}, len(reqs))
			for _, r := range reqs {
				out[r.ID] = true
			}
			return out, nil
		})).
		WithStats(stats)

	for i := 0; i < 7; i++ {
		b.Add(i)
	}
	if _, err := b.Execute(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}

	s := stats.GetStats()
	fmt.Printf("chunks: %d submitted, %d completed\n", s.ChunksSubmitted, s.ChunksCompleted)
	fmt.Printf("calls: %d, results: %d, largest chunk: %d\n", s.CallsSubmitted, s.ResultsMerged, s.MaxChunkSize)

	// Output:
	// chunks: 3 submitted, 3 completed
	// calls: 7, results: 7, largest chunk: 3
}
