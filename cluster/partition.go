package cluster

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/grailbio/base/log"
	"github.com/grailbio/umiconsensus/ingest"
)

// Partition is one reference's worth of work: its reads and the clusters
// built from them.
type Partition struct {
	Reference string
	Clusters  []*Cluster
}

// Run drives one worker per non-empty reference partition, grounded on
// the teacher's shard-channel-plus-WaitGroup idiom
// (markduplicates.MarkDuplicates.generateBAM). threads is capped to
// runtime.NumCPU(); a value of 1 skips per-reference partitioning
// entirely and clusters every mapped read as a single input, per the
// concurrency model's single-threaded fallback path.
//
// Output order always follows src.References() header order, regardless
// of how many workers ran: each worker writes into its own pre-allocated
// slot and Run drains slots in header order only after every worker has
// joined, so no partial output is produced if ctx is cancelled.
func Run(ctx context.Context, src ingest.AlignedReadSource, umiLookup func(*ingest.AlignedRead) (string, error), params Params, threads int) ([]*Partition, error) {
	if threads < 1 {
		threads = 1
	}
	if cap := runtime.NumCPU(); threads > cap {
		log.Debug.Printf("requested %d threads, capping to %d (runtime.NumCPU)", threads, cap)
		threads = cap
	}

	if threads == 1 {
		parts, err := runSequential(src, umiLookup, params)
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return parts, nil
	}

	refs := src.References()
	slots := make([]*Partition, len(refs))
	type job struct {
		idx int
		ref string
	}
	jobs := make(chan job, len(refs))
	for i, ref := range refs {
		jobs <- job{i, ref}
	}
	close(jobs)

	var wg sync.WaitGroup
	errs := make(chan error, threads)
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				p, err := buildPartition(src, umiLookup, params, j.ref)
				if err != nil {
					errs <- fmt.Errorf("cluster: partition %s: %w", j.ref, err)
					return
				}
				slots[j.idx] = p
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var out []*Partition
	for _, p := range slots {
		if p != nil && len(p.Clusters) > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func runSequential(src ingest.AlignedReadSource, umiLookup func(*ingest.AlignedRead) (string, error), params Params) ([]*Partition, error) {
	var all []*ingest.AlignedRead
	for _, ref := range src.References() {
		reads, err := src.Reads(ref)
		if err != nil {
			return nil, fmt.Errorf("cluster: reading %s: %w", ref, err)
		}
		all = append(all, reads...)
	}
	clusters, err := clusterReads(all, umiLookup, params)
	if err != nil {
		return nil, err
	}
	if len(clusters) == 0 {
		return nil, nil
	}
	return []*Partition{{Reference: "", Clusters: clusters}}, nil
}

func buildPartition(src ingest.AlignedReadSource, umiLookup func(*ingest.AlignedRead) (string, error), params Params, ref string) (*Partition, error) {
	reads, err := src.Reads(ref)
	if err != nil {
		return nil, err
	}
	clusters, err := clusterReads(reads, umiLookup, params)
	if err != nil {
		return nil, err
	}
	return &Partition{Reference: ref, Clusters: clusters}, nil
}

func clusterReads(reads []*ingest.AlignedRead, umiLookup func(*ingest.AlignedRead) (string, error), params Params) ([]*Cluster, error) {
	if len(reads) == 0 {
		return nil, nil
	}
	umis := make([]string, len(reads))
	for i, r := range reads {
		u, err := umiLookup(r)
		if err != nil {
			return nil, err
		}
		umis[i] = u
	}
	return Build(reads, umis, params)
}
