// Package umiconsensus wires the ingest, clustering, consensus, and sink
// collaborators into one pipeline: read a coordinate-sorted BAM file,
// group single-end reads into UMI/coordinate clusters, reduce each
// cluster to a consensus read, and write the result as FASTQ-shaped
// text, grounded on the teacher's markduplicates.Mark()/generateBAM
// orchestration (header-ordered draining after worker join, a summary
// counter for absorbed per-item failures).
package umiconsensus

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/grailbio/base/log"
	"github.com/grailbio/umiconsensus/cluster"
	"github.com/grailbio/umiconsensus/consensus"
	"github.com/grailbio/umiconsensus/fastqsink"
	"github.com/grailbio/umiconsensus/ingest"
	"github.com/grailbio/umiconsensus/umi"
	"github.com/grailbio/umiconsensus/umierrors"
)

// Opts configures a pipeline run, mirroring the CLI surface in
// cmd/umiconsensus.
type Opts struct {
	// Path is the input alignment file. May be a local path or an
	// s3:// URL (see ingest.OpenPath).
	Path string
	// Threads caps worker-pool parallelism; 1 skips per-reference
	// partitioning entirely (§5).
	Threads int
	// Threshold is the UMI Hamming threshold T.
	Threshold int
	// Window is the coordinate window W.
	Window int
	// UMIFile, if non-empty, is a known-UMI panel for snap correction.
	UMIFile string
	// Weights are the column-voting weights; the zero value defaults to
	// consensus.DefaultVoteWeights.
	Weights consensus.VoteWeights
}

// Summary reports counters accumulated over a run (§7's "single summary
// log line after all clusters finish", mirroring the teacher's
// optical/PCR dup-count summary).
type Summary struct {
	InputReads       int
	Clusters         int
	ConsensusWritten int
	EmptyClusters    int
}

// Run executes the full pipeline, writing one FASTQ-shaped record per
// cluster to out. A cancelled ctx stops all workers before the next
// cluster boundary with no partial output flushed (§5).
func Run(ctx context.Context, opts Opts, out io.Writer) (*Summary, error) {
	src, err := ingest.OpenPath(opts.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, umierrors.E(umierrors.InputMissing, err, "path", opts.Path)
		}
		return nil, err
	}
	return run(ctx, opts, src, out)
}

// run is Run's body split out from file-opening so tests can drive the
// pipeline against an ingest.FakeSource.
func run(ctx context.Context, opts Opts, src ingest.AlignedReadSource, out io.Writer) (*Summary, error) {
	if err := src.Sample(1000); err != nil {
		return nil, err
	}

	umiLookup, err := newUMILookup(opts.UMIFile)
	if err != nil {
		return nil, err
	}

	inputReads, err := countReads(src)
	if err != nil {
		return nil, err
	}
	if inputReads == 0 {
		return nil, umierrors.E(umierrors.EmptyInput, "path", opts.Path)
	}

	params := cluster.Params{UMIThreshold: opts.Threshold, CoordWindow: opts.Window}
	partitions, err := cluster.Run(ctx, src, umiLookup, params, opts.Threads)
	if err != nil {
		return nil, err
	}

	summary := &Summary{InputReads: inputReads}
	var clusteredReads int
	for _, p := range partitions {
		for _, c := range p.Clusters {
			clusteredReads += len(c.Reads)
		}
	}
	if clusteredReads != inputReads {
		return nil, umierrors.E(umierrors.IntegrityMismatch,
			"input reads", inputReads, "clustered reads", clusteredReads)
	}

	engine := consensus.NewEngine(opts.Weights)
	sink := fastqsink.NewWriter(out)
	for _, p := range partitions {
		for _, c := range p.Clusters {
			summary.Clusters++
			read, err := engine.Compute(c)
			if err != nil {
				if umierrors.Is(err, umierrors.EmptyCluster) {
					summary.EmptyClusters++
					log.Error.Printf("skipping empty cluster: %v", err)
					continue
				}
				return nil, err
			}
			if err := sink.Write(read); err != nil {
				return nil, err
			}
			summary.ConsensusWritten++
		}
	}

	log.Debug.Printf("done: %d input reads, %d clusters, %d consensus records, %d empty clusters skipped",
		summary.InputReads, summary.Clusters, summary.ConsensusWritten, summary.EmptyClusters)
	return summary, nil
}

func countReads(src ingest.AlignedReadSource) (int, error) {
	total := 0
	for _, ref := range src.References() {
		reads, err := src.Reads(ref)
		if err != nil {
			return 0, err
		}
		total += len(reads)
	}
	return total, nil
}

// umiLengthGuard records the length of the first UMI it sees and rejects
// every later one of a different length, since Hamming distance (used
// throughout clustering) is only defined between equal-length strings
// (§4.4, umi.Hamming). cluster.Run calls the lookup concurrently, one
// goroutine per reference partition, so the recorded length is
// mutex-protected.
type umiLengthGuard struct {
	mu     sync.Mutex
	length int
}

func (g *umiLengthGuard) check(u string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.length == 0 {
		g.length = len(u)
		return nil
	}
	if len(u) != g.length {
		return umierrors.E(umierrors.MalformedUMI,
			"umi", u, "length", len(u), "expected length", g.length)
	}
	return nil
}

func newUMILookup(umiFile string) (func(*ingest.AlignedRead) (string, error), error) {
	guard := &umiLengthGuard{}

	if umiFile == "" {
		return func(r *ingest.AlignedRead) (string, error) {
			u, err := r.UMI()
			if err != nil {
				return "", umierrors.E(umierrors.MalformedUMI, err, "read", r.ID)
			}
			if err := guard.check(u); err != nil {
				return "", err
			}
			return u, nil
		}, nil
	}
	raw, err := os.ReadFile(umiFile)
	if err != nil {
		return nil, err
	}
	corrector, err := umi.NewSnapCorrector(raw)
	if err != nil {
		return nil, err
	}
	return func(r *ingest.AlignedRead) (string, error) {
		u, err := r.UMI()
		if err != nil {
			return "", umierrors.E(umierrors.MalformedUMI, err, "read", r.ID)
		}
		if err := guard.check(u); err != nil {
			return "", err
		}
		corrected, _, _ := corrector.CorrectUMI(u)
		return corrected, nil
	}, nil
}
