/*
umiconsensus reduces UMI/coordinate clusters of single-end aligned reads
to consensus reads, writing FASTQ-shaped text to standard output. See
github.com/grailbio/umiconsensus/doc.go for an overview.
*/
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umiconsensus"
	"github.com/grailbio/umiconsensus/consensus"
	"github.com/pkg/profile"
)

var (
	threads   = flag.Int("j", 1, "worker count cap (also --threads)")
	threshold = flag.Int("t", 1, "UMI Hamming threshold T (also --threshold)")
	window    = flag.Int("w", 5, "coordinate window W (also --window)")
	umiFile   = flag.String("u", "", "known-UMI panel for snap correction (also --umi-file)")
	weightN   = flag.Float64("weight-n", 0.5, "column-voting weight for base-count agreement")
	weightQ   = flag.Float64("weight-q", 0.5, "column-voting weight for mean base quality")
	debug     = flag.Bool("d", false, "raise log verbosity (also --debug)")
	profileAt = flag.String("profile", "", "one of 'cpu', 'mem', or '' to disable profiling")
)

func init() {
	flag.IntVar(threads, "threads", 1, "worker count cap")
	flag.IntVar(threshold, "threshold", 1, "UMI Hamming threshold T")
	flag.IntVar(window, "window", 5, "coordinate window W")
	flag.StringVar(umiFile, "umi-file", "", "known-UMI panel for snap correction")
	flag.BoolVar(debug, "debug", false, "raise log verbosity")
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: umiconsensus [flags] <alignment-file>")
	}
	if *debug {
		log.SetFlags(log.Ldate | log.Ltime)
	}

	switch *profileAt {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	default:
		log.Fatalf("--profile must be one of 'cpu', 'mem', or '': got %q", *profileAt)
	}

	opts := umiconsensus.Opts{
		Path:      strings.TrimSpace(flag.Arg(0)),
		Threads:   *threads,
		Threshold: *threshold,
		Window:    *window,
		UMIFile:   *umiFile,
		Weights:   consensus.VoteWeights{N: *weightN, Q: *weightQ},
	}

	summary, err := umiconsensus.Run(context.Background(), opts, os.Stdout)
	if err != nil {
		log.Fatalf("umiconsensus: %v", err)
	}
	log.Debug.Printf("wrote %d consensus records from %d input reads (%d empty clusters skipped)",
		summary.ConsensusWritten, summary.InputReads, summary.EmptyClusters)
}
