/*
Package umiconsensus reduces single-end, UMI-tagged aligned reads to one
consensus read per group of reads believed to have originated from the
same molecule.

A run reads a coordinate-sorted BAM file through package ingest,
partitions its mapped reads by reference (package cluster's Partitioner),
groups each partition into clusters with a hybrid UMI/coordinate
distance metric under complete-linkage hierarchical agglomerative
clustering (package cluster), reduces each cluster to a consensus read
via CIGAR padding, pairwise Needleman-Wunsch alignment, and per-column
base-and-quality voting (package consensus), and serialises the result
as FASTQ-shaped text (package fastqsink).

See cmd/umiconsensus for the command-line entry point.
*/
package umiconsensus
