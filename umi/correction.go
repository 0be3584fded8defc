package umi

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

var (
	alphabetMap = map[byte]bool{
		'A': true,
		'C': true,
		'G': true,
		'T': true,
	}

	alphabetWithN    = []byte{'A', 'C', 'G', 'T', 'N'}
	alphabetWithNMap = map[byte]bool{
		'A': true,
		'C': true,
		'G': true,
		'T': true,
		'N': true,
	}
)

type snapCorrectorEntry struct {
	knownUMI string
	edits    int
}

// SnapCorrector implements "snap" correction of UMIs. A UMI U is snappable
// if there is a known, non-random UMI U1 that is strictly closer to U than
// every other known UMI, in terms of Hamming distance. UMIs sequenced in a
// single run share a fixed length, so Hamming distance (rather than the
// variable-length Levenshtein distance) is the admissible metric here.
type SnapCorrector struct {
	knownUMIs []string
	k         int

	// correctionTable maps every possible k-mer (k is the UMI length) to
	// the known UMI it should snap to, when exactly one known UMI is
	// closest.
	correctionTable map[string]snapCorrectorEntry
}

// NewSnapCorrector creates a new snap corrector. knownUMIs is a \n
// separated list of UMIs (identical to the content of a file listing one
// UMI per line). Each UMI must consist of characters ACGT. If raw looks
// like a gzip stream (magic bytes 0x1f 0x8b), it is transparently
// decompressed first.
func NewSnapCorrector(raw []byte) (*SnapCorrector, error) {
	known, err := readKnownUMIs(raw)
	if err != nil {
		return nil, err
	}
	if len(known) == 0 {
		return nil, fmt.Errorf("umi: no UMIs found in known-UMI panel")
	}
	k := len(known[0])
	for _, u := range known {
		if len(u) != k {
			return nil, fmt.Errorf("umi: known UMI %s has length %d, other known UMIs have length %d", u, len(u), k)
		}
		if err := validateUMI(u, false); err != nil {
			return nil, err
		}
	}

	log.Debug.Printf("Building snappable UMI correction table for %d known UMIs", len(known))

	costTable := map[string][][]string{}
	all := allKmers(k, alphabetWithN)
	for _, s := range all {
		costTable[s] = make([][]string, k+1)
	}
	for _, candidate := range all {
		for _, knownUMI := range known {
			cost := Hamming(candidate, knownUMI)
			costTable[candidate][cost] = append(costTable[candidate][cost], knownUMI)
		}
	}

	correctionTable := map[string]snapCorrectorEntry{}
	for candidate, costList := range costTable {
		for cost, knownList := range costList {
			if len(knownList) == 1 {
				log.Debug.Printf("%s snaps to %s with cost %d", candidate, knownList[0], cost)
				correctionTable[candidate] = snapCorrectorEntry{knownList[0], cost}
			}
			if len(knownList) > 0 {
				break
			}
		}
	}
	log.Debug.Printf("Done building snappable UMI correction table")

	return &SnapCorrector{
		knownUMIs:       known,
		k:               k,
		correctionTable: correctionTable,
	}, nil
}

// CorrectUMI returns a corrected UMI, the number of edits to reach it, and
// true if there is exactly one known UMI closest to the original umi in
// Hamming distance and it differs from umi. If umi is itself a known UMI,
// it returns umi, 0, and false. Otherwise it returns the original umi, -1,
// and false.
func (c *SnapCorrector) CorrectUMI(umi string) (correctedUMI string, edits int, corrected bool) {
	umi = strings.ToUpper(umi)
	if len(umi) != c.k {
		return umi, -1, false
	}
	entry, ok := c.correctionTable[umi]
	if ok {
		return entry.knownUMI, entry.edits, entry.knownUMI != umi
	}
	return umi, -1, false
}

func readKnownUMIs(raw []byte) ([]string, error) {
	r := io.Reader(bytes.NewReader(raw))
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("umi: reading gzip-compressed known-UMI panel: %v", err)
		}
		defer gz.Close()
		decompressed, err := ioutil.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("umi: decompressing known-UMI panel: %v", err)
		}
		r = bytes.NewReader(decompressed)
	}

	scanner := bufio.NewScanner(r)
	var known []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		known = append(known, strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("umi: scanning known-UMI panel: %v", err)
	}
	return known, nil
}

func validateUMI(umi string, allowN bool) error {
	for _, c := range umi {
		if (allowN && !alphabetWithNMap[byte(c)]) || (!allowN && !alphabetMap[byte(c)]) {
			return fmt.Errorf("umi: invalid base %c in umi %v", c, umi)
		}
	}
	return nil
}

// allKmers returns every possible k-mer over the given alphabet.
func allKmers(k int, alphabet []byte) []string {
	var fn func(partial string, length int) []string
	fn = func(partial string, length int) []string {
		if len(partial) == length {
			return []string{partial}
		}
		kmers := make([]string, 0, len(alphabet))
		for _, c := range alphabet {
			kmers = append(kmers, fn(partial+string(c), length)...)
		}
		return kmers
	}
	return fn("", k)
}
