// Package tools runs the external programs of the pipeline: gene calling,
// profile search, alignment and tree inference.
package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// GeneCaller predicts proteins on a nucleotide genome.
type GeneCaller interface {
	CallGenes(ctx context.Context, nucleotides, proteins string) error
}

// Searcher searches a marker profile against a genome's proteins and writes a
// per-target hit table.
type Searcher interface {
	Search(ctx context.Context, profile, proteins, table string) error
}

// Aligner aligns a multi-FASTA file of homologous sequences.
type Aligner interface {
	Align(ctx context.Context, in, out string) error
}

// TreeBuilder infers a tree from an alignment, writing its artifacts to outDir.
type TreeBuilder interface {
	Infer(ctx context.Context, alignment, partitions, outDir string) error
}

// run calls an external binary and waits on it to finish. The combined output is
// included in the error if it fails.
func run(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "failed to execute %s %s: %s", bin, strings.Join(args, " "), strings.TrimSpace(string(output)))
	}
	return nil
}

// Prodigal calls genes with prodigal.
type Prodigal struct {
	// Path to the prodigal executable
	Path string
}

// CallGenes writes the translated genes of nucleotides to proteins.
func (p Prodigal) CallGenes(ctx context.Context, nucleotides, proteins string) error {
	// https://github.com/hyattpd/prodigal/wiki/cheat-sheet
	return run(ctx, p.Path,
		"-q",
		"-i", nucleotides,
		"-a", proteins,
		"-o", os.DevNull,
	)
}

// HMMSearch searches profiles with hmmsearch using their trusted cutoffs.
type HMMSearch struct {
	// Path to the hmmsearch executable
	Path string

	// CPUs per search
	CPUs int
}

// Search writes the --tblout table of profile against proteins to table.
func (h HMMSearch) Search(ctx context.Context, profile, proteins, table string) error {
	cpus := h.CPUs
	if cpus < 1 {
		cpus = 1
	}

	// http://eddylab.org/software/hmmer/Userguide.pdf
	return run(ctx, h.Path,
		"--cut_tc",
		"--cpu", strconv.Itoa(cpus),
		"--tblout", table,
		"-o", os.DevNull,
		profile,
		proteins,
	)
}

// Muscle aligns with muscle (v3 command line).
type Muscle struct {
	// Path to the muscle executable
	Path string
}

// Align writes the alignment of in to out as aligned FASTA.
func (m Muscle) Align(ctx context.Context, in, out string) error {
	return run(ctx, m.Path, "-quiet", "-in", in, "-out", out)
}

// FastTree infers an approximate maximum likelihood tree.
type FastTree struct {
	// Path to the FastTree executable
	Path string
}

// Infer writes tree.nwk and fasttree.log to outDir. Partitions are ignored.
func (f FastTree) Infer(ctx context.Context, alignment, partitions, outDir string) error {
	return run(ctx, f.Path,
		"-quiet",
		"-log", filepath.Join(outDir, "fasttree.log"),
		"-out", filepath.Join(outDir, "tree.nwk"),
		alignment,
	)
}

// RAxML infers a maximum likelihood tree with rapid bootstrapping.
type RAxML struct {
	// Path to the raxml executable (pthreads build)
	Path string

	// Threads for -T
	Threads int

	// Bootstraps is the number of rapid bootstrap replicates
	Bootstraps int

	// Seed for parsimony and bootstrap random numbers
	Seed int
}

// Infer runs raxml with its working directory set to outDir.
func (r RAxML) Infer(ctx context.Context, alignment, partitions, outDir string) error {
	// raxml wants an absolute working directory
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return errors.Wrap(err, "failed to create raxml working directory path")
	}

	threads := r.Threads
	if threads < 2 {
		threads = 2 // pthreads builds refuse fewer
	}
	bootstraps := r.Bootstraps
	if bootstraps < 1 {
		bootstraps = 100
	}
	seed := strconv.Itoa(r.Seed)
	if r.Seed < 1 {
		seed = "12345"
	}

	args := []string{
		"-f", "a",
		"-m", "PROTGAMMAAUTO",
		"-p", seed,
		"-x", seed,
		"-#", strconv.Itoa(bootstraps),
		"-s", alignment,
		"-n", "supermatrix",
		"-w", abs,
		"-T", strconv.Itoa(threads),
	}
	if partitions != "" {
		args = append(args, "-q", partitions)
	}

	return run(ctx, r.Path, args...)
}
