// Package pipeline runs a genome phylogeny end to end: gene calling, protein
// normalization, marker search, hit selection, alignment, concatenation,
// coverage reporting and tree inference.
//
// Stages are separated by barriers. Within a stage, independent genomes or
// markers run concurrently, bounded by Options.Threads. The first failure
// cancels the stage and aborts the run, since a missing alignment would
// break the supermatrix's width.
package pipeline

import (
	"context"
	"io"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/coverage"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/fasta"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/hits"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/normalize"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/panel"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/supermatrix"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/tools"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// Options configures a run.
type Options struct {
	// Input is the directory of .faa / .fna genomes
	Input string

	// Output is the run directory, created by the run
	Output string

	// Panel is the closed marker set of the run
	Panel *panel.Panel

	// MinMarkers is the coverage cutoff
	MinMarkers int

	// Threads bounds concurrent tasks within a stage
	Threads int

	// Filler is the missing-data symbol of the supermatrix
	Filler byte

	GeneCaller tools.GeneCaller
	Searcher   tools.Searcher
	Aligner    tools.Aligner

	// TreeBuilder is optional; without one the run stops at the supermatrix
	TreeBuilder tools.TreeBuilder

	// PartitionModel is the substitution model named in the partition file
	PartitionModel string

	Logger *log.Logger

	// Progress draws progress bars on stderr
	Progress bool
}

// Result is what a run produced.
type Result struct {
	Layout      Layout
	Manifest    *Manifest
	Matrix      *supermatrix.Matrix
	Coverage    coverage.Report
	LowCoverage []coverage.Record
	HitCounts   *coverage.HitMatrix
}

// run is the state of one run: the serial counter, the normalized proteins and
// the per-marker collections all live here rather than in package state.
type run struct {
	opts     Options
	log      *log.Logger
	layout   Layout
	manifest *Manifest

	serial      *normalize.Serial
	proteins    map[string][]fasta.Record
	collections *hits.Collections
	hitCounts   *coverage.HitMatrix
	alignments  []*supermatrix.Alignment
}

// newRun checks options, discovers the genomes and prepares the run directory.
// Nothing is processed before both pre-flight checks pass.
func newRun(opts Options) (*run, error) {
	if opts.Panel == nil || len(opts.Panel.Markers) == 0 {
		return nil, errors.Wrap(supermatrix.ErrEmptyMarkerSet, "no markers in the panel")
	}
	if opts.Searcher == nil {
		return nil, errors.New("no profile searcher")
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Filler == 0 {
		opts.Filler = supermatrix.DefaultFiller
	}
	if opts.PartitionModel == "" {
		opts.PartitionModel = "LG"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	genomes, err := DiscoverGenomes(opts.Input)
	if err != nil {
		return nil, err
	}

	r := &run{
		opts:   opts,
		log:    logger,
		layout: Layout{Root: opts.Output},
		manifest: &Manifest{
			Domain:     string(opts.Panel.Domain),
			Filler:     string(opts.Filler),
			MinMarkers: opts.MinMarkers,
			Genomes:    genomes,
		},
		serial:   &normalize.Serial{},
		proteins: make(map[string][]fasta.Record, len(genomes)),
	}
	for _, m := range opts.Panel.Markers {
		r.manifest.Markers = append(r.manifest.Markers, Marker{Name: m.Name, Profile: m.Profile})
	}

	if err := r.layout.Prepare(r.manifest.GenomeNames()); err != nil {
		return nil, err
	}

	r.collections = hits.NewCollections(opts.Panel.Names())
	r.hitCounts = coverage.NewHitMatrix(r.manifest.GenomeNames(), opts.Panel.Names())
	return r, nil
}

// Run builds the supermatrix, the coverage report and, with a TreeBuilder, the tree.
func Run(ctx context.Context, opts Options) (*Result, error) {
	r, err := newRun(opts)
	if err != nil {
		return nil, err
	}

	r.log.Info("starting phylogeny run",
		"genomes", len(r.manifest.Genomes),
		"markers", len(r.manifest.Markers),
		"domain", r.manifest.Domain,
		"output", r.layout.Root,
	)

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"gene calling", r.callGenes},
		{"normalization", r.normalize},
		{"marker search", r.search},
		{"hit selection", r.selectHits},
		{"alignment", r.align},
	}
	for _, s := range stages {
		if err := s.fn(ctx); err != nil {
			return nil, errors.Wrapf(err, "%s failed", s.name)
		}
	}

	matrix, err := r.concatenate()
	if err != nil {
		return nil, errors.Wrap(err, "concatenation failed")
	}

	report, low, err := r.report()
	if err != nil {
		return nil, errors.Wrap(err, "coverage report failed")
	}

	if err := r.infer(ctx); err != nil {
		return nil, errors.Wrap(err, "tree inference failed")
	}

	if err := r.manifest.Write(r.layout.Manifest()); err != nil {
		return nil, err
	}

	r.log.Info("finished phylogeny run", "supermatrix", r.layout.Supermatrix(), "width", matrix.Width)
	return &Result{
		Layout:      r.layout,
		Manifest:    r.manifest,
		Matrix:      matrix,
		Coverage:    report,
		LowCoverage: low,
		HitCounts:   r.hitCounts,
	}, nil
}

// CountHits searches every marker in every genome and writes only the
// genome x marker hit count table.
func CountHits(ctx context.Context, opts Options) (*coverage.HitMatrix, error) {
	r, err := newRun(opts)
	if err != nil {
		return nil, err
	}

	for _, fn := range []func(context.Context) error{r.callGenes, r.normalize, r.search, r.countHits} {
		if err := fn(ctx); err != nil {
			return nil, err
		}
	}

	if err := r.writeHitCounts(); err != nil {
		return nil, err
	}
	if err := r.manifest.Write(r.layout.Manifest()); err != nil {
		return nil, err
	}
	return r.hitCounts, nil
}
