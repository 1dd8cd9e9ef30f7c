package pipeline

import (
	"context"
	"os"
	"strings"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/coverage"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/hits"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/normalize"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/panel"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/supermatrix"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// group returns an errgroup bounded by the run's thread count.
func (r *run) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Threads)
	return g, ctx
}

// proteinSource is the protein FASTA of a genome before normalization.
func (r *run) proteinSource(g Genome) string {
	if g.Format == normalize.Nucleotide {
		return r.layout.Genes(g.Name)
	}
	return g.Source
}

// callGenes predicts proteins for every nucleotide genome.
func (r *run) callGenes(ctx context.Context) error {
	var todo []Genome
	for _, g := range r.manifest.Genomes {
		if g.Format == normalize.Nucleotide {
			todo = append(todo, g)
		}
	}
	if len(todo) == 0 {
		return nil
	}
	if r.opts.GeneCaller == nil {
		return errors.Errorf("%d nucleotide genomes but no gene caller", len(todo))
	}

	r.log.Info("calling genes", "genomes", len(todo))
	incr, done := r.track("calling genes", len(todo))
	g, gctx := r.group(ctx)
	for _, genome := range todo {
		genome := genome
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := r.opts.GeneCaller.CallGenes(gctx, genome.Source, r.layout.Genes(genome.Name)); err != nil {
				return errors.Wrapf(err, "failed to call genes of %s", genome.Name)
			}
			r.log.Debug("called genes", "genome", genome.Name)
			incr()
			return nil
		})
	}

	err := g.Wait()
	done(err)
	return err
}

// normalize renames every genome's proteins. It runs in manifest order so
// serial numbers are the same from run to run.
func (r *run) normalize(ctx context.Context) error {
	n := normalize.New(r.serial)
	for i := range r.manifest.Genomes {
		if err := ctx.Err(); err != nil {
			return err
		}

		g := &r.manifest.Genomes[i]
		records, err := n.NormalizeFile(g.Name, r.proteinSource(*g), r.layout.Proteins(g.Name))
		if err != nil {
			return err
		}

		g.Proteins = len(records)
		r.proteins[g.Name] = records
		r.log.Debug("normalized proteins", "genome", g.Name, "proteins", humanize.Comma(int64(len(records))))
	}

	r.log.Info("normalized proteins", "genomes", len(r.manifest.Genomes))
	return nil
}

// search runs every marker profile against every genome.
func (r *run) search(ctx context.Context) error {
	total := len(r.manifest.Genomes) * len(r.opts.Panel.Markers)
	r.log.Info("searching markers", "searches", humanize.Comma(int64(total)))

	incr, done := r.track("searching markers", total)
	g, gctx := r.group(ctx)
	for _, genome := range r.manifest.Genomes {
		for _, m := range r.opts.Panel.Markers {
			genome, m := genome, m
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				table := r.layout.HitTable(genome.Name, m.Name)
				if err := r.opts.Searcher.Search(gctx, m.Profile, r.layout.Proteins(genome.Name), table); err != nil {
					return errors.Wrapf(err, "failed to search %s in %s", m.Name, genome.Name)
				}
				incr()
				return nil
			})
		}
	}

	err := g.Wait()
	done(err)
	return err
}

// selectHits picks one sequence per genome and marker and fills the
// per-marker collections. Genomes run concurrently; collections lock per marker.
func (r *run) selectHits(ctx context.Context) error {
	g, gctx := r.group(ctx)
	for _, genome := range r.manifest.Genomes {
		genome := genome
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			idx, err := hits.NewIndex(r.proteins[genome.Name])
			if err != nil {
				return errors.Wrapf(err, "failed to index proteins of %s", genome.Name)
			}

			for _, m := range r.opts.Panel.Markers {
				table, err := hits.ReadTable(r.layout.HitTable(genome.Name, m.Name))
				if err != nil {
					return err
				}
				if err := r.hitCounts.Set(genome.Name, m.Name, len(table)); err != nil {
					return err
				}

				sel, ok, err := hits.Select(genome.Name, m.Name, table, idx)
				if err != nil {
					return err
				}
				if !ok {
					r.log.Debug("no hit", "genome", genome.Name, "marker", m.Name)
					continue
				}
				if err := r.collections.Add(sel); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if _, err := r.collections.WriteAll(r.layout.Markers(), r.manifest.GenomeNames()); err != nil {
		return err
	}
	for i := range r.manifest.Markers {
		c, err := r.collections.Get(r.manifest.Markers[i].Name)
		if err != nil {
			return err
		}
		r.manifest.Markers[i].Genomes = c.Len()
	}

	r.log.Info("selected marker hits", "markers", len(r.manifest.Markers))
	return nil
}

// countHits only records the size of each hit table.
func (r *run) countHits(ctx context.Context) error {
	for _, genome := range r.manifest.Genomes {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, m := range r.opts.Panel.Markers {
			table, err := hits.ReadTable(r.layout.HitTable(genome.Name, m.Name))
			if err != nil {
				return err
			}
			if err := r.hitCounts.Set(genome.Name, m.Name, len(table)); err != nil {
				return err
			}
		}
	}
	return nil
}

// align aligns each marker's collection. A marker without any sequences is not
// aligned; it gets a placeholder as wide as its profile so every genome still
// receives filler for it.
func (r *run) align(ctx context.Context) error {
	if r.opts.Aligner == nil {
		return errors.New("no aligner")
	}

	markers := r.opts.Panel.Markers
	r.alignments = make([]*supermatrix.Alignment, len(markers))

	var toAlign int
	for i, m := range markers {
		c, err := r.collections.Get(m.Name)
		if err != nil {
			return err
		}
		if c.Len() > 0 {
			toAlign++
			continue
		}

		width, err := panel.ProfileLength(m.Profile)
		if err != nil {
			return errors.Wrapf(supermatrix.ErrEmptyMarkerSet, "no hits for %s and no profile length: %v", m.Name, err)
		}
		r.alignments[i] = supermatrix.Placeholder(m.Name, width)
		r.manifest.Markers[i].Placeholder = true
		r.log.Warn("no genome has a hit for marker", "marker", m.Name, "filler", width)
	}

	r.log.Info("aligning markers", "markers", toAlign)
	incr, done := r.track("aligning markers", toAlign)
	g, gctx := r.group(ctx)
	for i, m := range markers {
		if r.alignments[i] != nil {
			continue
		}

		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out := r.layout.Alignment(m.Name)
			if err := r.opts.Aligner.Align(gctx, r.layout.Collection(m.Name), out); err != nil {
				return errors.Wrapf(err, "failed to align %s", m.Name)
			}

			a, err := supermatrix.ReadAlignment(m.Name, out)
			if err != nil {
				return err
			}

			// the aligner must keep exactly the genomes it was given
			c, _ := r.collections.Get(m.Name)
			if got, want := a.Genomes(), c.Genomes(); strings.Join(got, ",") != strings.Join(want, ",") {
				return errors.Errorf("alignment of %s has genomes %v, expected %v", m.Name, got, want)
			}

			r.alignments[i] = a
			incr()
			return nil
		})
	}

	err := g.Wait()
	done(err)
	return err
}

// concatenate builds and writes the supermatrix over every genome of the run.
func (r *run) concatenate() (*supermatrix.Matrix, error) {
	m, err := supermatrix.BuildWithGenomes(r.alignments, r.manifest.GenomeNames(), r.opts.Filler)
	if err != nil {
		return nil, err
	}

	if err := m.WriteFile(r.layout.Supermatrix()); err != nil {
		return nil, err
	}
	if err := m.WritePartitionsFile(r.layout.Partitions(), r.opts.PartitionModel); err != nil {
		return nil, err
	}

	for i, b := range m.Blocks {
		r.manifest.Markers[i].Width = b.Width()
	}
	r.manifest.Width = m.Width

	r.log.Info("built supermatrix",
		"genomes", len(m.Genomes),
		"markers", len(m.Blocks),
		"columns", humanize.Comma(int64(m.Width)),
	)
	return m, nil
}

// report tallies marker coverage from the collections and writes the low
// coverage report and the hit count table. Low coverage is only a warning.
func (r *run) report() (coverage.Report, []coverage.Record, error) {
	rep := coverage.Tally(r.collections, r.manifest.GenomeNames())
	low := rep.Below(r.opts.MinMarkers)

	f, err := os.Create(r.layout.LowCoverage())
	if err != nil {
		return rep, nil, errors.Wrap(err, "failed to create coverage report")
	}
	if err := coverage.WriteReport(f, low, r.opts.MinMarkers); err != nil {
		f.Close()
		return rep, nil, errors.Wrap(err, "failed to write coverage report")
	}
	if err := f.Close(); err != nil {
		return rep, nil, err
	}

	for i := range r.manifest.Genomes {
		n, _ := rep.Count(r.manifest.Genomes[i].Name)
		r.manifest.Genomes[i].Markers = n
	}
	r.manifest.LowCoverage = low

	for _, rec := range low {
		r.log.Warn("genome has too few markers", "genome", rec.Genome, "markers", rec.Markers, "cutoff", r.opts.MinMarkers)
	}

	return rep, low, r.writeHitCounts()
}

// writeHitCounts writes the genome x marker hit count table.
func (r *run) writeHitCounts() error {
	f, err := os.Create(r.layout.HitCounts())
	if err != nil {
		return errors.Wrap(err, "failed to create hit count table")
	}
	if err := r.hitCounts.WriteCSV(f); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to write hit count table")
	}
	return f.Close()
}

// infer runs tree inference on the supermatrix, if a TreeBuilder is set.
func (r *run) infer(ctx context.Context) error {
	if r.opts.TreeBuilder == nil {
		r.log.Info("skipping tree inference")
		return nil
	}

	r.log.Info("inferring tree", "dir", r.layout.Tree())
	return r.opts.TreeBuilder.Infer(ctx, r.layout.Supermatrix(), r.layout.Partitions(), r.layout.Tree())
}
