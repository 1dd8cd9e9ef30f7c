package normalize

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/fasta"
)

func Test_Detect(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    Format
		wantErr bool
	}{
		{"protein", "genomes/g1.faa", Protein, false},
		{"nucleotide", "genomes/g1.fna", Nucleotide, false},
		{"upper case extension", "genomes/g1.FAA", Protein, false},
		{"generic fasta", "genomes/g1.fasta", 0, true},
		{"no extension", "genomes/g1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Detect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnsupportedInputFormat) {
				t.Errorf("Detect() error = %v, want ErrUnsupportedInputFormat", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_GenomeName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/genomes/GCA_000008085.faa", "GCA_000008085"},
		{"g1.fna", "g1"},
		{"dir/Methanosarcina.sp.faa", "Methanosarcina.sp"},
	}
	for _, tt := range tests {
		if got := GenomeName(tt.path); got != tt.want {
			t.Errorf("GenomeName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func Test_Normalize(t *testing.T) {
	n := New(&Serial{})

	g1 := n.Normalize("g1", []fasta.Record{
		{ID: "contig_1 # 3 # 300", Seq: "MKV*"},
		{ID: "contig_2", Seq: "*"},
		{ID: "contig_3", Seq: "MA*L"},
	})
	want1 := []fasta.Record{
		{ID: "g1_00001", Seq: "MKV"},
		{ID: "g1_00002", Seq: "MAL"},
	}
	if !reflect.DeepEqual(g1, want1) {
		t.Errorf("Normalize(g1) = %v, want %v", g1, want1)
	}

	// the serial continues across genomes
	g2 := n.Normalize("g2", []fasta.Record{{ID: "x", Seq: "MMM"}})
	want2 := []fasta.Record{{ID: "g2_00003", Seq: "MMM"}}
	if !reflect.DeepEqual(g2, want2) {
		t.Errorf("Normalize(g2) = %v, want %v", g2, want2)
	}
}

func Test_Serial_concurrent(t *testing.T) {
	s := &Serial{}
	seen := make(map[int]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v := s.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 800 {
		t.Errorf("Serial handed out %d unique values, want 800", len(seen))
	}
}

func Test_NormalizeFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "g1.faa")
	out := filepath.Join(dir, "g1.normalized.faa")
	if err := os.WriteFile(in, []byte(">a desc\nMKV*\n>b\nMAL\n"), 0644); err != nil {
		t.Fatal(err)
	}

	n := New(&Serial{})
	got, err := n.NormalizeFile("g1", in, out)
	if err != nil {
		t.Fatalf("NormalizeFile() error = %v", err)
	}

	written, err := fasta.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, written) {
		t.Errorf("NormalizeFile() returned %v but wrote %v", got, written)
	}
	if got[0].ID != "g1_00001" || got[0].Seq != "MKV" {
		t.Errorf("NormalizeFile() first record = %v", got[0])
	}

	empty := filepath.Join(dir, "empty.faa")
	if err := os.WriteFile(empty, []byte(">a\n*\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := n.NormalizeFile("empty", empty, filepath.Join(dir, "e.out.faa")); err == nil {
		t.Error("NormalizeFile() should fail for a genome without proteins")
	}
}
