package supermatrix

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/fasta"
)

// aligned makes an alignment where every genome's row is width copies of a letter
func aligned(t *testing.T, marker string, width int, genomes ...string) *Alignment {
	t.Helper()
	var records []fasta.Record
	for i, g := range genomes {
		records = append(records, fasta.Record{ID: g, Seq: strings.Repeat(string(rune('A'+i)), width)})
	}
	a, err := NewAlignment(marker, records)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func Test_Build_scenarioA(t *testing.T) {
	rpL2 := aligned(t, "rpL2_arch", 140, "g1", "g2")
	rpS3 := aligned(t, "rpS3_arch", 95, "g1", "g3")

	m, err := Build([]*Alignment{rpL2, rpS3}, DefaultFiller)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if m.Width != 235 {
		t.Errorf("Build().Width = %d, want 235", m.Width)
	}
	if want := []string{"g1", "g2", "g3"}; strings.Join(m.Genomes, ",") != strings.Join(want, ",") {
		t.Errorf("Build().Genomes = %v, want %v", m.Genomes, want)
	}
	for _, g := range m.Genomes {
		if len(m.Rows[g]) != 235 {
			t.Errorf("row %s has width %d, want 235", g, len(m.Rows[g]))
		}
	}

	tests := []struct {
		genome string
		marker string
		want   string
	}{
		{"g1", "rpL2_arch", strings.Repeat("A", 140)},
		{"g1", "rpS3_arch", strings.Repeat("A", 95)},
		{"g2", "rpL2_arch", strings.Repeat("B", 140)},
		{"g2", "rpS3_arch", strings.Repeat("?", 95)},
		{"g3", "rpL2_arch", strings.Repeat("?", 140)},
		{"g3", "rpS3_arch", strings.Repeat("B", 95)},
	}
	for _, tt := range tests {
		t.Run(tt.genome+"/"+tt.marker, func(t *testing.T) {
			got, err := m.Slice(tt.genome, tt.marker)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Slice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_BuildWithGenomes_allFiller(t *testing.T) {
	rpL2 := aligned(t, "rpL2_arch", 10, "g1")
	empty := Placeholder("rpL3_arch", 7)

	m, err := BuildWithGenomes([]*Alignment{rpL2, empty}, []string{"g1", "g4"}, DefaultFiller)
	if err != nil {
		t.Fatalf("BuildWithGenomes() error = %v", err)
	}

	if m.Width != 17 {
		t.Errorf("Width = %d, want 17", m.Width)
	}
	if want := strings.Repeat("?", 17); m.Rows["g4"] != want {
		t.Errorf("row g4 = %q, want %q", m.Rows["g4"], want)
	}
	if got, _ := m.Slice("g1", "rpL3_arch"); got != strings.Repeat("?", 7) {
		t.Errorf("g1 slice over a marker without hits = %q", got)
	}

	if _, err := BuildWithGenomes([]*Alignment{rpL2}, []string{"g2"}, DefaultFiller); err == nil {
		t.Error("BuildWithGenomes() should reject genomes outside the list")
	}
	if _, err := BuildWithGenomes([]*Alignment{rpL2}, []string{"g1", "g1"}, DefaultFiller); err == nil {
		t.Error("BuildWithGenomes() should reject a duplicated genome")
	}
}

func Test_Build_errors(t *testing.T) {
	tests := []struct {
		name       string
		alignments []*Alignment
		wantErr    error
	}{
		{"no alignments", nil, ErrEmptyMarkerSet},
		{"zero width", []*Alignment{Placeholder("rpL2_arch", 0)}, ErrEmptyMarkerSet},
		{"duplicate marker", []*Alignment{Placeholder("rpL2_arch", 3), Placeholder("rpL2_arch", 3)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.alignments, DefaultFiller)
			if err == nil {
				t.Fatal("Build() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func Test_NewAlignment(t *testing.T) {
	tests := []struct {
		name    string
		records []fasta.Record
		wantErr bool
		isEmpty bool
	}{
		{"uniform", []fasta.Record{{ID: "g1", Seq: "MK-V"}, {ID: "g2", Seq: "M-KV"}}, false, false},
		{"ragged", []fasta.Record{{ID: "g1", Seq: "MK-V"}, {ID: "g2", Seq: "MKV"}}, true, false},
		{"duplicate genome", []fasta.Record{{ID: "g1", Seq: "MK"}, {ID: "g1", Seq: "MV"}}, true, false},
		{"width zero", []fasta.Record{{ID: "g1", Seq: ""}}, true, true},
		{"no records", nil, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAlignment("rpS3_arch", tt.records)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAlignment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.isEmpty && !errors.Is(err, ErrEmptyMarkerSet) {
				t.Errorf("NewAlignment() error = %v, want ErrEmptyMarkerSet", err)
			}
			if err == nil && a.Width != len(tt.records[0].Seq) {
				t.Errorf("NewAlignment().Width = %d", a.Width)
			}
		})
	}
}

func Test_Matrix_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "supermatrix.afa")

	m, err := Build([]*Alignment{aligned(t, "rpL2_arch", 4, "g1", "g2"), aligned(t, "rpS3_arch", 3, "g2")}, DefaultFiller)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, ">") && strings.ContainsAny(line, " \t") {
			t.Errorf("header %q carries more than the genome id", line)
		}
	}

	a, err := ReadAlignment("supermatrix", path)
	if err != nil {
		t.Fatalf("ReadAlignment() error = %v", err)
	}
	if a.Rows["g1"] != "AAAA???" || a.Rows["g2"] != "BBBBAAA" {
		t.Errorf("written rows = %v", a.Rows)
	}
}

func Test_Matrix_WritePartitions(t *testing.T) {
	m, err := Build([]*Alignment{Placeholder("rpL2_arch", 140), Placeholder("rpS3_arch", 95)}, DefaultFiller)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := m.WritePartitions(&sb, "LG"); err != nil {
		t.Fatal(err)
	}

	want := "LG, rpL2_arch = 1-140\nLG, rpS3_arch = 141-235\n"
	if sb.String() != want {
		t.Errorf("WritePartitions() = %q, want %q", sb.String(), want)
	}
}
