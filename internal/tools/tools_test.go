package tools

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeBinary writes a shell script that records its arguments to argsFile and
// exits with code
func fakeBinary(t *testing.T, dir, name string, code int) (bin, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a unix shell")
	}

	bin = filepath.Join(dir, name)
	argsFile = filepath.Join(dir, name+".args")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\necho " + name + " says hi\nexit " + string(rune('0'+code)) + "\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return bin, argsFile
}

func readArgs(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(string(b))
}

func Test_runners(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	tests := []struct {
		name string
		call func(bin string) error
		want string
	}{
		{
			"prodigal",
			func(bin string) error { return Prodigal{Path: bin}.CallGenes(ctx, "g1.fna", "g1.faa") },
			"-q -i g1.fna -a g1.faa -o " + os.DevNull,
		},
		{
			"hmmsearch",
			func(bin string) error {
				return HMMSearch{Path: bin, CPUs: 2}.Search(ctx, "rpL2_arch.hmm", "g1.faa", "g1-rpL2_arch.tbl")
			},
			"--cut_tc --cpu 2 --tblout g1-rpL2_arch.tbl -o " + os.DevNull + " rpL2_arch.hmm g1.faa",
		},
		{
			"muscle",
			func(bin string) error { return Muscle{Path: bin}.Align(ctx, "rpL2_arch.faa", "rpL2_arch.afa") },
			"-quiet -in rpL2_arch.faa -out rpL2_arch.afa",
		},
		{
			"fasttree",
			func(bin string) error { return FastTree{Path: bin}.Infer(ctx, "supermatrix.afa", "", "tree") },
			"-quiet -log tree/fasttree.log -out tree/tree.nwk supermatrix.afa",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, argsFile := fakeBinary(t, dir, tt.name, 0)
			if err := tt.call(bin); err != nil {
				t.Fatalf("%s error = %v", tt.name, err)
			}
			if got := readArgs(t, argsFile); got != tt.want {
				t.Errorf("%s args = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func Test_RAxML(t *testing.T) {
	dir := t.TempDir()
	bin, argsFile := fakeBinary(t, dir, "raxml", 0)

	r := RAxML{Path: bin, Threads: 1}
	if err := r.Infer(context.Background(), "supermatrix.afa", "supermatrix.partitions", dir); err != nil {
		t.Fatalf("Infer() error = %v", err)
	}

	got := readArgs(t, argsFile)
	for _, want := range []string{"-T 2", "-# 100", "-p 12345", "-w " + dir, "-q supermatrix.partitions"} {
		if !strings.Contains(got, want) {
			t.Errorf("raxml args %q missing %q", got, want)
		}
	}
}

func Test_run_failure(t *testing.T) {
	dir := t.TempDir()
	bin, _ := fakeBinary(t, dir, "muscle", 1)

	err := Muscle{Path: bin}.Align(context.Background(), "in.faa", "out.afa")
	if err == nil {
		t.Fatal("Align() should fail when muscle exits non-zero")
	}
	if !strings.Contains(err.Error(), "muscle says hi") {
		t.Errorf("error %q does not carry the tool's output", err)
	}
}
