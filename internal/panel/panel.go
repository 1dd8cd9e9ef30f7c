// Package panel describes the closed set of marker profiles searched, selected,
// concatenated and reported on within one run.
package panel

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Domain picks a marker panel.
type Domain string

const (
	// Archaea is the archaeal ribosomal protein panel.
	Archaea Domain = "archaea"

	// Bacteria is the bacterial ribosomal protein panel.
	Bacteria Domain = "bacteria"

	// Custom is any directory of HMMER3 profiles.
	Custom Domain = "custom"
)

// profileExt is the extension of HMMER3 profile files
const profileExt = ".hmm"

// ribosomal is the set of single-copy ribosomal proteins shared by both domain panels.
var ribosomal = []string{
	"rpL14", "rpL15", "rpL16", "rpL18", "rpL2", "rpL22", "rpL24", "rpL3",
	"rpL4", "rpL5", "rpL6", "rpS10", "rpS17", "rpS19", "rpS3", "rpS8",
}

var suffixes = map[Domain]string{
	Archaea:  "_arch",
	Bacteria: "_bact",
}

// ErrUnknownDomain is returned for a domain without a panel.
var ErrUnknownDomain = errors.New("unknown marker domain")

// Marker is one profile in a panel.
type Marker struct {
	// Name of the marker, ex: "rpL2_arch"
	Name string

	// Profile is the path to the marker's HMMER3 profile
	Profile string
}

// Panel is an ordered, closed list of markers.
type Panel struct {
	Domain  Domain
	Markers []Marker
}

// ParseDomain converts a config value to a Domain.
func ParseDomain(s string) (Domain, error) {
	switch d := Domain(strings.ToLower(strings.TrimSpace(s))); d {
	case Archaea, Bacteria, Custom:
		return d, nil
	default:
		return "", errors.Wrapf(ErrUnknownDomain, "%q", s)
	}
}

// Builtin returns the marker names of a domain's built-in panel, sorted.
func Builtin(d Domain) ([]string, error) {
	suffix, ok := suffixes[d]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDomain, "no built-in panel for %q", d)
	}

	names := make([]string, 0, len(ribosomal))
	for _, r := range ribosomal {
		names = append(names, r+suffix)
	}
	sort.Strings(names)
	return names, nil
}

// Load resolves a panel against the profiles on disk.
//
// Built-in panels expect dir/<domain>/<marker>.hmm for every marker. A custom panel
// is every *.hmm file in dir, in file name order.
func Load(dir string, d Domain) (*Panel, error) {
	if d == Custom {
		return loadCustom(dir)
	}

	names, err := Builtin(d)
	if err != nil {
		return nil, err
	}

	p := &Panel{Domain: d}
	for _, name := range names {
		profile := filepath.Join(dir, string(d), name+profileExt)
		if _, err := os.Stat(profile); err != nil {
			return nil, errors.Wrapf(err, "failed to find profile for marker %s", name)
		}
		p.Markers = append(p.Markers, Marker{Name: name, Profile: profile})
	}

	return p, nil
}

// loadCustom reads every profile in a directory into a panel.
func loadCustom(dir string) (*Panel, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read markers directory %s", dir)
	}

	p := &Panel{Domain: Custom}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != profileExt {
			continue
		}
		p.Markers = append(p.Markers, Marker{
			Name:    strings.TrimSuffix(e.Name(), profileExt),
			Profile: filepath.Join(dir, e.Name()),
		})
	}

	if len(p.Markers) == 0 {
		return nil, errors.Errorf("no %s profiles in %s", profileExt, dir)
	}

	return p, nil
}

// Names returns marker names in panel order.
func (p *Panel) Names() []string {
	names := make([]string, len(p.Markers))
	for i, m := range p.Markers {
		names[i] = m.Name
	}
	return names
}

// ProfileLength returns the model length (the LENG header field) of a HMMER3 profile.
func ProfileLength(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open profile %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "LENG":
			if len(fields) < 2 {
				return 0, errors.Errorf("malformed LENG line in %s", path)
			}
			leng, err := strconv.Atoi(fields[1])
			if err != nil {
				return 0, errors.Wrapf(err, "malformed LENG line in %s", path)
			}
			return leng, nil
		case "HMM":
			// the header is over once the model body starts
			return 0, errors.Errorf("no LENG field in %s", path)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrapf(err, "failed to read profile %s", path)
	}

	return 0, errors.Errorf("no LENG field in %s", path)
}
