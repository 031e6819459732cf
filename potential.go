package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// structureKeys are the engine commands that describe the simulation
// box rather than the potential. They come out of the Config block
// before it is written into a control file that sets up its own
// structure.
var structureKeys = []string{"units", "atom_style", "dimension"}

// Potential is one interatomic potential: its database metadata plus
// the engine commands that activate it
type Potential struct {
	Name      string
	Model     string
	Species   []string
	Config    []string
	Filenames []string

	params *Params
}

// Params parses the Config block into a key/value table. The table is
// built once and shared by later calls.
func (pot *Potential) Params() *Params {
	if pot.params == nil {
		pot.params = NewParams()
		pot.params.LoadString(joinConfig(pot.Config))
	}
	return pot.params
}

func joinConfig(config []string) string {
	var out string
	for _, line := range config {
		out += line
		if len(line) == 0 || line[len(line)-1] != '\n' {
			out += "\n"
		}
	}
	return out
}

// RemoveStructureBlock drops the box-description commands from the
// table, leaving only the potential activation lines
func (p *Params) RemoveStructureBlock() {
	p.RemoveKeys(structureKeys)
}

// ElementList returns the species covered by the potential, in
// pair_coeff order
func (pot *Potential) ElementList() []string {
	return pot.Species
}

// Files resolves the potential's filenames to absolute paths.
// Absolute names pass through; relative names are searched for under
// each resource path, preferring a lammps/potentials subdirectory
// when one exists. All of the files must be found.
func (pot *Potential) Files(s *Settings) ([]string, error) {
	if len(pot.Filenames) == 0 {
		return nil, nil
	}
	found := make([]string, 0, len(pot.Filenames))
	for _, name := range pot.Filenames {
		if name == "" {
			continue
		}
		if filepath.IsAbs(name) {
			found = append(found, name)
			continue
		}
		for _, res := range s.ResourcePaths {
			if sub := filepath.Join(res, "lammps", "potentials"); isDir(sub) {
				res = sub
			}
			path := filepath.Join(res, name)
			if _, err := os.Stat(path); err == nil {
				found = append(found, path)
				break
			}
		}
	}
	want := 0
	for _, name := range pot.Filenames {
		if name != "" {
			want++
		}
	}
	if len(found) != want {
		return nil, fmt.Errorf("unable to locate the files for potential %s", pot.Name)
	}
	return found, nil
}

// CopyFiles copies the resolved potential files into workdir
func (pot *Potential) CopyFiles(s *Settings, workdir string) error {
	files, err := pot.Files(s)
	if err != nil {
		return err
	}
	for _, src := range files {
		if err := copyFile(src, filepath.Join(workdir, filepath.Base(src))); err != nil {
			return err
		}
	}
	return nil
}

// ToStore writes the potential's fields under a "potential" group
func (pot *Potential) ToStore(g *Group) error {
	h := g.Open("potential")
	for _, kv := range []struct {
		key string
		val interface{}
	}{
		{"Name", pot.Name},
		{"Model", pot.Model},
		{"Species", pot.Species},
		{"Config", pot.Config},
		{"Filename", pot.Filenames},
	} {
		if err := h.Put(kv.key, kv.val); err != nil {
			return err
		}
	}
	return nil
}

// PotentialFromStore reads a potential previously written with
// ToStore
func PotentialFromStore(g *Group) (*Potential, error) {
	h := g.Open("potential")
	var (
		pot Potential
		err error
	)
	if pot.Name, err = h.GetString("Name"); err != nil {
		return nil, err
	}
	if pot.Model, err = h.GetString("Model"); err != nil {
		return nil, err
	}
	if pot.Species, err = h.GetStrings("Species"); err != nil {
		return nil, err
	}
	if pot.Config, err = h.GetStrings("Config"); err != nil {
		return nil, err
	}
	if pot.Filenames, err = h.GetStrings("Filename"); err != nil {
		return nil, err
	}
	return &pot, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
