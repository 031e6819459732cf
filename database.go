package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	potentialsFile = "potentials_lammps.csv"
	defaultsFile   = "potentials_lammps_default.csv"
)

// PotentialDB indexes the potentials shipped in the resource paths.
// selected carries the elements fixed so far by ForElement chaining.
type PotentialDB struct {
	pots     []Potential
	defaults map[string]string
	selected []string
}

// LoadPotentialDB locates and parses the potential table, and the
// defaults table when one is present, in the resource paths
func LoadPotentialDB(s *Settings) (*PotentialDB, error) {
	path, err := findResourceFile(s, potentialsFile)
	if err != nil {
		return nil, err
	}
	db := &PotentialDB{defaults: make(map[string]string)}
	db.pots, err = readPotentialCSV(path)
	if err != nil {
		return nil, err
	}
	if dpath, err := findResourceFile(s, defaultsFile); err == nil {
		db.defaults, err = readDefaultsCSV(dpath)
		if err != nil {
			return nil, err
		}
	}
	return db, nil
}

func findResourceFile(s *Settings, name string) (string, error) {
	for _, res := range s.ResourcePaths {
		for _, dir := range []string{
			filepath.Join(res, "lammps", "potentials"),
			filepath.Join(res, "lammps"),
			res,
		} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%s not found in resource paths %v", name, s.ResourcePaths)
}

// readPotentialCSV parses the potential table. Expected columns are
// Config, Filename, Model, Name, and Species, in any order; Config,
// Filename, and Species cells are bracketed lists.
func readPotentialCSV(path string) ([]Potential, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: empty potential table", path)
	}
	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, want := range []string{"Config", "Filename", "Model", "Name", "Species"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("%s: missing %s column", path, want)
		}
	}
	pots := make([]Potential, 0, len(records)-1)
	for _, rec := range records[1:] {
		pots = append(pots, Potential{
			Name:      rec[cols["Name"]],
			Model:     rec[cols["Model"]],
			Species:   ParseListCell(rec[cols["Species"]]),
			Config:    ParseListCell(rec[cols["Config"]]),
			Filenames: ParseListCell(rec[cols["Filename"]]),
		})
	}
	return pots, nil
}

// readDefaultsCSV parses the defaults table mapping a sorted,
// underscore-joined element combination to a potential name
func readDefaultsCSV(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	defaults := make(map[string]string)
	for i, rec := range records {
		if i == 0 && strings.EqualFold(rec[0], "Species") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s: malformed defaults row %v", path, rec)
		}
		defaults[rec[0]] = rec[1]
	}
	return defaults, nil
}

// ParseListCell decodes a bracketed list cell like ['Al', 'H'] into
// its elements. Embedded "\n" escapes, common in Config cells, and
// literal trailing newlines are stripped. A cell without brackets is
// a single element.
func ParseListCell(cell string) (items []string) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "[]" {
		return nil
	}
	if cell[0] != '[' || cell[len(cell)-1] != ']' {
		if item := cleanListItem(cell); item != "" {
			return []string{item}
		}
		return nil
	}
	var (
		buf     strings.Builder
		inquote bool
		quote   byte
	)
	for i := 1; i < len(cell)-1; i++ {
		c := cell[i]
		switch {
		case inquote && c == quote:
			inquote = false
		case inquote:
			buf.WriteByte(c)
		case c == '\'' || c == '"':
			inquote = true
			quote = c
		case c == ',':
			if item := cleanListItem(buf.String()); item != "" {
				items = append(items, item)
			}
			buf.Reset()
		case c == ' ':
		default:
			buf.WriteByte(c)
		}
	}
	if item := cleanListItem(buf.String()); item != "" {
		items = append(items, item)
	}
	return
}

func cleanListItem(item string) string {
	item = strings.ReplaceAll(item, `\n`, "")
	return strings.TrimRight(strings.TrimSpace(item), "\n")
}

// List returns the names of every potential visible through the
// current selection
func (db *PotentialDB) List() (names []string) {
	for _, pot := range db.find(nil) {
		names = append(names, pot.Name)
	}
	return
}

// Find returns the potentials covering all of the given elements on
// top of any selection fixed by ForElement
func (db *PotentialDB) Find(elements ...string) []Potential {
	return db.find(elements)
}

func (db *PotentialDB) find(elements []string) []Potential {
	want := mergeElements(db.selected, elements)
	var found []Potential
	for _, pot := range db.pots {
		if containsAll(pot.Species, want) {
			found = append(found, pot)
		}
	}
	return found
}

// FindByName returns the potential called name
func (db *PotentialDB) FindByName(name string) (*Potential, error) {
	for i := range db.pots {
		if db.pots[i].Name == name {
			pot := db.pots[i]
			return &pot, nil
		}
	}
	return nil, fmt.Errorf("potential not found: %s; list the available "+
		"potentials with pots list", name)
}

// ForElement narrows the database to potentials covering el, keeping
// the defaults table so a chained Default still works
func (db *PotentialDB) ForElement(el string) *PotentialDB {
	return &PotentialDB{
		pots:     db.find([]string{el}),
		defaults: db.defaults,
		selected: mergeElements(db.selected, []string{el}),
	}
}

// Default returns the default potential for the selected elements,
// or nil when no defaults table is loaded
func (db *PotentialDB) Default() (*Potential, error) {
	return db.FindDefault()
}

// FindDefault returns the default potential for the union of the
// selected elements and the given ones
func (db *PotentialDB) FindDefault(elements ...string) (*Potential, error) {
	if len(db.defaults) == 0 {
		return nil, nil
	}
	key := strings.Join(mergeElements(db.selected, elements), "_")
	name, ok := db.defaults[key]
	if !ok {
		return nil, fmt.Errorf("no default potential for %s", key)
	}
	return db.FindByName(name)
}

// mergeElements deduplicates and sorts the union of a and b
func mergeElements(a, b []string) []string {
	set := make(map[string]bool)
	for _, e := range a {
		set[e] = true
	}
	for _, e := range b {
		set[e] = true
	}
	merged := make([]string, 0, len(set))
	for e := range set {
		merged = append(merged, e)
	}
	sort.Strings(merged)
	return merged
}

func containsAll(species, want []string) bool {
	for _, w := range want {
		found := false
		for _, s := range species {
			if s == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
