package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// compareFile reports whether two files have the same contents
func compareFile(file1, file2 string) bool {
	str1, err := os.ReadFile(file1)
	if err != nil {
		return false
	}
	str2, err := os.ReadFile(file2)
	if err != nil {
		return false
	}
	return string(str1) == string(str2)
}

// fakeEngine skips the test when the stand-in engine cannot run and
// returns its path otherwise
func fakeEngine(t *testing.T) string {
	t.Helper()
	for _, prog := range []string{"sh", "awk"} {
		if _, err := exec.LookPath(prog); err != nil {
			t.Skipf("%s not available", prog)
		}
	}
	abs, err := filepath.Abs("testfiles/fake_lmp")
	require.NoError(t, err)
	return abs
}

func testEngine(t *testing.T) *Lammps {
	db := loadDB(t)
	pot, err := db.FindByName("LJ-Ar")
	require.NoError(t, err)
	return &Lammps{
		Cmd:      "lmp",
		Dir:      t.TempDir(),
		DataFile: "ar.data",
		Pot:      pot,
	}
}

func TestWriteInput(t *testing.T) {
	l := testEngine(t)
	write := filepath.Join(l.Dir, "in.eos")
	// 0.512 scales each box length by exactly 0.8
	if err := l.WriteInput(write, 0.512); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !compareFile(write, "testfiles/right/in.eos") {
		data, _ := os.ReadFile(write)
		t.Errorf("mismatch between %s and testfiles/right/in.eos:\n%s",
			write, data)
	}
}

// every input of a multi-strain static run must carry the potential's
// structure commands, not just the first one
func TestWriteInputRepeated(t *testing.T) {
	pot := &Potential{
		Name: "custom",
		Config: []string{
			"units real",
			"atom_style full",
			"pair_style lj/cut 8.0",
		},
	}
	l := &Lammps{Cmd: "lmp", Dir: t.TempDir(), DataFile: "ar.data", Pot: pot}
	for i := 0; i < 3; i++ {
		file := filepath.Join(l.Dir, fmt.Sprintf("in_%d.eos", i))
		if err := l.WriteInput(file, 0.9); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		lines, err := ReadFile(file)
		require.NoError(t, err)
		got := strings.Join(lines, "\n")
		for _, want := range []string{"units real", "atom_style full"} {
			if !strings.Contains(got, want) {
				t.Errorf("input %d missing %q", i, want)
			}
		}
	}
	if _, err := pot.Params().Get("units"); err != nil {
		t.Errorf("writing inputs mutated the potential table: %v", err)
	}
}

func TestWriteInputAmbiguousUnits(t *testing.T) {
	pot := &Potential{
		Name:   "custom",
		Config: []string{"units real", "units metal", "pair_style lj/cut 8.0"},
	}
	l := &Lammps{Cmd: "lmp", Dir: t.TempDir(), DataFile: "ar.data", Pot: pot}
	err := l.WriteInput(filepath.Join(l.Dir, "in.eos"), 1.0)
	if err == nil {
		t.Error("wanted an error for an ambiguous units entry, got none")
	}
}

func TestReadOut(t *testing.T) {
	tests := []struct {
		file   string
		energy float64
		volume float64
		err    error
	}{
		{
			file:   "testfiles/read/good.out",
			energy: -3.36,
			volume: 1073.741824,
			err:    nil,
		},
		{
			file: "testfiles/read/error.out",
			err:  ErrFileContainsError,
		},
		{
			file: "testfiles/read/blank.out",
			err:  ErrBlankOutput,
		},
		{
			file: "testfiles/read/noenergy.out",
			err:  ErrFinishedButNoEnergy,
		},
		{
			file: "testfiles/read/no.such.out",
			err:  ErrFileNotFound,
		},
	}
	l := testEngine(t)
	for _, test := range tests {
		energy, volume, err := l.ReadOut(test.file)
		if err != test.err {
			t.Errorf("%s: got error %v, wanted %v\n", test.file, err, test.err)
		}
		if test.err != nil {
			continue
		}
		if energy != test.energy {
			t.Errorf("%s: got energy %v, wanted %v\n",
				test.file, energy, test.energy)
		}
		if volume != test.volume {
			t.Errorf("%s: got volume %v, wanted %v\n",
				test.file, volume, test.volume)
		}
	}
}

func TestParseMarker(t *testing.T) {
	energy, volume, err := parseMarker("pbeos= -56.0 16.0")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if energy != -56.0 || volume != 16.0 {
		t.Errorf("got %v, %v, wanted -56, 16\n", energy, volume)
	}
	if _, _, err := parseMarker("pbeos= oops"); err == nil {
		t.Error("wanted an error for a short marker line, got none")
	}
}

func TestInteractiveRun(t *testing.T) {
	l := testEngine(t)
	l.Cmd = fakeEngine(t)
	require.NoError(t, l.StartInteractive())
	if !l.Interactive() {
		t.Fatal("engine not marked interactive after start")
	}
	strains := []float64{0.9, 1.0, 1.1}
	for _, s := range strains {
		energy, volume, err := l.RunStrain(s)
		require.NoError(t, err)
		near(t, "volume", volume, 16*s, 1e-6)
		d := volume - 16
		near(t, "energy", energy, -56+2*d*d/16, 1e-6)
	}
	require.NoError(t, l.InteractiveClose())
	if l.Interactive() {
		t.Error("engine still marked interactive after close")
	}
	if len(l.energies) != len(strains) {
		t.Errorf("got %d energies, wanted %d\n", len(l.energies), len(strains))
	}
}

func TestRunStrainNotInteractive(t *testing.T) {
	l := testEngine(t)
	if _, _, err := l.RunStrain(1.0); err != ErrNotInteractive {
		t.Errorf("got error %v, wanted %v\n", err, ErrNotInteractive)
	}
}

func TestStaticRun(t *testing.T) {
	l := testEngine(t)
	l.Cmd = fakeEngine(t)
	basename := filepath.Join(l.Dir, "eos_0")
	require.NoError(t, l.WriteInput(basename+".in", 0.9))
	require.NoError(t, l.Run(basename))
	energy, volume, err := l.ReadOut(basename + ".out")
	require.NoError(t, err)
	near(t, "volume", volume, 16*0.9, 1e-6)
	d := volume - 16
	near(t, "energy", energy, -56+2*d*d/16, 1e-6)
}
