package main

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func openTestProject(t *testing.T) *Project {
	t.Helper()
	proj, err := OpenProject(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { proj.Close() })
	return proj
}

func TestNewJob(t *testing.T) {
	proj := openTestProject(t)
	job, err := proj.NewJob("eos")
	require.NoError(t, err)
	if job.Status != StatusInitialized {
		t.Errorf("got status %q, wanted %q\n", job.Status, StatusInitialized)
	}
	// creating the same name again returns the existing record
	again, err := proj.NewJob("eos")
	require.NoError(t, err)
	if again.ID != job.ID {
		t.Errorf("got id %d, wanted %d\n", again.ID, job.ID)
	}
}

func TestJobStatusAndMaster(t *testing.T) {
	proj := openTestProject(t)
	master, err := proj.NewJob("eos")
	require.NoError(t, err)
	child, err := proj.NewJob("eos_ref")
	require.NoError(t, err)
	require.NoError(t, child.SetMaster(master.ID))
	require.NoError(t, child.SetStatus(StatusRunning))

	loaded, err := proj.Inspect(child.ID)
	require.NoError(t, err)
	if loaded.MasterID != master.ID {
		t.Errorf("got master %d, wanted %d\n", loaded.MasterID, master.ID)
	}
	if loaded.Status != StatusRunning {
		t.Errorf("got status %q, wanted %q\n", loaded.Status, StatusRunning)
	}

	ids, err := master.ChildIDs()
	require.NoError(t, err)
	if diff := cmp.Diff([]int64{child.ID}, ids); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupRoundTrip(t *testing.T) {
	proj := openTestProject(t)
	job, err := proj.NewJob("eos")
	require.NoError(t, err)

	out := job.Open("output/generic")
	energies := []float64{-55.2, -56.0, -55.8}
	require.NoError(t, out.Put("energy_tot", energies))
	require.NoError(t, out.Put("volume", []float64{17.6, 16.0, 14.4}))

	got, err := out.GetFloats("energy_tot")
	require.NoError(t, err)
	if diff := cmp.Diff(energies, got); diff != "" {
		t.Errorf("energies mismatch (-want +got):\n%s", diff)
	}

	// nested opens join their paths
	nested := job.Open("output").Open("generic")
	if nested.Path() != "output/generic" {
		t.Errorf("got path %q, wanted output/generic\n", nested.Path())
	}
	vols, err := nested.GetFloats("volume")
	require.NoError(t, err)
	if len(vols) != 3 {
		t.Errorf("got %d volumes, wanted 3\n", len(vols))
	}

	if _, err := out.GetFloats("missing"); err == nil {
		t.Error("wanted an error for a missing entry, got none")
	}
}

func TestGroupKeys(t *testing.T) {
	proj := openTestProject(t)
	job, err := proj.NewJob("eos")
	require.NoError(t, err)
	out := job.Open("output")
	require.NoError(t, out.Put("energy", []float64{1}))
	require.NoError(t, out.Put("volume", []float64{2}))
	require.NoError(t, out.Open("generic").Put("energy_tot", []float64{3}))

	keys, err := out.Keys()
	require.NoError(t, err)
	// only direct entries, not nested groups
	if diff := cmp.Diff([]string{"energy", "volume"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupScalars(t *testing.T) {
	proj := openTestProject(t)
	job, err := proj.NewJob("eos")
	require.NoError(t, err)
	g := job.Open("output")
	require.NoError(t, g.Put("fit_type", "polynomial"))
	require.NoError(t, g.Put("equilibrium_volume", 16.0))
	require.NoError(t, g.Put("fit_order", 3))

	s, err := g.GetString("fit_type")
	require.NoError(t, err)
	require.Equal(t, "polynomial", s)
	f, err := g.GetFloat("equilibrium_volume")
	require.NoError(t, err)
	require.Equal(t, 16.0, f)
	i, err := g.GetInt("fit_order")
	require.NoError(t, err)
	require.Equal(t, 3, i)
}
