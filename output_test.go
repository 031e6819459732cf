package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	fit := &EOSFit{
		FitType:  FitPolynomial,
		V0:       16.1234,
		E0:       -56.0,
		B0:       76.5,
		BPrime:   4.2,
		Volumes:  []float64{15, 16, 17},
		Energies: []float64{-55.75, -56, -55.75},
	}
	var buf strings.Builder
	Summarize(&buf, fit)
	out := buf.String()
	for _, want := range []string{
		"Volume", "Energy",
		"16.1234", "-56.000000", "76.50 GPa", "4.200",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	// header row plus one row per point, three separators each
	if got := strings.Count(out, "|"); got != 12 {
		t.Errorf("got %d column separators, wanted 12\n", got)
	}
}

func TestListJobs(t *testing.T) {
	proj := openTestProject(t)
	master, err := proj.NewJob("eos")
	require.NoError(t, err)
	child, err := proj.NewJob("eos_ref")
	require.NoError(t, err)
	require.NoError(t, child.SetMaster(master.ID))

	var buf strings.Builder
	require.NoError(t, ListJobs(&buf, proj))
	out := buf.String()
	for _, want := range []string{"eos", "eos_ref", StatusInitialized} {
		if !strings.Contains(out, want) {
			t.Errorf("job table missing %q:\n%s", want, out)
		}
	}
}
