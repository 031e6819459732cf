package main

import (
	"fmt"
	"io"
)

// Summarize prints the energy-volume curve and the fitted equilibrium
// properties as a fixed-width table
func Summarize(w io.Writer, fit *EOSFit) {
	fmt.Fprintf(w, "+%12s-+%14s-+\n", "------------", "--------------")
	fmt.Fprintf(w, "|%12s |%14s |\n", "Volume/Å³", "Energy/eV")
	fmt.Fprintf(w, "+%12s-+%14s-+\n", "------------", "--------------")
	for i := range fit.Volumes {
		fmt.Fprintf(w, "|%12.4f |%14.6f |\n", fit.Volumes[i], fit.Energies[i])
	}
	fmt.Fprintf(w, "+%12s-+%14s-+\n", "------------", "--------------")
	fmt.Fprintf(w, "fit      = %s\n", fit.FitType)
	fmt.Fprintf(w, "V0       = %.4f Å³\n", fit.V0)
	fmt.Fprintf(w, "E0       = %.6f eV\n", fit.E0)
	fmt.Fprintf(w, "B0       = %.2f GPa\n", fit.B0)
	fmt.Fprintf(w, "B'       = %.3f\n", fit.BPrime)
}

// ListJobs prints the job table of a project
func ListJobs(w io.Writer, p *Project) error {
	jobs, err := p.Jobs()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%5s %-24s %8s %s\n", "id", "name", "master", "status")
	for _, j := range jobs {
		master := "-"
		if j.MasterID != 0 {
			master = fmt.Sprintf("%d", j.MasterID)
		}
		fmt.Fprintf(w, "%5d %-24s %8s %s\n", j.ID, j.Name, master, j.Status)
	}
	return nil
}
