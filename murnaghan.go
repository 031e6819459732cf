package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
)

// Run modes for the master job
const (
	ModeInteractive = "interactive"
	ModeStatic      = "static"
)

// Murnaghan is the equation-of-state master job: it drives the engine
// over a list of volume strains, collects the energy-volume curve
// from the child job's stored output, and fits it
type Murnaghan struct {
	Project *Project
	Job     *Job
	Engine  *Lammps

	Strains  []float64
	FitType  string
	FitOrder int

	Fit *EOSFit
}

// StrainList builds the volume scale factors, evenly spaced over
// [1-volRange, 1+volRange]
func StrainList(volRange float64, numPoints int) []float64 {
	if numPoints < 2 {
		return []float64{1.0}
	}
	return floats.Span(make([]float64, numPoints), 1-volRange, 1+volRange)
}

// NewMurnaghan creates the master job record in the project and wires
// the engine to it
func NewMurnaghan(p *Project, name string, engine *Lammps) (*Murnaghan, error) {
	job, err := p.NewJob(name)
	if err != nil {
		return nil, err
	}
	return &Murnaghan{
		Project:  p,
		Job:      job,
		Engine:   engine,
		FitType:  FitPolynomial,
		FitOrder: 3,
	}, nil
}

// RefJobInitialize attaches the engine to a child job record. When
// the master already has children, the last one is reused so a rerun
// picks up the same reference job.
func (m *Murnaghan) RefJobInitialize() error {
	children, err := m.Job.ChildIDs()
	if err != nil {
		return err
	}
	var job *Job
	if len(children) > 0 {
		job, err = m.Project.Inspect(children[len(children)-1])
	} else {
		job, err = m.Project.NewJob(m.Job.Name + "_ref")
	}
	if err != nil {
		return err
	}
	if job.MasterID == 0 {
		if err := job.SetMaster(m.Job.ID); err != nil {
			return err
		}
	}
	m.Engine.Job = job
	return nil
}

// RunInteractive drives a single live engine process through the
// strain list, closes it, and collects
func (m *Murnaghan) RunInteractive() error {
	if err := m.RefJobInitialize(); err != nil {
		return err
	}
	if err := m.Job.SetStatus(StatusRunning); err != nil {
		return err
	}
	if _, err := m.Engine.Workdir(); err != nil {
		return err
	}
	if err := m.Engine.StartInteractive(); err != nil {
		return err
	}
	if err := m.Engine.Job.SetStatus(StatusRunning); err != nil {
		return err
	}
	for _, strain := range m.Strains {
		if _, _, err := m.Engine.RunStrain(strain); err != nil {
			m.Engine.InteractiveClose()
			m.Job.SetStatus(StatusAborted)
			return fmt.Errorf("running strain %.4f: %w", strain, err)
		}
	}
	if err := m.Engine.InteractiveClose(); err != nil {
		m.Job.SetStatus(StatusAborted)
		return err
	}
	if err := m.Job.SetStatus(StatusCollect); err != nil {
		return err
	}
	return m.CollectOutput()
}

// RunStatic evaluates each strain as its own engine invocation and
// child job. Children that already finished are skipped, so an
// interrupted run resumes where it left off.
func (m *Murnaghan) RunStatic() error {
	if err := m.Job.SetStatus(StatusRunning); err != nil {
		return err
	}
	dir, err := m.Engine.Workdir()
	if err != nil {
		return err
	}
	for i, strain := range m.Strains {
		name := fmt.Sprintf("%s_%d", m.Job.Name, i)
		child, err := m.Project.NewJob(name)
		if err != nil {
			return err
		}
		if child.Status == StatusFinished {
			fmt.Fprintf(os.Stderr, "%s already finished, skipping\n", name)
			continue
		}
		if child.MasterID == 0 {
			if err := child.SetMaster(m.Job.ID); err != nil {
				return err
			}
		}
		basename := filepath.Join(dir, name)
		eng := *m.Engine
		eng.Job = child
		if err := eng.WriteInput(basename+".in", strain); err != nil {
			return err
		}
		if err := child.SetStatus(StatusRunning); err != nil {
			return err
		}
		if err := eng.Run(basename); err != nil {
			child.SetStatus(StatusAborted)
			return fmt.Errorf("running %s: %w", name, err)
		}
		energy, volume, err := eng.ReadOut(basename + ".out")
		if err != nil {
			child.SetStatus(StatusAborted)
			return fmt.Errorf("reading %s.out: %w", name, err)
		}
		if err := eng.CollectStatic(energy, volume); err != nil {
			return err
		}
	}
	if err := m.Job.SetStatus(StatusCollect); err != nil {
		return err
	}
	return m.CollectOutput()
}

// Run dispatches on the run mode
func (m *Murnaghan) Run(mode string) error {
	switch mode {
	case ModeInteractive, "":
		return m.RunInteractive()
	case ModeStatic:
		return m.RunStatic()
	}
	return fmt.Errorf("unsupported run mode %q", mode)
}

// CollectOutput gathers the energy-volume curve from the child jobs,
// sorts it by volume, stores the sorted arrays under the master's
// output group, and fits the equation of state
func (m *Murnaghan) CollectOutput() error {
	children, err := m.Job.ChildIDs()
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return fmt.Errorf("job %s has no children to collect", m.Job.Name)
	}
	var energies, volumes []float64
	if len(children) == 1 {
		// interactive runs stream everything into one child
		ham, err := m.Project.Inspect(children[0])
		if err != nil {
			return err
		}
		out := ham.Open("output/generic")
		if energies, err = out.GetFloats("energy_tot"); err != nil {
			return err
		}
		if volumes, err = out.GetFloats("volume"); err != nil {
			return err
		}
	} else {
		for _, id := range children {
			ham, err := m.Project.Inspect(id)
			if err != nil {
				return err
			}
			out := ham.Open("output/generic")
			e, err := out.GetFloats("energy_tot")
			if err != nil {
				return err
			}
			v, err := out.GetFloats("volume")
			if err != nil {
				return err
			}
			if len(e) == 0 || len(v) == 0 {
				return fmt.Errorf("child %d: empty output", id)
			}
			energies = append(energies, e[len(e)-1])
			volumes = append(volumes, v[len(v)-1])
		}
	}
	inds := ArgSort(volumes)
	volumes = TakeAt(volumes, inds)
	energies = TakeAt(energies, inds)
	out := m.Job.Open("output")
	if err := out.Put("volume", volumes); err != nil {
		return err
	}
	if err := out.Put("energy", energies); err != nil {
		return err
	}
	m.Fit, err = FitEOS(volumes, energies, m.FitType, m.FitOrder)
	if err != nil {
		m.Job.SetStatus(StatusAborted)
		return err
	}
	if err := m.storeFit(out); err != nil {
		return err
	}
	return m.Job.SetStatus(StatusFinished)
}

func (m *Murnaghan) storeFit(out *Group) error {
	for _, kv := range []struct {
		key string
		val interface{}
	}{
		{"fit_type", m.Fit.FitType},
		{"equilibrium_volume", m.Fit.V0},
		{"equilibrium_energy", m.Fit.E0},
		{"equilibrium_bulk_modulus", m.Fit.B0},
		{"equilibrium_b_prime", m.Fit.BPrime},
	} {
		if err := out.Put(kv.key, kv.val); err != nil {
			return err
		}
	}
	if m.Fit.FitType == FitPolynomial {
		return out.Put("poly_coeffs", m.Fit.Coeffs)
	}
	return nil
}
