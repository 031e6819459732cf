package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Errors used to drive the output poll loops
var (
	ErrEnergyNotFound      = errors.New("energy not found in engine output")
	ErrFileNotFound        = errors.New("engine output file not found")
	ErrBlankOutput         = errors.New("engine output file exists but is blank")
	ErrFileContainsError   = errors.New("engine output file contains an error")
	ErrFinishedButNoEnergy = errors.New("engine output finished but no energy found")
	ErrNotInteractive      = errors.New("engine is not running interactively")
)

// energyLine is the marker printed by the generated inputs so the
// energy and volume can be parsed without relying on thermo layout
const energyLine = "pbeos="

var (
	errorRe      = regexp.MustCompile(`(?i)^\s*ERROR`)
	terminatedRe = regexp.MustCompile(`Total wall time`)
	brokenFloat  = math.NaN()
)

// Lammps drives a LAMMPS-style molecular dynamics engine as an
// external program, either one input file at a time or as a single
// live process fed commands on stdin
type Lammps struct {
	Cmd      string
	Dir      string
	DataFile string
	Pot      *Potential

	proc     *exec.Cmd
	stdin    io.WriteCloser
	stdout   *bufio.Scanner
	linScale float64
	energies []float64
	volumes  []float64

	// Job is the store record the engine's output is collected
	// into
	Job *Job
}

// header renders the structure setup and potential commands shared by
// static and interactive inputs. It works on a copy of the potential's
// table so repeated calls see the full Config.
func (l *Lammps) header() (string, error) {
	var buf bytes.Buffer
	params := l.Pot.Params().Copy()
	units, err := params.GetDefault("units", "metal")
	if err != nil {
		return "", err
	}
	dim, err := params.GetDefault("dimension", 3)
	if err != nil {
		return "", err
	}
	style, err := params.GetDefault("atom_style", "atomic")
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&buf, "units %v\n", units)
	fmt.Fprintf(&buf, "dimension %v\n", dim)
	fmt.Fprintf(&buf, "boundary p p p\n")
	fmt.Fprintf(&buf, "atom_style %v\n", style)
	fmt.Fprintf(&buf, "read_data %s\n", l.DataFile)
	params.RemoveStructureBlock()
	for _, line := range params.Lines() {
		fmt.Fprintf(&buf, "%s\n", line)
	}
	fmt.Fprintf(&buf, "thermo_style custom step pe vol\n")
	return buf.String(), nil
}

// evalLines are the per-strain commands: rescale the box, evaluate,
// and print the marker line. scale is the linear factor relative to
// the current box.
func evalLines(scale float64) string {
	var buf bytes.Buffer
	if scale != 1.0 {
		fmt.Fprintf(&buf,
			"change_box all x scale %.10f y scale %.10f z scale %.10f remap\n",
			scale, scale, scale)
	}
	fmt.Fprintf(&buf, "run 0\n")
	fmt.Fprintf(&buf, "print \"%s $(pe) $(vol)\"\n", energyLine)
	return buf.String()
}

// WriteInput writes a one-shot input that evaluates the structure at
// the given volume scale factor
func (l *Lammps) WriteInput(filename string, volScale float64) error {
	head, err := l.header()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(head)
	buf.WriteString(evalLines(math.Cbrt(volScale)))
	return os.WriteFile(filename, buf.Bytes(), 0755)
}

// Run runs the engine on basename.in, leaving the output in
// basename.out
func (l *Lammps) Run(basename string) error {
	return RunProgram(l.Cmd, basename)
}

// ReadOut reads an engine output file and returns the marker energy
// and volume with an error describing the status of the output
func (l *Lammps) ReadOut(filename string) (energy, volume float64, err error) {
	if _, err = os.Stat(filename); os.IsNotExist(err) {
		return brokenFloat, brokenFloat, ErrFileNotFound
	}
	energy, volume = brokenFloat, brokenFloat
	err = ErrEnergyNotFound
	lines, _ := ReadFile(filename)
	if len(lines) == 0 {
		return energy, volume, ErrBlankOutput
	}
	for _, line := range lines {
		switch {
		case errorRe.MatchString(line):
			return brokenFloat, brokenFloat, ErrFileContainsError
		case strings.HasPrefix(line, energyLine):
			energy, volume, err = parseMarker(line)
		case terminatedRe.MatchString(line) && err != nil:
			err = ErrFinishedButNoEnergy
		}
	}
	return energy, volume, err
}

// parseMarker parses an "energyLine <pe> <vol>" marker line
func parseMarker(line string) (energy, volume float64, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return brokenFloat, brokenFloat, ErrEnergyNotFound
	}
	energy, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return brokenFloat, brokenFloat, ErrEnergyNotFound
	}
	volume, err = strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return energy, brokenFloat, ErrEnergyNotFound
	}
	return energy, volume, nil
}

// StartInteractive launches the engine as a live process and feeds it
// the structure and potential setup. Later RunStrain calls reuse the
// same process.
func (l *Lammps) StartInteractive() error {
	head, err := l.header()
	if err != nil {
		return err
	}
	cmd := exec.Command(l.Cmd)
	cmd.Dir = l.Dir
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", l.Cmd, err)
	}
	l.proc = cmd
	l.stdin = stdin
	l.stdout = bufio.NewScanner(stdout)
	l.linScale = 1.0
	l.energies = nil
	l.volumes = nil
	if _, err := io.WriteString(l.stdin, head); err != nil {
		return err
	}
	return nil
}

// Interactive reports whether the engine process is live
func (l *Lammps) Interactive() bool { return l.proc != nil }

// RunStrain rescales the live box to the given volume scale factor,
// evaluates it, and records the resulting energy and volume
func (l *Lammps) RunStrain(volScale float64) (energy, volume float64, err error) {
	if !l.Interactive() {
		return brokenFloat, brokenFloat, ErrNotInteractive
	}
	// change_box compounds, so send the factor relative to the
	// current box
	lin := math.Cbrt(volScale)
	rel := lin / l.linScale
	if _, err = io.WriteString(l.stdin, evalLines(rel)); err != nil {
		return brokenFloat, brokenFloat, err
	}
	l.linScale = lin
	for l.stdout.Scan() {
		line := l.stdout.Text()
		if errorRe.MatchString(line) {
			return brokenFloat, brokenFloat, ErrFileContainsError
		}
		if strings.HasPrefix(line, energyLine) {
			energy, volume, err = parseMarker(line)
			if err == nil {
				l.energies = append(l.energies, energy)
				l.volumes = append(l.volumes, volume)
			}
			return energy, volume, err
		}
	}
	if err = l.stdout.Err(); err != nil {
		return brokenFloat, brokenFloat, err
	}
	return brokenFloat, brokenFloat, ErrFinishedButNoEnergy
}

// InteractiveClose shuts the engine down and flushes the accumulated
// energy and volume series to the engine job's output group
func (l *Lammps) InteractiveClose() error {
	if !l.Interactive() {
		return ErrNotInteractive
	}
	l.stdin.Close()
	// drain remaining output so the process can exit
	for l.stdout.Scan() {
	}
	err := l.proc.Wait()
	l.proc = nil
	if l.Job != nil {
		out := l.Job.Open("output/generic")
		if perr := out.Put("energy_tot", l.energies); perr != nil {
			return perr
		}
		if perr := out.Put("volume", l.volumes); perr != nil {
			return perr
		}
		status := StatusFinished
		if err != nil {
			status = StatusAborted
		}
		if serr := l.Job.SetStatus(status); serr != nil {
			return serr
		}
	}
	return err
}

// CollectStatic stores a one-shot result under the engine job's
// output group the same way an interactive close does
func (l *Lammps) CollectStatic(energy, volume float64) error {
	if l.Job == nil {
		return fmt.Errorf("no job attached to engine")
	}
	out := l.Job.Open("output/generic")
	if err := out.Put("energy_tot", []float64{energy}); err != nil {
		return err
	}
	if err := out.Put("volume", []float64{volume}); err != nil {
		return err
	}
	return l.Job.SetStatus(StatusFinished)
}

// Workdir returns the engine's working directory, creating it when
// needed
func (l *Lammps) Workdir() (string, error) {
	if l.Dir == "" {
		l.Dir = "."
	}
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return "", err
	}
	return l.Dir, nil
}
