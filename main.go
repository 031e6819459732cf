/*
Push-button EOS
---------------
The goal of this program is to streamline equation-of-state scans
with an external molecular dynamics engine, automating as many pieces
as possible: potential selection, strained-box evaluations, and the
Murnaghan fit of the resulting energy-volume curve.
*/

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "pbeos",
	Short:         "push-button equation-of-state scans over an external MD engine",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `pbeos drives a LAMMPS-style molecular dynamics engine over a list of
volume strains and fits the resulting energy-volume curve.

Requirements:
- the engine executable (lammps= keyword, default lmp)
- a data file with the structure (structure= keyword)
- a potential, either by name from the potential table in the
  resource paths (potential=) or inline (config={...})

Resource paths come from ` + resourceEnv + ` and the RESOURCE_PATHS
key of ~/` + settingsFile + `.`,
}

var runCmd = &cobra.Command{
	Use:   "run <input>",
	Short: "run the full workflow described by an input file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ParseInfile(args[0])
		settings := LoadSettings()
		pot, err := selectPotential(settings)
		if err != nil {
			return err
		}
		if Conf.Str(DataFile) == "" {
			return fmt.Errorf("no structure given; set structure= in %s", args[0])
		}
		// the engine runs inside the work directory
		data, err := filepath.Abs(Conf.Str(DataFile))
		if err != nil {
			return err
		}
		proj, err := OpenProject(Conf.Str(ProjectFile))
		if err != nil {
			return err
		}
		defer proj.Close()
		engine := &Lammps{
			Cmd:      Conf.Str(LammpsCmd),
			Dir:      Conf.Str(WorkDir),
			DataFile: data,
			Pot:      pot,
		}
		if _, err := engine.Workdir(); err != nil {
			return err
		}
		if err := pot.CopyFiles(settings, engine.Dir); err != nil {
			return err
		}
		murn, err := NewMurnaghan(proj, Conf.Str(JobName), engine)
		if err != nil {
			return err
		}
		murn.Strains = StrainList(Conf.Float(VolRange), Conf.Int(NumPoints))
		murn.FitType = Conf.Str(FitType)
		murn.FitOrder = Conf.Int(FitOrder)
		if err := pot.ToStore(murn.Job.Open("input")); err != nil {
			return err
		}
		if err := murn.Run(Conf.Str(RunMode)); err != nil {
			return err
		}
		Summarize(os.Stdout, murn.Fit)
		return nil
	},
}

// selectPotential resolves the potential requested in Conf, from the
// table by name or from an inline config block
func selectPotential(s *Settings) (*Potential, error) {
	if config := Conf.Str(CustomConfig); config != "" {
		return &Potential{
			Name:   "custom",
			Config: strings.Split(config, "\n"),
		}, nil
	}
	name := Conf.Str(PotName)
	if name == "" {
		return nil, fmt.Errorf("no potential given; set potential= or config={...}")
	}
	db, err := LoadPotentialDB(s)
	if err != nil {
		return nil, err
	}
	return db.FindByName(name)
}

var potsCmd = &cobra.Command{
	Use:   "pots",
	Short: "query the potential table in the resource paths",
}

var potsElements []string

var potsListCmd = &cobra.Command{
	Use:   "list",
	Short: "list the available potentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := LoadPotentialDB(LoadSettings())
		if err != nil {
			return err
		}
		for _, pot := range db.Find(potsElements...) {
			fmt.Printf("%-40s %-12s %s\n", pot.Name, pot.Model,
				strings.Join(pot.Species, " "))
		}
		return nil
	},
}

var potsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "print the metadata and engine commands of a potential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := LoadPotentialDB(LoadSettings())
		if err != nil {
			return err
		}
		pot, err := db.FindByName(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Name: %s\n", pot.Name)
		fmt.Printf("Model: %s\n", pot.Model)
		fmt.Printf("Species: %s\n", strings.Join(pot.Species, " "))
		fmt.Printf("Files: %s\n", strings.Join(pot.Filenames, " "))
		fmt.Println("Config:")
		fmt.Println(pot.Params().String())
		return nil
	},
}

var potsFilesCmd = &cobra.Command{
	Use:   "files <name>",
	Short: "print the resolved file paths of a potential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := LoadSettings()
		db, err := LoadPotentialDB(settings)
		if err != nil {
			return err
		}
		pot, err := db.FindByName(args[0])
		if err != nil {
			return err
		}
		files, err := pot.Files(settings)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	},
}

var jobsCmd = &cobra.Command{
	Use:   "jobs <project>",
	Short: "list the jobs in a project store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := OpenProject(args[0])
		if err != nil {
			return err
		}
		defer proj.Close()
		return ListJobs(os.Stdout, proj)
	},
}

func init() {
	potsListCmd.Flags().StringSliceVarP(&potsElements, "elements", "e", nil,
		"only list potentials covering these elements")
	potsCmd.AddCommand(potsListCmd, potsShowCmd, potsFilesCmd)
	rootCmd.AddCommand(runCmd, potsCmd, jobsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
