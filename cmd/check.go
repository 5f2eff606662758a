package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smazurov/teres/internal/render"
	"github.com/smazurov/teres/internal/script"
)

// CreateCheckCmd creates the check command, a dry run that prints the
// pipeline for each input without starting it.
func CreateCheckCmd(env EnvFunc) *cobra.Command {
	var showScript bool

	cmd := &cobra.Command{
		Use:   "check [video...]",
		Short: "Validate settings and print the render commands",
		Long: `Loads and validates the render settings, resolves the frame server and transcoder executables ` +
			`and prints both command lines for every input. Nothing is written and no process is started.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runCheck(c.OutOrStdout(), env(), SplitInputs(args), showScript)
		},
	}

	cmd.Flags().BoolVar(&showScript, "script", false, "Also print the generated frame server script")
	return cmd
}

func runCheck(w io.Writer, env Env, inputs []string, showScript bool) error {
	settings, err := env.LoadSettings()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Settings OK")

	exes, err := render.ResolveExecutables(render.DetectInstaller, env.Executables)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Frame server: %s\nTranscoder:   %s\n", exes.Source, exes.Transcoder)

	builder := env.NewBuilder()
	for _, input := range inputs {
		video, err := filepath.Abs(input)
		if err != nil {
			return err
		}
		scriptPath := filepath.Join(env.ScratchDir, "teres-<id>", script.FileName)
		if env.ScratchDir == "" {
			scriptPath = filepath.Join(os.TempDir(), "teres-<id>", script.FileName)
		}

		cmd, err := builder.Build(scriptPath, video, render.DefaultOutputPath(video, settings.Encoding.Container), settings, env.Stdout)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}

		fmt.Fprintf(w, "\n%s -> %s\n", filepath.Base(video), cmd.OutputName)
		fmt.Fprintf(w, "  %s |\n  %s\n", cmd.Source.String(), cmd.Transcoder.String())
		if showScript {
			fmt.Fprintln(w)
			if err := script.Generate(w, video, settings); err != nil {
				return err
			}
		}
	}
	return nil
}
