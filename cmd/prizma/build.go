package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prizma/internal/build"
)

var (
	flagOut   string
	flagForce bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Export the site as static files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, st, err := openSite()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := s.Load(cmd.Context()); err != nil {
			return err
		}
		out := flagOut
		if out == "" {
			out = s.Config().Build.PublicDir
		}

		b := build.Builder{Site: s, OutDir: out, Force: flagForce}
		res, err := b.Run(cmd.Context())
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", out)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages (%d posts, %d warnings) to %s\n",
			res.Pages, res.Posts, res.Warnings, out)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&flagOut, "out", "", "output directory (default build.public_dir)")
	buildCmd.Flags().BoolVar(&flagForce, "force", false, "rebuild even when nothing changed")
}
