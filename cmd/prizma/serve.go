package main

import (
	"github.com/spf13/cobra"

	"prizma/internal/logger"
	"prizma/internal/serve"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, st, err := openSite()
		if err != nil {
			return err
		}
		defer st.Close()

		// A failed first load still serves; pages show the load error
		// until POST /-/reload succeeds.
		if err := s.Load(cmd.Context()); err != nil {
			logger.Errorf("[serve] initial load: %v", err)
		}

		srv := serve.New(s)
		defer srv.Close()
		return srv.ListenAndServe(cmd.Context(), flagAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "listen address")
}
