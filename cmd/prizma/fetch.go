package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"prizma/internal/domain/content"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Load the feed once and print the normalized posts as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, st, err := openSite()
		if err != nil {
			return err
		}
		defer st.Close()

		coll, err := s.Reload(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			LoadID string         `json:"load_id"`
			Author content.Author `json:"author"`
			Posts  []content.Post `json:"posts"`
		}{coll.LoadID(), coll.Author(), coll.Posts()})
	},
}
