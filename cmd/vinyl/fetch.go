package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vinyl/internal/api"
	"vinyl/internal/store"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch or update a playlist without opening the UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sourceID, err := api.ParsePlaylistURL(args[0])
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			client := api.New(cfg.YouTube.APIKey,
				api.WithInstances(cfg.YouTube.InvidiousInstances))
			fetched, tracks, err := client.FetchPlaylist(cmd.Context(), sourceID)
			if err != nil {
				return err
			}
			saved, err := st.SavePlaylist(cmd.Context(), fetched.Title, fetched.SourceID)
			if err != nil {
				return err
			}
			if err := st.ReplaceTracks(cmd.Context(), saved.ID, tracks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q with %d tracks\n", saved.Title, len(tracks))
			return nil
		},
	}
}
