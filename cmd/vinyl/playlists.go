package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vinyl/internal/store"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "playlists",
		Short: "List saved playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			playlists, err := st.Playlists(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(playlists) == 0 {
				fmt.Fprintln(out, "No playlists saved. Add one with `vinyl fetch <url>`.")
				return nil
			}

			rows := make([][]string, 0, len(playlists))
			for _, p := range playlists {
				count, err := st.TrackCount(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					strconv.FormatInt(p.ID, 10),
					p.Title,
					p.SourceID,
					strconv.Itoa(count),
					p.UpdatedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Source", "Tracks", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
