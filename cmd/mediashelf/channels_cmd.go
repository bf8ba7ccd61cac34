package main

import (
	"fmt"

	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/spf13/cobra"
)

func newChannelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels <description>...",
		Short: "Derive the channel count from an audio channel description",
		Long: `Print the channel count mediashelf derives from a channel description
as found in NFO files or media info tools.

Examples:
  mediashelf channels 5.1                         # 6
  mediashelf channels "Object Based / 8 channels" # 8`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, a := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30q %d\n", a, media.ParseChannels(a))
			}
		},
	}
}
