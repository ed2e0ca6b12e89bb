package scenarios

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/vacuum-world/server"
)

func ServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve saved results and stored value tables over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return withInterrupt(func(ctx context.Context) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", saveDir, addr)
				return server.NewResultsServer(ctx, addr, saveDir, s).Run()
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Listen address")
	return cmd
}
