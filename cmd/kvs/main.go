// Command kvs is a local, non-networked CLI over the native engine,
// grounded on original_source/src/bin/kvs.rs: it opens the data directory
// directly (no server involved) and performs exactly one operation per
// invocation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/ignite"
	"github.com/iamNilotpal/ignite/pkg/options"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:     "kvs",
		Short:   "A local key-value store",
		Version: "0.1.0",
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", options.DefaultDataDir, "directory to store data in")

	root.AddCommand(newGetCmd(&dataDir), newSetCmd(&dataDir), newRemoveCmd(&dataDir))
	return root
}

func openStore(ctx context.Context, dataDir string) (*ignite.Instance, error) {
	return ignite.NewInstance(ctx, "kvs", func(o *options.Options) { o.DataDir = dataDir })
}

func newGetCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch the value stored for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openStore(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			value, ok, err := db.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Key not found")
				return nil
			}
			fmt.Println(value)
			return nil
		},
	}
}

func newSetCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a key-value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openStore(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			return db.Set(ctx, args[0], args[1])
		},
	}
}

func newRemoveCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openStore(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			if err := db.Delete(ctx, args[0]); err != nil {
				if kerrors.GetErrorCode(err) == kerrors.ErrorCodeIndexKeyNotFound {
					fmt.Println("Key not found")
				}
				return err
			}
			return nil
		},
	}
}
