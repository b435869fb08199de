// Command kvs-client is a thin TCP client for the Ignite server, grounded
// on original_source/src/bin/kvs-client.rs: it sends one request per
// invocation and prints the decoded response.
package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iamNilotpal/ignite/internal/protocol"
	"github.com/iamNilotpal/ignite/pkg/options"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "kvs-client",
		Short:   "Talk to a running Ignite server over TCP",
		Version: "0.1.0",
	}

	root.AddCommand(newGetCmd(), newSetCmd(), newRemoveCmd())
	return root
}

func newGetCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch the value stored for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendRequest(addr, protocol.NewGetRequest(args[0]))
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", options.DefaultListenAddr, "server address")
	return cmd
}

func newSetCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a key-value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendRequest(addr, protocol.NewSetRequest(args[0], args[1]))
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", options.DefaultListenAddr, "server address")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendRequest(addr, protocol.NewRemoveRequest(args[0]))
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", options.DefaultListenAddr, "server address")
	return cmd
}

func sendRequest(addr string, req protocol.Request) (protocol.Response, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return protocol.Response{}, err
	}
	defer conn.Close()

	writer := protocol.NewWriter(conn)
	if err := writer.WriteRequest(req); err != nil {
		return protocol.Response{}, err
	}

	reader := protocol.NewReader(conn)
	return reader.ReadResponse()
}

// printResponse renders a Response the way the reference client does:
// a Get of a missing key (or a Remove of a missing key) prints "Key not
// found" rather than an empty line, and a server-side error fails the command.
func printResponse(resp protocol.Response) error {
	switch resp.Kind {
	case protocol.ResponseValue:
		if resp.Value == nil {
			fmt.Println("Key not found")
			return nil
		}
		fmt.Println(*resp.Value)
		return nil
	case protocol.ResponseOk:
		return nil
	case protocol.ResponseErr:
		if resp.Err == "key not found in index" {
			fmt.Println("Key not found")
		}
		return fmt.Errorf("%s", resp.Err)
	default:
		return fmt.Errorf("unrecognized response")
	}
}
