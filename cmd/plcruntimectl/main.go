// Command plcruntimectl is a thin client for the runtime's control socket:
// dial the socket, write one newline-terminated command, print the
// one-line response.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var socketPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "plcruntimectl",
	Short: "Control client for the PLC runtime's control socket",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "/run/plcruntime/control.sock", "control socket path")

	rootCmd.AddCommand(
		newSimpleCommand("ping", "Check that the runtime is responding", "PING"),
		newSimpleCommand("status", "Print the runtime's lifecycle state", "STATUS"),
		newSimpleCommand("start", "Start the loaded program", "START"),
		newSimpleCommand("stop", "Stop the running program", "STOP"),
		newSimpleCommand("stats", "Print scan timing statistics", "STATS"),
	)
}

func newSimpleCommand(use, short, wireCommand string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := sendCommand(socketPath, wireCommand)
			if err != nil {
				return err
			}
			fmt.Println(response)
			return nil
		},
	}
}

func sendCommand(socketPath, command string) (string, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(command + "\n")); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	response, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return response[:len(response)-1], nil
}
