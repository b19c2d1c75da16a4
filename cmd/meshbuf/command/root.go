// File: cmd/meshbuf/command/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package command

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/momentics/meshbuf/control"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var configPath string

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "meshbuf [command]",
		Short:        "Packet buffer pool inspector",
		Long:         `meshbuf prints the effective buffer pool configuration and runs pressure simulations against it.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	control.RegisterFlags(root.PersistentFlags())

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	root.AddCommand(newConfigCmd(), newSimulateCmd())
	return root
}

// Execute runs the CLI until completion or SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		klog.ErrorS(err, "command failed")
		stop()
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
	klog.Flush()
}

func loadConfig(cmd *cobra.Command) (*control.Config, error) {
	return control.LoadConfig(configPath, cmd.Flags())
}
