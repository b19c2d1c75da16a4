// File: cmd/meshbuf/command/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package command

import (
	"fmt"
	"io"

	"github.com/momentics/meshbuf/message"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective pool configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mc, err := cfg.MessageConfig()
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), mc)
			if cfg.MetricsAddr != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", "metrics_addr", cfg.MetricsAddr)
			}
			return nil
		},
	}
}

func printConfig(w io.Writer, c message.Config) {
	rows := []struct {
		key string
		val any
	}{
		{"num_buffers", c.NumBuffers},
		{"buffer_size", c.BufferSize},
		{"buffer_overhead", c.BufferOverhead},
		{"head_overhead", c.HeadOverhead},
		{"head_data_size", c.HeadDataSize()},
		{"buffer_data_size", c.BufferDataSize()},
		{"child_mask_bits", c.ChildMaskBits},
		{"default_priority", c.DefaultPriority},
		{"link_security", c.DefaultLinkSecurity},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-22s %v\n", r.key, r.val)
	}
}
