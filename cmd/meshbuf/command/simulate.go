// File: cmd/meshbuf/command/simulate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/momentics/meshbuf/affinity"
	"github.com/momentics/meshbuf/control"
	"github.com/momentics/meshbuf/internal/simulate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newSimulateCmd() *cobra.Command {
	opts := simulate.DefaultOptions()
	var (
		dumpState bool
		hold      bool
		cpu       int
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run send-queue pressure against a pool and report reclamation",
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
			ctx := cmd.Context()

			reg := control.NewMetricsRegistry()
			if cfg.MetricsAddr != "" {
				stop, err := serveMetrics(ctx, cfg.MetricsAddr, reg)
				if err != nil {
					return err
				}
				defer stop()
			}

			if cpu >= 0 {
				unpin, err := affinity.Pin(cpu)
				if err != nil {
					return err
				}
				defer unpin()
				klog.V(2).InfoS("stack pinned", "cpu", cpu)
			}

			var probes *control.DebugProbes
			if dumpState {
				probes = control.NewDebugProbes()
			}
			rep, err := simulate.Run(ctx, mc, opts, reg, probes)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep)

			if hold && cfg.MetricsAddr != "" {
				klog.InfoS("serving metrics until interrupted", "addr", cfg.MetricsAddr)
				<-ctx.Done()
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Rounds, "rounds", opts.Rounds, "number of one-second ticks to simulate")
	f.IntVar(&opts.BurstSize, "burst", opts.BurstSize, "network-control messages injected per round")
	f.IntVar(&opts.DrainPerRound, "drain", opts.DrainPerRound, "messages transmitted per round")
	f.IntVar(&opts.MaxPayload, "max-payload", opts.MaxPayload, "largest random payload in bytes")
	f.IntVar(&opts.FragmentsPerRound, "fragments", opts.FragmentsPerRound, "fragments parked for reassembly per round")
	f.Uint8Var(&opts.ReassemblyTimeout, "reassembly-timeout", opts.ReassemblyTimeout, "seconds before a fragment is dropped")
	f.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	f.BoolVar(&dumpState, "dump-state", false, "log debug probes at the end of the run")
	f.IntVar(&cpu, "cpu", -1, "pin the simulated stack to this CPU")
	f.BoolVar(&hold, "hold", false, "keep serving metrics after the run until interrupted")
	return cmd
}

// serveMetrics exports reg on addr/metrics. The returned func shuts the
// server down.
func serveMetrics(ctx context.Context, addr string, reg *control.MetricsRegistry) (func(), error) {
	pr := prometheus.NewRegistry()
	if err := pr.Register(control.NewCollector(reg, nil)); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(pr, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.ErrorS(err, "metrics server", "addr", addr)
		}
	}()
	return func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}, nil
}

func printReport(w io.Writer, r simulate.Report) {
	ok := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	title := color.New(color.Bold).SprintFunc()

	level := func(n int, alarm func(a ...any) string) string {
		if n == 0 {
			return ok(n)
		}
		return alarm(n)
	}

	fmt.Fprintln(w, title("simulation report"))
	fmt.Fprintf(w, "  rounds              %d\n", r.Rounds)
	fmt.Fprintf(w, "  background queued   %d\n", r.Background)
	fmt.Fprintf(w, "  background dropped  %s\n", level(r.BackgroundDrops, warn))
	fmt.Fprintf(w, "  net-control sent    %s\n", ok(r.NetSent))
	fmt.Fprintf(w, "  net-control dropped %s\n", level(r.NetDropped, bad))
	fmt.Fprintf(w, "  transmitted         %d\n", r.Transmitted)
	fmt.Fprintf(w, "  evicted             %s\n", level(r.Evicted, warn))
	fmt.Fprintf(w, "  fragments           %d\n", r.Fragments)
	fmt.Fprintf(w, "  reassembled         %d\n", r.Reassembled)
	fmt.Fprintf(w, "  fragments expired   %s\n", level(r.Expired, warn))

	st := r.Stats
	fmt.Fprintln(w, title("pool"))
	fmt.Fprintf(w, "  buffers free/total  %d/%d\n", st.Buffers.Free, st.Buffers.Capacity)
	fmt.Fprintf(w, "  live messages       %d\n", st.LiveMessages)
	fmt.Fprintf(w, "  reclaim runs        %d\n", st.ReclaimRuns)
	fmt.Fprintf(w, "  reclaim failures    %s\n", level(int(st.ReclaimFailures), bad))
	fmt.Fprintf(w, "  alloc failures      %s\n", level(int(st.AllocFailures), bad))
}
