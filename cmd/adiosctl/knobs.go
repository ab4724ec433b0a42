package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-adios/adios"
	"github.com/go-adios/adios/internal/scheduler"
)

func newKnobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knobs",
		Short: "Inspect the adaptive-deadline scheduler's tunable knobs",
	}
	cmd.AddCommand(newKnobsShowCmd())
	return cmd
}

func newKnobsShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective knob values for a profile, or the compiled-in defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := scheduler.New(nil, nil)
			if configPath != "" {
				profile, err := loadProfileFile(configPath)
				if err != nil {
					return err
				}
				if err := s.ApplyKnobProfile(*profile.toLatencyTargetProfile()); err != nil {
					return ublk.NewError("APPLY_SCHEDULER_PROFILE", ublk.ErrCodeInvalidKnob, err.Error())
				}
			}

			k := s.Knobs()
			fmt.Printf("global_latency_window : %d ns\n", k.GlobalLatencyWindow())
			fmt.Printf("bq_refill_below_ratio  : %d\n", k.RefillBelowRatio())
			for _, op := range []scheduler.OpType{scheduler.OpRead, scheduler.OpWrite, scheduler.OpDiscard, scheduler.OpOther} {
				fmt.Printf("batch_limit_%-8s: %d\n", op, k.BatchLimit(op))
				fmt.Printf("lat_target_%-9s: %d ns\n", op, k.LatencyTarget(op))
			}
			fmt.Printf("adios_version          : %s\n", scheduler.AdiosVersion)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "scheduler knob profile (YAML)")
	return cmd
}
