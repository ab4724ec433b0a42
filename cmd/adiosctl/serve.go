package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-adios/adios"
	"github.com/go-adios/adios/backend"
	"github.com/go-adios/adios/internal/logging"
)

func newServeCmd() *cobra.Command {
	var (
		sizeStr    string
		queues     int
		depth      int
		configPath string
		verbose    bool
		logBackend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Create a memory-backed ublk device scheduled by the adaptive-deadline core",
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseSize(sizeStr)
			if err != nil {
				return fmt.Errorf("invalid --size %q: %w", sizeStr, err)
			}

			var profile *profileFile
			if configPath != "" {
				profile, err = loadProfileFile(configPath)
				if err != nil {
					return err
				}
			}

			var logger ublk.Logger
			switch logBackend {
			case "logrus":
				base := logrus.New()
				base.SetFormatter(&logrus.JSONFormatter{})
				if verbose {
					base.SetLevel(logrus.DebugLevel)
				}
				logger = logging.NewLogrusLogger(base)
			case "", "text":
				logConfig := logging.DefaultConfig()
				if verbose {
					logConfig.Level = logging.LevelDebug
				}
				textLogger := logging.NewLogger(logConfig)
				logging.SetDefault(textLogger)
				logger = textLogger
			default:
				return fmt.Errorf("unknown --log-backend %q (want \"text\" or \"logrus\")", logBackend)
			}

			mem := backend.NewMemory(size)
			defer mem.Close()

			params := ublk.DefaultParams(mem)
			params.NumQueues = queues
			params.QueueDepth = depth
			params.EnableIoctlEncode = true
			if profile != nil {
				params.SchedulerProfile = profile.toLatencyTargetProfile()
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			device, err := ublk.CreateAndServe(ctx, params, &ublk.Options{Logger: logger})
			if err != nil {
				return fmt.Errorf("create device: %w", err)
			}
			defer func() {
				_ = ublk.StopAndDelete(context.Background(), device)
			}()

			fmt.Printf("device ready: %s (char %s)\n", device.Path, device.CharPath)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			return nil
		},
	}

	cmd.Flags().StringVar(&sizeStr, "size", "64M", "backing memory size (e.g. 64M, 1G)")
	cmd.Flags().IntVar(&queues, "queues", 1, "number of I/O queues")
	cmd.Flags().IntVar(&depth, "depth", 32, "per-queue submission depth")
	cmd.Flags().StringVar(&configPath, "config", "", "scheduler knob profile (YAML)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.Flags().StringVar(&logBackend, "log-backend", "text", "log output: \"text\" or \"logrus\"")
	return cmd
}

func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return n * multiplier, nil
}
