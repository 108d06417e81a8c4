package main

import (
	"fmt"

	"github.com/certifiable-ai/go-bench/platform"
	"github.com/certifiable-ai/go-bench/timer"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show timer calibration and platform details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected := timer.Init(timer.Auto)

			fmt.Printf("timer:        %s (source %d)\n", timer.Name(), selected)
			fmt.Printf("resolution:   %d ns\n", timer.Resolution())
			fmt.Printf("calibration:  %d ns read-pair overhead\n", timer.Calibration())

			fmt.Printf("platform:     %s\n", platform.Name())
			if model, err := platform.CPUModel(); err == nil {
				fmt.Printf("cpu model:    %s\n", model)
			}
			if mhz := platform.CPUFreqMHz(); mhz > 0 {
				fmt.Printf("cpu freq:     %d MHz\n", mhz)
			}

			if snap, err := platform.Snapshot(); err == nil {
				fmt.Printf("cpu freq now: %d Hz\n", snap.CPUFreqHz)
				fmt.Printf("cpu temp:     %d m°C\n", snap.CPUTempMilliC)
				fmt.Printf("throttles:    %d\n", snap.ThrottleCount)
			}

			if hw, err := platform.StartHWCounters(); err == nil {
				if counters, err := hw.Stop(); err == nil && counters.Available {
					fmt.Println("hw counters:  available")
				}
			} else {
				fmt.Println("hw counters:  unavailable")
			}
			return nil
		},
	}
}
