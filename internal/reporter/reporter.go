package reporter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"awsim-client/internal/sequencer"
	"awsim-client/internal/utils"
)

// PrintBatchSummary prints the batch run results to the console.
func PrintBatchSummary(result *sequencer.BatchResult, logger *utils.Logger) {
	separator := strings.Repeat("=", 80)
	fmt.Println("\n" + separator)
	fmt.Println("BATCH RUN RESULTS")
	fmt.Println(separator)
	fmt.Printf("Total Scenarios:  %d\n", result.TotalScenarios)
	fmt.Printf("Completed:        %d\n", result.Completed)
	fmt.Printf("Failed:           %d\n", result.Failed)
	fmt.Printf("Total Duration:   %s\n", result.Duration.Round(time.Millisecond))
	fmt.Println(separator)

	for _, sr := range result.ScenarioResults {
		line := fmt.Sprintf("%-40s %-20s %s", sr.File, sr.Outcome, sr.Duration.Round(time.Millisecond))
		if sr.Error != "" {
			line += "  (" + sr.Error + ")"
		}
		fmt.Println(line)
	}
	fmt.Println(separator)

	logger.Info("Batch run summary", map[string]interface{}{
		"totalScenarios": result.TotalScenarios,
		"completed":      result.Completed,
		"failed":         result.Failed,
		"duration":       result.Duration.String(),
	})
}

// PrintCallMetrics prints per-service bridge call counters.
func PrintCallMetrics(snapshot utils.MetricsSnapshot) {
	if len(snapshot.Calls) == 0 {
		return
	}

	services := make([]string, 0, len(snapshot.Calls))
	for service := range snapshot.Calls {
		services = append(services, service)
	}
	sort.Strings(services)

	separator := strings.Repeat("-", 80)
	fmt.Println("BRIDGE CALLS")
	fmt.Println(separator)
	for _, service := range services {
		m := snapshot.Calls[service]
		fmt.Printf("%-28s calls=%-5d ok=%-5d failed=%-5d avg=%s\n",
			service, m.TotalCalls, m.SuccessfulCalls, m.FailedCalls,
			m.AvgDuration.Round(time.Millisecond))
	}
	fmt.Println(separator)
}
