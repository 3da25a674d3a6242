// Package main provides a performance benchmarking tool for the SignalVane CLI.
// It generates synthetic data directories of increasing size, runs every read
// command against them several times, treats the first successful run as cold and
// averages the rest as warm, and writes the timings to a CSV file.
//
// Prerequisites:
// - signalvane binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic data directories are created
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/history"
	"github.com/signalvane/signalvane/schema"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset  string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir   string
	Timeout   time.Duration
	Runs      int
	Snapshots int
	Datasets  map[string]int // dataset name -> narratives per snapshot
	Order     []string
}

// benchCommand is one CLI invocation and the phrase its text output ends with.
type benchCommand struct {
	Name       string
	Args       []string
	Completion string
}

var commands = []benchCommand{
	{Name: "trends", Args: []string{"trends", "--limit", "1000"}, Completion: "Trends computed in"},
	{Name: "narratives", Args: []string{"narratives", "--limit", "1000"}, Completion: "loaded in"},
	{Name: "history", Args: []string{"history", "Narrative 0"}, Completion: "observations loaded in"},
	{Name: "health", Args: []string{"health"}, Completion: "Snapshots"},
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:   os.Args[1],
		Timeout:   time.Minute,
		Runs:      5,
		Snapshots: contract.DefaultRetention,
		Datasets:  map[string]int{"small": 10, "medium": 100, "large": 1000},
		Order:     []string{"small", "medium", "large"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the signalvane binary exists and the work dir is usable.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("signalvane"); err != nil {
		return fmt.Errorf("signalvane binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks generates each dataset and times every command against it.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %d snapshots, %v timeout, %d runs\n",
		len(config.Order), config.Snapshots, config.Timeout, config.Runs)

	for _, name := range config.Order {
		dataDir := filepath.Join(config.WorkDir, name)
		fmt.Printf("Generating %s dataset (%d narratives) in %s\n", name, config.Datasets[name], dataDir)
		if err := generateDataset(dataDir, config.Datasets[name], config.Snapshots); err != nil {
			return nil, fmt.Errorf("failed to generate %s dataset: %w", name, err)
		}

		for _, c := range commands {
			results = append(results, runBenchmarkSuite(config, name, dataDir, c))
		}
	}

	return results, nil
}

// generateDataset writes a history log and narratives artifact with n narratives.
func generateDataset(dataDir string, n, snapshots int) error {
	rng := rand.New(rand.NewPCG(42, uint64(n)))
	now := time.Now().UTC().Truncate(time.Second)

	snaps := make([]schema.Snapshot, snapshots)
	for i := range snaps {
		entities := make([]schema.Entity, n)
		for j := range entities {
			entities[j] = schema.Entity{Name: fmt.Sprintf("Narrative %d", j), Score: float64(rng.IntN(101)) / 10}
		}
		snaps[i] = schema.Snapshot{
			Timestamp: now.Add(-time.Duration(snapshots-i) * time.Hour),
			Entities:  entities,
			Metrics:   map[string]any{"narrative_count": n},
		}
	}

	data, err := history.Encode(snaps)
	if err != nil {
		return err
	}
	if err := contract.WriteFileAtomic(filepath.Join(dataDir, contract.HistoryFileName), data, 0o644); err != nil {
		return err
	}

	narratives := make([]schema.Narrative, n)
	for j := range narratives {
		last := snaps[len(snaps)-1].Entities[j]
		narratives[j] = schema.Narrative{
			Name:         last.Name,
			Explanation:  "Synthetic narrative for benchmarking.",
			NoveltyScore: last.Score,
			Evidence:     schema.Evidence{GitHub: []string{"example/repo"}},
		}
	}
	return contract.WriteJSONAtomic(filepath.Join(dataDir, contract.NarrativesFileName), narratives)
}

// runBenchmarkSuite runs one command several times and summarizes the timings.
func runBenchmarkSuite(config BenchmarkConfig, dataset, dataDir string, c benchCommand) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", c.Name, dataset)

	cold, warm := runBenchmark(config, dataDir, c)

	coldTimeStr := "TIMEOUT"
	if cold > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", cold)
	}
	warmAvg := "TIMEOUT"
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:  dataset,
		Command:  c.Name,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a signalvane command multiple times and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, dataDir string, c benchCommand) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, c.Args...)
	args = append(args, "--data-dir", dataDir, "--cache-backend", "none", "--color", "no")

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("signalvane", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), c.Completion) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/signalvane_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, c := range commands {
		fmt.Printf("%s:\n", c.Name)
		for _, result := range results {
			if result.Command == c.Name {
				fmt.Printf("  %-8s: Cold: %s, Warm: %s\n", result.Dataset, result.ColdTime, result.WarmTime)
			}
		}
	}
}
