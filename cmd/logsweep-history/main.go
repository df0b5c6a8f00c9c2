package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"logsweep/internal/database"
	"logsweep/internal/exitcodes"
	"logsweep/internal/scan"
)

func main() {
	dbPath := flag.String("db", "logsweep.db", "Path to the deletion history database")
	recent := flag.Int("recent", 0, "Show N most recent removal attempts")
	runs := flag.Int("runs", 0, "Show N most recent runs")
	run := flag.Int64("run", 0, "Show removal attempts of one run")
	stats := flag.Bool("stats", false, "Show deletion statistics")
	set := flag.String("set", "", "Filter by file set (logs, outputs)")
	action := flag.String("action", "", "Filter by action (DELETE, SKIP, ERROR)")
	days := flag.Int("days", 30, "Number of days for statistics")
	prune := flag.Int("prune", 0, "Delete records older than N days, then vacuum")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	// The viewer never creates a database
	if _, err := os.Stat(*dbPath); errors.Is(err, fs.ErrNotExist) {
		log.Printf("ERROR: Database %s does not exist", *dbPath)
		os.Exit(exitcodes.InvalidConfig)
	}

	db, err := database.NewDeletionDB(*dbPath)
	if err != nil {
		log.Printf("ERROR: Failed to open database %s: %v", *dbPath, err)
		os.Exit(exitcodes.RuntimeError)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *prune > 0:
		err = pruneHistory(db, *prune)
	case *stats:
		err = showStats(db, *days, *jsonOutput)
	case *runs > 0:
		err = showRuns(db, *runs, *jsonOutput)
	case *run > 0:
		err = showRun(db, *run, *jsonOutput)
	case *recent > 0:
		err = showRecent(db, *recent, *jsonOutput)
	case *set != "":
		if *set != scan.SetLogs && *set != scan.SetOutputs {
			log.Printf("ERROR: Unknown file set %q (want %s or %s)", *set, scan.SetLogs, scan.SetOutputs)
			os.Exit(exitcodes.InvalidConfig)
		}
		err = showBySet(db, *set, *jsonOutput)
	case *action != "":
		err = showByAction(db, *action, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  logsweep-history -recent 10        # Show 10 most recent removal attempts")
		fmt.Println("  logsweep-history -runs 5           # Show the last 5 runs and their choices")
		fmt.Println("  logsweep-history -stats            # Show deletion statistics")
		fmt.Println("  logsweep-history -set outputs      # Show removals of output files")
		fmt.Println("  logsweep-history -action ERROR     # Show failed removals")
		fmt.Println("  logsweep-history -prune 90         # Forget records older than 90 days")
		os.Exit(exitcodes.InvalidConfig)
	}

	if err != nil {
		log.Printf("ERROR: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func showStats(db *database.DeletionDB, days int, jsonOutput bool) error {
	stats, err := db.GetDeletionStats(days)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if jsonOutput {
		return printJSON(stats)
	}

	fmt.Printf("Sweep Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Runs:             %d\n", stats.Runs)
	fmt.Printf("Total Deletions:  %d\n", stats.TotalDeletions)
	fmt.Printf("Total Skipped:    %d\n", stats.TotalSkipped)
	fmt.Printf("Total Errors:     %d\n", stats.TotalErrors)
	fmt.Printf("Space Freed:      %s\n\n", formatBytes(stats.TotalSpaceFreed))

	printCounts("By File Set:", stats.BySet)
	printCounts("By Choice:", stats.ByChoice)
	return nil
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(title)
	for _, k := range keys {
		fmt.Printf("  %-15s %d\n", k, counts[k])
	}
	fmt.Println()
}

func showRuns(db *database.DeletionDB, limit int, jsonOutput bool) error {
	runs, err := db.GetRecentRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to get recent runs: %w", err)
	}

	if jsonOutput {
		return printJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tStarted\tLogs\tOutputs\tChoice\tMessage")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t-------\t------\t-------")

	for _, r := range runs {
		choice := r.Choice
		if r.FinishedAt == nil {
			choice = "unfinished"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.LogsFound, r.OutputsFound, choice, r.Message)
	}
	return w.Flush()
}

func showRun(db *database.DeletionDB, runID int64, jsonOutput bool) error {
	records, err := db.GetDeletionsByRun(runID)
	if err != nil {
		return fmt.Errorf("failed to query run %d: %w", runID, err)
	}

	if jsonOutput {
		return printJSON(records)
	}

	fmt.Printf("Removal attempts of run %d\n\n", runID)
	return printRecords(records)
}

func showRecent(db *database.DeletionDB, limit int, jsonOutput bool) error {
	records, err := db.GetRecentDeletions(limit)
	if err != nil {
		return fmt.Errorf("failed to get recent deletions: %w", err)
	}

	if jsonOutput {
		return printJSON(records)
	}

	return printRecords(records)
}

func showBySet(db *database.DeletionDB, set string, jsonOutput bool) error {
	records, err := db.GetDeletionsBySet(set)
	if err != nil {
		return fmt.Errorf("failed to query by file set: %w", err)
	}

	if jsonOutput {
		return printJSON(records)
	}

	fmt.Printf("Records for file set: %s\n\n", set)
	return printRecords(records)
}

func showByAction(db *database.DeletionDB, action string, jsonOutput bool) error {
	records, err := db.GetDeletionsByAction(action)
	if err != nil {
		return fmt.Errorf("failed to query by action: %w", err)
	}

	if jsonOutput {
		return printJSON(records)
	}

	fmt.Printf("Records with action: %s\n\n", action)
	return printRecords(records)
}

func pruneHistory(db *database.DeletionDB, days int) error {
	removed, err := db.DeleteOldRecords(days)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	if err := db.Vacuum(); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	fmt.Printf("Removed %d records older than %d days\n", removed, days)
	return nil
}

func printRecords(records []database.DeletionRecord) error {
	if len(records) == 0 {
		fmt.Println("No records found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tRun\tTimestamp\tAction\tSet\tSize\tPath\tError")
	_, _ = fmt.Fprintln(w, "--\t---\t---------\t------\t---\t----\t----\t-----")

	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.RunID, r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Action, r.FileSet, formatBytes(r.Size), r.Path, r.ErrorMessage)
	}
	return w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
