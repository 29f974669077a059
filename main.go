// severity-report analyzes vibration logger exports and GPS tracks
// recorded on the same rides, scoring each second of riding and
// rendering normalized severity reports.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ridemetrics/severity.report/internal/version"
)

var (
	dbPath       = flag.String("db", "vibration_data.db", "Path to the sqlite database")
	configPath   = flag.String("config", "", "Path to a tuning config JSON file")
	displayUnits = flag.String("units", "kmph", "Display units for velocity plots (mps, mph, kmph, kph)")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "analyze":
		handleAnalyze()
	case "gps":
		handleGPS()
	case "tracks":
		handleTracks()
	case "normalize":
		handleNormalize()
	case "report":
		handleReport()
	case "map":
		handleMap()
	case "migrate":
		handleMigrate(args)
	case "version":
		fmt.Printf("severity-report version %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`severity-report - vibration severity analysis for ride data

Usage: severity-report [options] <command>

Commands:
  analyze     Analyze all vibration exports in the data directory
  gps         Ingest GPX track files from the tracks directory
  tracks      Rebuild the processed track (gap fill + velocity)
  normalize   Print robust-max statistics for the stored severity series
  report      Write comparison charts and severity/velocity plots
  map         Write the combined severity track map
  migrate     Manage the database schema (see 'migrate help')
  version     Show version information
  help        Show this help message

Options:
  -db <path>      Path to the sqlite database (default: vibration_data.db)
  -config <path>  Path to a tuning config JSON file
  -units <unit>   Display units for velocity plots (default: kmph)`)
}
