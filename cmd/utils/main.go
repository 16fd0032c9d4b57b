package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/aquamarinepk/aqm"
	"github.com/foodshare/foodshare/cmd/utils/internal/commands"
)

const (
	appName    = "foodshare-utils"
	appVersion = "0.1.0"
)

type command struct {
	summary string
	run     func(ctx context.Context, config *aqm.Config, logger aqm.Logger) error
}

var commandTable = map[string]command{
	"seed-demo": {
		summary: "Create a week of demo donations for the demo donors and agents",
		run:     commands.SeedDemo,
	},
	"clear-demo": {
		summary: "Remove demo donations",
		run:     commands.ClearDemo,
	},
	"reset-db": {
		summary: "Drop the donation database (USE WITH CAUTION)",
		run:     commands.ResetDB,
	},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	switch name {
	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	cmd, ok := commandTable[name]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	config, err := aqm.LoadConfig("UTILS", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}
	logger := aqm.NewLogger(config.GetStringOrDef("log.level", "info"))

	if err := cmd.run(context.Background(), config, logger); err != nil {
		log.Fatalf("%s failed: %v", name, err)
	}
	logger.Info("Command completed", "command", name)
}

func printUsage() {
	names := make([]string, 0, len(commandTable))
	for name := range commandTable {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%s - FoodShare maintenance commands\n\nUsage:\n  %s <command> [options]\n\nCommands:\n", appName, appName)
	for _, name := range names {
		fmt.Printf("  %-12s %s\n", name, commandTable[name].summary)
	}
	fmt.Printf("  %-12s %s\n  %-12s %s\n", "version", "Print version information", "help", "Show this help message")

	fmt.Print(`
Environment Variables:
  UTILS_DB_MONGO_URL    MongoDB connection URL (default: mongodb://localhost:27017)
  UTILS_DB_MONGO_NAME   Database name (default: foodshare_donation)
  UTILS_LOG_LEVEL       Log level: debug, info, warn, error (default: info)
`)
}
