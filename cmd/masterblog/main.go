package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/masterblog/core/cmd/masterblog/commands"
)

// @title Masterblog API
// @version 1.0
// @description JSON endpoints of the Masterblog server

// @host localhost:5000
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:           "masterblog",
		Short:         "Masterblog web server",
		Long:          `Masterblog is a small blog: posts can be written, liked, edited and deleted through HTML forms, and are kept in a JSON document or a PostgreSQL table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewPostsCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
