package main

import (
	"github.com/spf13/cobra"

	"metacore/internal/version"
)

var (
	postgresDSN   string
	redisAddr     string
	redisPassword string
	redisDB       int
)

var rootCmd = &cobra.Command{
	Use:   version.AppName,
	Short: "Metabolism analysis core for cardiopulmonary exercise testing",
	Long: `metacore converts breath-by-breath gas-exchange measurements into a
denoised fat/carbohydrate oxidation profile over workload, and derives
the FatMax and Crossover markers from it.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.AppName + " " + version.BuildVersion)
		cmd.Println("Use 'metacore analyze --input breaths.json' to run the pipeline.")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&postgresDSN, "postgres-dsn", "", "Postgres DSN for the record store (required by persist subcommands)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address for the record cache")
	rootCmd.PersistentFlags().StringVar(&redisPassword, "redis-password", "", "Redis password")
	rootCmd.PersistentFlags().IntVar(&redisDB, "redis-db", 0, "Redis logical database index")
}
