package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"schedrisk-mcp/internal/config"
	"schedrisk-mcp/internal/cpm"
	"schedrisk-mcp/internal/logging"
	"schedrisk-mcp/internal/mcp"
	"schedrisk-mcp/internal/schedule"
	"schedrisk-mcp/internal/simulation"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
	store   *schedule.Store
)

var rootCmd = &cobra.Command{
	Use:   "schedrisk-mcp",
	Short: "schedrisk-mcp is a Schedule Risk Simulation MCP Server",
	Long: `An MCP Server that quantifies completion-date and cost uncertainty for project
schedules via Monte Carlo simulation (PERT/triangular duration sampling over a
critical-path task network).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		store = schedule.NewStore()
		if err := store.LoadDir(cfg.ScheduleDir); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.ScheduleDir).Msg("Failed to load schedules")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Int("schedules", len(store.ListSchedules())).
			Msg("schedrisk-mcp starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		engine := simulation.NewEngine(store, store, cpm.Planner{})
		if cfg.Seed != 0 {
			engine.SetSeed(cfg.Seed)
		}
		if cfg.Workers > 0 {
			engine.SetWorkers(cfg.Workers)
		}

		log.Info().Msg("MCP Server starting Stdio loop")
		server := mcp.NewServer(cfg, store, engine)
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("MCP server terminated")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
