package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hivemind/internal/hive"
	"hivemind/internal/logging"
)

var (
	// Global flags
	verbose     bool
	workspace   string
	sessionFile string
	swarmFile   string
	execute     bool
	noStream    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hivemind",
	Short: "HiveMind - multi-agent conversation orchestrator",
	Long: `HiveMind runs a shared conversation between a human Host and a swarm
of named drones, each backed by its own model and persona.

Address a drone with @name. Drones see the full conversation framed
from their own point of view, can pull context from TheBrain knowledge
store, and can have fenced python/sh snippets in your message executed
with the results attached to the prompt.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Interactive mode has its own UI, skip the console logger
		if cmd.Use == "hivemind" && cmd.CalledAs() == "hivemind" {
			return logging.Initialize(workspace)
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return logging.Initialize(workspace)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// renderCmd prints the markdown transcript of a saved session
var renderCmd = &cobra.Command{
	Use:   "render [session.json]",
	Short: "Render a saved session as a markdown transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := hive.Load(args[0])
		if err != nil {
			return err
		}
		defer session.Close()
		fmt.Print(session.Transcript())
		return nil
	},
}

// dronesCmd lists the drones registered in a saved session
var dronesCmd = &cobra.Command{
	Use:   "drones [session.json]",
	Short: "List the drones registered in a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := hive.Load(args[0])
		if err != nil {
			return err
		}
		defer session.Close()

		drones := session.Directory.List()
		if len(drones) == 0 {
			fmt.Println("No drones registered.")
			return nil
		}
		for _, info := range drones {
			drone, _ := session.Directory.Get(info.Name)
			persona := strings.ReplaceAll(drone.Persona, "\n", " ")
			if len(persona) > 60 {
				persona = persona[:57] + "..."
			}
			fmt.Printf("%-16s %-20s %s\n", drone.Name, drone.Model, persona)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hivemind version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hivemind v0.3.0")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "Workspace directory")

	rootCmd.Flags().StringVarP(&sessionFile, "session", "s", "", "Session file to resume")
	rootCmd.Flags().StringVar(&swarmFile, "swarm", "", "Swarm manifest with drones to register")
	rootCmd.Flags().BoolVarP(&execute, "execute", "x", false, "Execute fenced code blocks in messages")
	rootCmd.Flags().BoolVar(&noStream, "no-stream", false, "Disable streamed replies")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(dronesCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
