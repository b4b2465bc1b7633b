package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "repradar",
		Short: "Track how a name or brand appears in search results and score its reputation",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(trackCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(keywordsCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(sentimentCmd())
	root.AddCommand(controlCmd())
	root.AddCommand(untrackCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func trackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track <keyword>",
		Short: "Fetch current search results for a keyword and update its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(args[0])
		},
	}
}

func reportCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "report <keyword>",
		Short: "Show the stored report and reputation score for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func keywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "List tracked keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeywords()
		},
	}
}

func historyCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history <keyword>",
		Short: "Show the score snapshot trail for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func sentimentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sentiment <keyword> <result-id> <positive|neutral|negative>",
		Short: "Annotate a result's sentiment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSentiment(args[0], args[1], args[2])
		},
	}
}

func controlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "control <keyword> <result-id>",
		Short: "Toggle whether you control a result's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runControl(args[0], args[1])
		},
	}
}

func untrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untrack <keyword>",
		Short: "Delete a keyword's report and score history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUntrack(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "server port")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "server port")
	return cmd
}
