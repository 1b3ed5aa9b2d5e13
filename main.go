package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/analyzer"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/config"
)

const version = "0.1.0"

var (
	// 全局参数
	configPath string
	verbose    bool

	// analyze 子命令参数
	analyzeFormat string
	analyzeLimit  int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ig-follower-analyzer",
	Short: "Analyze Instagram follower/following relationships from a data export",
	Long: `ig-follower-analyzer reads the ZIP archive exported from Instagram,
finds followers_1.json and following.json, and reports mutual follows,
accounts that don't follow you back, and fans you don't follow.

Run without arguments to start the MCP server over stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err = newLogger(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context())
	},
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Start the HTTP upload server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := setupSignalHandler(cmd.Context(), a)
		defer stop()
		return a.serveHTTP(ctx)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <archive.zip>",
	Short: "Analyze an Instagram data archive and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := analyzeFormat
		if format == "" {
			format = cfg.Analysis.DefaultFormat
		}
		if !config.IsValidFormat(format) {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := setupSignalHandler(cmd.Context(), a)
		defer stop()

		filePath, cleanup, err := getArchiveAsFile(ctx, logger, args[0], cfg.Server.MaxUploadBytes)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := a.analyzeFile(ctx, filePath)
		if err != nil {
			return err
		}
		text, err := analyzer.RenderAnalysis(result, analyzeLimit, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "output format: text, markdown, json")
	analyzeCmd.Flags().IntVarP(&analyzeLimit, "limit", "n", 0, "max users listed per category (0 = all)")

	rootCmd.AddCommand(serveCmd, httpCmd, analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger 构建 zap logger，输出到 stderr，stdout 留给 MCP 协议。
func newLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// newMCPServer 注册所有工具。
func newMCPServer(a *app) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"IGFollowerAnalyzer",
		version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	analyzeTool := mcp.NewTool("analyze_followers",
		mcp.WithDescription("Analyze an Instagram data export ZIP: mutual follows, accounts not following back, and fans not followed back."),
		mcp.WithString("archive_uri",
			mcp.Description("URI of the exported ZIP archive ('file://', 'http://', 'https://' or a plain local path)."),
			mcp.Required(),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format of the analysis result."),
			mcp.DefaultString("text"),
			mcp.Enum("text", "markdown", "json"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of users listed per category (0 = all)."),
			mcp.DefaultNumber(50),
		),
	)

	compareTool := mcp.NewTool("compare_follow_lists",
		mcp.WithDescription("Compare two username lists directly, without an archive."),
		mcp.WithString("followers",
			mcp.Description("Followers, separated by commas or newlines."),
			mcp.Required(),
		),
		mcp.WithString("following",
			mcp.Description("Accounts you follow, separated by commas or newlines."),
			mcp.Required(),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format of the analysis result."),
			mcp.DefaultString("text"),
			mcp.Enum("text", "markdown", "json"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of users listed per category (0 = all)."),
			mcp.DefaultNumber(50),
		),
	)

	instructionsTool := mcp.NewTool("get_instructions",
		mcp.WithDescription("Return the steps for exporting Instagram data and whether they were already shown."),
	)

	resetTool := mcp.NewTool("reset_instructions",
		mcp.WithDescription("Mark the export instructions as not shown."),
	)

	mcpServer.AddTool(analyzeTool, a.handleAnalyzeFollowers)
	mcpServer.AddTool(compareTool, a.handleCompareFollowLists)
	mcpServer.AddTool(instructionsTool, a.handleGetInstructions)
	mcpServer.AddTool(resetTool, a.handleResetInstructions)
	return mcpServer
}

func runMCP(parent context.Context) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := setupSignalHandler(parent, a)
	defer stop()

	stdio := server.NewStdioServer(newMCPServer(a))
	stdio.SetErrorLogger(zap.NewStdLog(logger))

	logger.Info("Starting IGFollowerAnalyzer MCP server via stdio")
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
