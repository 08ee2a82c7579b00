// Package main is the entry point for the rpncalc command.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/rpncalc/pkg/api"
	grpcapi "github.com/lemonberrylabs/rpncalc/pkg/api/grpc"
	"github.com/lemonberrylabs/rpncalc/pkg/batch"
	"github.com/lemonberrylabs/rpncalc/pkg/driver"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
	"github.com/lemonberrylabs/rpncalc/web"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpncalc [file]",
		Short: "Convert infix expressions to postfix and evaluate them",
		Long: "Reads one whitespace-separated infix expression per line from the\n" +
			"given file, or stdin when no file is given, and prints its postfix\n" +
			"form and integer result.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runDriver,
		Version:      version + " (commit=" + commit + ", built=" + date + ")",
	}
	rootCmd.SetVersionTemplate("rpncalc version {{.Version}}\n")
	rootCmd.Flags().String("format", "text", "Output format: text or json")

	rootCmd.AddCommand(newServeCmd(), newBatchCmd())
	return rootCmd
}

func runDriver(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := driver.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = driver.Run(ctx, in, cmd.OutOrStdout(), format)
	return err
}

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve the HTTP API, web UI and gRPC service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runServe,
	}
	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	serveCmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	serveCmd.Flags().Int("history-limit", -1, "Maximum stored calculations, 0 for unlimited (default 1000, env RPNCALC_HISTORY_LIMIT)")
	serveCmd.Flags().Bool("access-log", false, "Log every HTTP request")
	return serveCmd
}

func runServe(cmd *cobra.Command, args []string) error {
	port := envOrDefault("PORT", "8787")
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = fmt.Sprintf("%d", v)
	}

	grpcPort := envOrDefault("GRPC_PORT", "8788")
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		grpcPort = fmt.Sprintf("%d", v)
	}

	host := envOrDefault("HOST", "0.0.0.0")
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}

	historyLimit, err := strconv.Atoi(envOrDefault("RPNCALC_HISTORY_LIMIT", "1000"))
	if err != nil {
		return fmt.Errorf("invalid RPNCALC_HISTORY_LIMIT: %w", err)
	}
	if v, _ := cmd.Flags().GetInt("history-limit"); v >= 0 {
		historyLimit = v
	}

	accessLog, _ := cmd.Flags().GetBool("access-log")

	addr := fmt.Sprintf("%s:%s", host, port)
	grpcAddr := fmt.Sprintf("%s:%s", host, grpcPort)

	s := store.NewWithLimit(historyLimit)
	server := api.New(s, api.Options{AccessLog: accessLog})
	web.New(s).Register(server.App())

	// Start gRPC server
	grpcServer := grpcapi.New(s)
	go func() {
		log.Printf("gRPC server listening on %s", grpcAddr)
		if err := grpcServer.Serve(grpcAddr); err != nil {
			log.Fatalf("gRPC server error: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down rpncalc...")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("rpncalc listening on %s (history limit %d)", addr, historyLimit)
	return server.Listen(addr)
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "batch <file>",
		Short:        "Check a YAML/JSON file of expressions against expected results",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runBatch,
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	f, err := batch.ParseFile(args[0])
	if err != nil {
		return err
	}

	outcomes := batch.Run(f)
	out := cmd.OutOrStdout()
	for _, o := range outcomes {
		if o.Passed {
			fmt.Fprintf(out, "PASS %s\n", o.Case.Name)
		} else {
			fmt.Fprintf(out, "FAIL %s: %s\n", o.Case.Name, o.Reason)
		}
	}

	failures := batch.Failures(outcomes)
	fmt.Fprintf(out, "%d/%d cases passed\n", len(outcomes)-failures, len(outcomes))
	if failures > 0 {
		return fmt.Errorf("%d case(s) failed", failures)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
