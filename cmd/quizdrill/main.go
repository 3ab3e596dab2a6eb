package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pavelanni/quizdrill/internal/bank"
	"github.com/pavelanni/quizdrill/internal/handler"
	appI18n "github.com/pavelanni/quizdrill/internal/i18n"
	"github.com/pavelanni/quizdrill/internal/llm"
	"github.com/pavelanni/quizdrill/internal/llm/prompts"
	"github.com/pavelanni/quizdrill/internal/model"
	"github.com/pavelanni/quizdrill/internal/quiz"
	"github.com/pavelanni/quizdrill/internal/store"
	"github.com/pavelanni/quizdrill/internal/tui"
)

// quitSignals cancel a running quiz.
var quitSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	// Secrets such as QUIZDRILL_LLM_KEY may live in a local .env file.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quizdrill",
		Short: "Terminal practice exams from JSON or YAML question banks",
	}

	run := runCmd()
	root.AddCommand(run, checkCmd(), exportCmd(), serveCmd())

	// Make "run" the default when no subcommand is given.
	root.RunE = run.RunE

	// Register run flags on root so bare `quizdrill --bank ...` still works.
	root.Flags().AddFlagSet(run.Flags())

	return root
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Take an exam in the terminal",
		RunE:  runQuiz,
	}
	f := cmd.Flags()
	f.StringP("bank", "b", "", "Question bank file, URL or builtin:<name> (overrides --variant)")
	f.StringP("variant", "v", string(model.VariantStandard), "Bank variant (standard, extended)")
	f.String("bank-standard", "", "Location of the standard bank (default builtin:standard)")
	f.String("bank-extended", "", "Location of the extended bank (default builtin:extended)")
	f.IntP("num-questions", "n", 0, "Number of questions per exam (0 = all available)")
	f.Bool("shuffle", true, "Randomize question and option order")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.String("history", "quizdrill.db", "SQLite database for attempt history (empty disables)")
	f.Bool("no-color", false, "Disable colored output")
	f.String("log-file", "", "Write logs to this file (logs are discarded otherwise)")
	addLogFlags(cmd)
	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [location...]",
		Short: "Validate question banks (all builtin banks when none are given)",
		RunE:  runCheck,
	}
	addLogFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export attempt history as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("history", "quizdrill.db", "SQLite database for attempt history")
	f.StringP("bank", "b", "", "Only export attempts on this bank")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve attempt history and reviews over HTTP",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", "localhost:8080", "HTTP listen address")
	f.String("history", "quizdrill.db", "SQLite database for attempt history")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty disables explanations)")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("prompt-variant", string(prompts.PromptStandard), "Explanation prompt variant (brief, standard, detailed)")
	f.StringSlice("cors-origins", nil, "Origins allowed to fetch the JSON endpoints (empty disables CORS)")
	addLogFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command, w io.Writer) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(w, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZDRILL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizdrill")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizdrill")
	v.AddConfigPath("/etc/quizdrill")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// quizConfig collects the run flags.
func quizConfig(v *viper.Viper) model.QuizConfig {
	return model.QuizConfig{
		Bank:         v.GetString("bank"),
		Variant:      model.Variant(strings.ToLower(strings.TrimSpace(v.GetString("variant")))),
		BankStandard: v.GetString("bank-standard"),
		BankExtended: v.GetString("bank-extended"),
		NumQuestions: v.GetInt("num-questions"),
		Shuffle:      v.GetBool("shuffle"),
		Lang:         v.GetString("lang"),
		NoColor:      v.GetBool("no-color") || !term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)

	// The terminal belongs to the UI; logs go to a file or nowhere.
	logOut := io.Discard
	if path := v.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	setupLogging(cmd, logOut)

	cfg := quizConfig(v)
	if err := appI18n.Init(cfg.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	opts := tui.Options{
		Source:  tui.BankSource(&bank.Loader{}, cfg),
		Variant: cfg.Variant,
		Lang:    cfg.Lang,
		NoColor: cfg.NoColor,
	}
	if path := v.GetString("history"); path != "" {
		db, err := store.New(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		opts.Recorder = db
	}

	ctx, stop := signal.NotifyContext(context.Background(), quitSignals...)
	defer stop()

	slog.Info("starting quiz", "bank", cfg.Bank, "variant", cfg.Variant, "num_questions", cfg.NumQuestions, "shuffle", cfg.Shuffle, "lang", cfg.Lang)
	review, done, err := tui.Run(ctx, opts, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if done {
		fmt.Fprintln(cmd.OutOrStdout(), appI18n.Td(appI18n.Context(cfg.Lang), "AnsweredOutOf",
			map[string]any{"Score": review.Score, "Total": review.Total}))
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	setupLogging(cmd, os.Stderr)

	locations := args
	if len(locations) == 0 {
		for _, name := range bank.Builtins() {
			locations = append(locations, bank.BuiltinPrefix+name)
		}
	}
	return checkBanks(cmd.Context(), cmd.OutOrStdout(), &bank.Loader{}, locations)
}

// checkBanks loads and validates every location, reporting one line each.
// It fails if any bank is invalid.
func checkBanks(ctx context.Context, w io.Writer, loader *bank.Loader, locations []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var failed []string
	for _, loc := range locations {
		b, err := loader.Load(ctx, loc)
		if err == nil {
			var qs []quiz.Question
			qs, err = quiz.Normalize(b.Questions, quiz.WithoutShuffle())
			if err == nil {
				single, multi, fill := countKinds(qs)
				fmt.Fprintf(w, "ok    %s  %d questions (%d single, %d multiple, %d fill-in)  sha256:%s\n",
					loc, len(qs), single, multi, fill, b.Digest[:12])
				continue
			}
		}
		fmt.Fprintf(w, "FAIL  %s  %v\n", loc, err)
		failed = append(failed, loc)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d banks invalid: %s", len(failed), len(locations), strings.Join(failed, ", "))
	}
	return nil
}

func countKinds(qs []quiz.Question) (single, multi, fill int) {
	for _, q := range qs {
		switch {
		case q.IsFillInBlank():
			fill++
		case q.IsMultipleChoice():
			multi++
		default:
			single++
		}
	}
	return single, multi, fill
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd, os.Stderr)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("history"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportAll(v.GetString("bank"))
	if err != nil {
		return fmt.Errorf("export attempts: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	slog.Info("exported attempts", "count", len(export.Attempts), "output", outPath)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd, os.Stderr)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("history"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	var explainer handler.Explainer
	if url := v.GetString("llm-url"); url != "" {
		variant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
		client := llm.New(url, v.GetString("llm-key"), v.GetString("llm-model"), variant)
		if err := client.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "url", url, "model", client.Model(), "variant", client.Variant())
		explainer = client
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if origins := v.GetStringSlice("cors-origins"); len(origins) > 0 {
		r.Use(corsHandler(origins))
	}
	r.Use(appI18n.Middleware(lang))
	handler.New(db, explainer).Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server", "addr", addr, "lang", lang, "explanations", explainer != nil)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsHandler lets browser tools on other origins read attempts and exports.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	})
}
