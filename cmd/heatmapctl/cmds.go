package main

import (
	"database/sql"
	"encoding/json"
	"io"
	"time"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jengzang/heatmap-backend-go/internal/config"
	"github.com/jengzang/heatmap-backend-go/internal/database"
	"github.com/jengzang/heatmap-backend-go/internal/logging"
	"github.com/jengzang/heatmap-backend-go/internal/metrics"
	"github.com/jengzang/heatmap-backend-go/internal/middleware"
	"github.com/jengzang/heatmap-backend-go/internal/models"
	"github.com/jengzang/heatmap-backend-go/internal/repository"
	"github.com/jengzang/heatmap-backend-go/internal/service"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Store one row of bucketed samples",
		Args:  cobra.NoArgs,
		RunE:  ingest}
	cmd.Flags().String("metric", "", "metric name")
	cmd.Flags().String("entity", "", "entity id")
	cmd.Flags().Int64("time-bucket", 0, "time bucket, e.g. 202610151200")
	cmd.Flags().String("dataset", "", `serialized row, e.g. "0,3|5,1|20,7"`)
	cmd.Flags().Bool("merge", false, "accumulate into the stored row")
	cmd.MarkFlagRequired("metric")
	cmd.MarkFlagRequired("entity")
	cmd.MarkFlagRequired("time-bucket")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "query",
		Short: "Print the heat map of a metric as JSON",
		Args:  cobra.NoArgs,
		RunE:  query}
	cmd.Flags().String("metric", "", "metric name")
	cmd.Flags().String("entity", "", "entity id")
	cmd.Flags().String("start", "", "start of the range in the step's layout")
	cmd.Flags().String("end", "", "end of the range in the step's layout")
	cmd.Flags().String("step", "MINUTE", "MINUTE, HOUR or DAY")
	cmd.Flags().Int64("default", 0, "value for buckets without data")
	cmd.MarkFlagRequired("metric")
	cmd.MarkFlagRequired("entity")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "token subject",
		Short: "Issue an API token signed with $JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE:  token}
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	root.AddCommand(cmd)
}

// env is what every command needs to reach the service.
type env struct {
	cfg *config.Config
	db  *sql.DB
	svc *service.HeatMapService
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg := config.Load()
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.DBPath = path
	}
	levelName, _ := cmd.Flags().GetString("log-level")
	if levelName == "" {
		levelName = "warn"
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), levelName)

	db, err := database.Open(database.Config{Path: cfg.DBPath}, logger)
	if err != nil {
		return nil, err
	}
	svc := service.NewHeatMapService(
		repository.NewMetricsRepository(db),
		service.Options{MaxPoints: cfg.MaxPoints, StrictAxis: cfg.StrictAxis},
		metrics.NewMetrics(prometheus.NewRegistry()),
		log.With(logger, "cmd", cmd.Name()),
	)
	return &env{cfg: cfg, db: db, svc: svc}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ingest(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.db.Close()

	var row models.MetricRow
	row.Metric, _ = cmd.Flags().GetString("metric")
	row.Entity, _ = cmd.Flags().GetString("entity")
	row.TimeBucket, _ = cmd.Flags().GetInt64("time-bucket")
	row.Dataset, _ = cmd.Flags().GetString("dataset")
	row.Merge, _ = cmd.Flags().GetBool("merge")

	saved, err := e.svc.SaveRow(cmd.Context(), row)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), saved)
}

func query(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.db.Close()

	var cond models.HeatMapCondition
	cond.Metric, _ = cmd.Flags().GetString("metric")
	cond.Entity, _ = cmd.Flags().GetString("entity")
	cond.Start, _ = cmd.Flags().GetString("start")
	cond.End, _ = cmd.Flags().GetString("end")
	cond.Step, _ = cmd.Flags().GetString("step")
	cond.Default, _ = cmd.Flags().GetInt64("default")

	hm, err := e.svc.ReadHeatMap(cmd.Context(), cond)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), hm)
}

func token(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ttl, _ := cmd.Flags().GetDuration("ttl")

	tok, err := middleware.IssueToken(cfg.JWTSecret, args[0], ttl)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), tok+"\n")
	return err
}
