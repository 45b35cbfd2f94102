// =============================================================================
// ResearchFlow 主入口
// =============================================================================
// 对一个研究问题执行完整流水线并打印最终报告与评估结果。
//
// 使用方法:
//
//	researchflow                          # 使用内置示例问题
//	researchflow -config config.yaml      # 指定配置文件
//	researchflow -question "..."          # 指定研究问题
//	researchflow version                  # 显示版本信息
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/researchflow"
	"github.com/BaSui01/researchflow/config"
	"github.com/BaSui01/researchflow/internal/telemetry"
)

// 版本信息（构建时注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// defaultQuestion 是无参数运行时的示例研究问题。
const defaultQuestion = "What are the main challenges and opportunities for renewable energy adoption in developing countries?"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("researchflow %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		return
	}

	fs := flag.NewFlagSet("researchflow", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	question := fs.String("question", defaultQuestion, "research question to answer")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("telemetry init failed, continuing without export", zap.Error(err))
		providers = nil
	}
	defer func() {
		if providers != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = providers.Shutdown(shutdownCtx)
		}
	}()

	pipeline, err := researchflow.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build pipeline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = pipeline.Close() }()

	fmt.Println("Starting multi-agent research")
	fmt.Println("==================================================")

	report, summary := pipeline.Run(context.Background(), *question)

	fmt.Println("\nResearch complete")
	fmt.Println("==================================================")
	fmt.Print(report.Render())

	fmt.Println("\nEvaluation results")
	fmt.Println("==================================================")
	if summary.Success {
		for name, score := range summary.Scores {
			fmt.Printf("%s: %.3f\n", name, score)
		}
	} else if summary.Error != "" {
		fmt.Printf("Evaluation failed: %s\n", summary.Error)
	} else {
		fmt.Println("Evaluation did not pass thresholds:")
		for _, mr := range summary.Details {
			fmt.Printf("%s: %.3f (threshold %.2f)\n", mr.Name, mr.Score, mr.Threshold)
		}
	}
}

// buildLogger 根据配置构建 zap logger。
func buildLogger(cfg config.LogConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
