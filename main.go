package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"iris-attendance-sync/internal/platform/config"
	"iris-attendance-sync/internal/runner"
)

func configPath() string {
	if p := os.Getenv("SYNC_CONFIG"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func main() {
	// 설정 읽어오기
	cfg, err := config.Load(configPath())
	if err != nil {
		panic(err)
	}
	log.Printf("[INFO] mode:%s", cfg.Mode)

	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	svc := runner.NewService(cfg, nil)

	switch command {
	case "run":
		runOnce(svc)
	case "serve":
		serve(cfg, svc)
	default:
		fmt.Println("Usage: iris-attendance-sync [run|serve]")
		os.Exit(2)
	}
}

// runOnce: 한 번 동기화하고 종료한다. 치명적 오류면 종료 코드 1.
func runOnce(svc *runner.Service) {
	report, err := svc.RunOnce(context.Background())
	if err != nil {
		os.Exit(1)
	}
	log.Printf("[INFO] 실행 %s: %s", report.RunID, report.Stats)
}

// serve: 트리거/상태 조회용 HTTP 서버.
func serve(cfg *config.Config, svc *runner.Service) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS (개발 중에만 필요)
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// 헬스
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// /api/v1
	api := r.Group("/api/v1", runner.RequireToken(cfg.Server.Token))
	runner.RegisterRoutes(api, svc)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
