// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"microlearning-go/internal/config"
	"microlearning-go/internal/extractor"
	"microlearning-go/internal/generator"
	"microlearning-go/internal/handler"
	"microlearning-go/internal/pipeline"
	"microlearning-go/internal/repository"
	"microlearning-go/internal/service"
	"microlearning-go/pkg/database"
	"microlearning-go/pkg/kafka"
	"microlearning-go/pkg/llm"
	"microlearning-go/pkg/log"
	"microlearning-go/pkg/storage"
	"microlearning-go/pkg/tika"
)

func main() {
	// 1. 初始化配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")
	if cfg.LLM.APIKey == "" {
		log.Warnf("未配置 LLM API Key（GEMINI_API_KEY / LLM_API_KEY），所有脚本生成都会失败")
	}

	// 3. 初始化数据库与文件存储
	database.InitDB(cfg.Database)
	store := mustFileStore(cfg.Storage)

	// 4. 初始化 Repository
	fileRepo := repository.NewFileRepository(database.DB)
	videoRepo := repository.NewVideoRepository(database.DB)

	// 5. 初始化文件处理管道 (Processor)
	var pdfBackend extractor.PDFTextExtractor
	if cfg.Extractor.TikaURL != "" {
		pdfBackend = extractor.NewTikaPDF(tika.NewClient(cfg.Extractor.TikaURL))
		log.Infof("PDF 提取使用 Tika: %s", cfg.Extractor.TikaURL)
	}
	processor := pipeline.NewProcessor(
		store,
		extractor.New(pdfBackend),
		generator.New(llm.NewClient(cfg.LLM)),
		fileRepo,
	)

	// 6. 初始化任务调度器
	var (
		dispatcher   service.Dispatcher
		shutdownJobs func()
	)
	switch cfg.Dispatcher.Mode {
	case config.DispatcherModeKafka:
		database.InitRedis(cfg.Database.Redis)
		producer := kafka.NewProducer(cfg.Kafka)
		consumer := kafka.NewConsumer(cfg.Kafka, processor, repository.NewTaskClaimRepository(database.RDB))
		consumerCtx, stopConsumer := context.WithCancel(context.Background())
		consumerDone := make(chan struct{})
		go func() {
			defer close(consumerDone)
			consumer.Run(consumerCtx)
		}()
		dispatcher = producer
		shutdownJobs = func() {
			stopConsumer()
			<-consumerDone
			if err := producer.Close(); err != nil {
				log.Error("关闭 Kafka 生产者失败", err)
			}
			_ = database.RDB.Close()
		}
	default:
		async := pipeline.NewAsyncDispatcher(processor)
		dispatcher = async
		shutdownJobs = async.Wait
	}

	// 7. 初始化 Service 与 Handler
	uploadService := service.NewUploadService(store, fileRepo, dispatcher)
	fileService := service.NewFileService(fileRepo, videoRepo)

	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(
		handler.NewUploadHandler(uploadService),
		handler.NewFileHandler(fileService),
		cfg.Server.AllowOrigins,
	)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP 服务器关闭失败", err)
	}

	// 等待正在执行的脚本生成任务
	shutdownJobs()
	log.Info("服务已优雅关闭")
}

func mustFileStore(cfg config.StorageConfig) storage.FileStore {
	switch cfg.Driver {
	case config.StorageDriverMinIO:
		store, err := storage.NewMinioStore(context.Background(), cfg.MinIO)
		if err != nil {
			log.Fatal("初始化 MinIO 存储失败", err)
		}
		return store
	default:
		store, err := storage.NewLocalStore(afero.NewOsFs(), cfg.LocalDir)
		if err != nil {
			log.Fatal("初始化本地存储失败", err)
		}
		log.Infof("上传目录已就绪: %s", cfg.LocalDir)
		return store
	}
}
