package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/wfunc/liar-game/internal/api"
	"github.com/wfunc/liar-game/internal/config"
	"github.com/wfunc/liar-game/internal/database"
	apperrors "github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/game"
	"github.com/wfunc/liar-game/internal/logger"
	"github.com/wfunc/liar-game/internal/repository"
	"github.com/wfunc/liar-game/internal/room"
	"github.com/wfunc/liar-game/internal/utils"
	"github.com/wfunc/liar-game/internal/websocket"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// serveFlags 命令行覆盖项，未设置时使用配置文件
type serveFlags struct {
	configPath string
	envFile    string
	port       int
	mode       string
	logLevel   string
}

func main() {
	cobra.CheckErr(newRootCmd().Execute())
}

func newRootCmd() *cobra.Command {
	flags := &serveFlags{}

	root := &cobra.Command{
		Use:           "liar-game",
		Short:         "找出骗子游戏服务器",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "启动游戏服务器",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}

	fs := serve.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVarP(&flags.configPath, "config", "c", "", "配置文件路径")
	fs.StringVar(&flags.envFile, "env-file", ".env", "环境变量文件，不存在时忽略")
	fs.IntVarP(&flags.port, "port", "p", 0, "HTTP端口，覆盖 server.port")
	fs.StringVar(&flags.mode, "mode", "", "运行模式，覆盖 server.mode")
	fs.StringVar(&flags.logLevel, "log-level", "", "日志级别，覆盖 log.level")

	version := &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd)
		},
	}

	root.AddCommand(serve, version)
	root.CompletionOptions.HiddenDefaultCmd = true
	return root
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("加载环境变量文件失败: %w", err)
		}
	}

	if err := config.Init(flags.configPath); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	cfg := config.Get()
	applyFlags(cmd.Flags(), flags, cfg)

	if err := logger.Init(&cfg.Log); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()

	server := NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Error("服务器启动失败", zap.Error(err))
		return err
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		return err
	}
	logger.Info("服务器已安全关闭")
	return nil
}

// applyFlags 只覆盖显式设置的命令行参数
func applyFlags(fs *pflag.FlagSet, flags *serveFlags, cfg *config.Config) {
	if fs.Changed("port") {
		cfg.Server.Port = flags.port
	}
	if fs.Changed("mode") {
		cfg.Server.Mode = flags.mode
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
}

// Server 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	vocabulary *game.Vocabulary
	timers     *game.TimerCoordinator
	sessions   *game.SessionRegistry
	rooms      *room.Directory
	hub        *websocket.Hub
	httpServer *http.Server

	shutdownCh chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        cfg,
		logger:     logger.GetLogger(),
		shutdownCh: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动找出骗子游戏服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode))

	if err := database.Init(&s.cfg.Database, logger.WithModule("database")); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseConnect, "初始化数据库连接失败")
	}
	db := database.GetDB()
	players := repository.NewPlayerRepository(db)
	records := repository.NewGameRecordRepository(db)

	gameCfg := s.cfg.Game
	gameLog := logger.WithModule("game")

	s.vocabulary = game.NewVocabulary(gameCfg.Vocabulary)
	s.timers = game.NewTimerCoordinator(gameCfg.TimerQueueSize, gameLog)
	s.sessions = game.NewSessionRegistry(gameLog)
	s.rooms = room.NewDirectory(gameCfg.MaxPlayers, logger.WithModule("room"))
	s.hub = websocket.NewHub(s.cfg.WebSocket, logger.WithModule("websocket"))

	orchestrator := game.NewOrchestrator(s.sessions, s.timers, s.rooms, s.hub, s.vocabulary, game.Options{
		MinPlayers:    gameCfg.MinPlayers,
		MaxRound:      gameCfg.MaxRound,
		MaxTurn:       gameCfg.MaxTurn,
		TurnTimeout:   gameCfg.TurnTimeout,
		VoteTimeout:   gameCfg.VoteTimeout,
		AnswerTimeout: gameCfg.AnswerTimeout,
		Recorder:      game.NewDatabaseRecorder(records),
	}, gameLog)

	s.hub.SetDispatcher(orchestrator)
	s.rooms.SetListener(room.Listeners{orchestrator, s.hub})

	jwtManager := utils.NewJWTManager(s.cfg.Security.JWT.Secret, time.Duration(s.cfg.Security.JWT.ExpireHours)*time.Hour)
	router := api.NewRouter(s.cfg, api.Deps{
		DB:        db,
		JWT:       jwtManager,
		Rooms:     s.rooms,
		Sessions:  s.sessions,
		Players:   players,
		Records:   records,
		WebSocket: websocket.NewHandler(s.ctx, s.hub, jwtManager, s.rooms),
	}, logger.WithModule("api"))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 超时 worker
	orchestrator.Run(s.ctx, gameCfg.TimerWorkers)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(s.ctx)
	}()

	// 闲置房间清理：会话已从注册表移除，这里关闭房间并取消计时器
	if gameCfg.CleanupPeriod > 0 && gameCfg.IdleSessionTTL > 0 {
		s.sessions.StartCleanupTask(s.ctx, gameCfg.CleanupPeriod, gameCfg.IdleSessionTTL, func(roomID string) {
			s.timers.CancelRoom(roomID)
			s.rooms.Remove(roomID)
		})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("HTTP服务启动", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP服务异常退出", zap.Error(err))
			s.requestShutdown()
		}
	}()

	// 监听配置变化，词库支持热加载
	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.reloadConfig(newCfg)
	})

	s.logger.Info("服务器启动成功",
		zap.String("http", s.httpServer.Addr),
		zap.String("websocket", s.cfg.WebSocket.Path),
		zap.Strings("categories", s.vocabulary.Categories()))
	return nil
}

func (s *Server) requestShutdown() {
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
}

// WaitForShutdown 等待关闭信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
	case <-s.shutdownCh:
	}
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 停止接收新请求
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP服务关闭失败", zap.Error(err))
	}

	// 取消主上下文，停止 hub、超时 worker 和清理任务
	s.cancel()
	s.timers.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("所有服务已正常关闭")
	case <-shutdownCtx.Done():
		s.logger.Warn("关闭超时，强制退出")
		return apperrors.New(apperrors.ErrTimeout, "关闭超时")
	}

	if err := database.Close(); err != nil {
		s.logger.Error("关闭数据库失败", zap.Error(err))
	}
	return nil
}

// reloadConfig 应用可热加载的配置项
func (s *Server) reloadConfig(newCfg *config.Config) {
	s.vocabulary.Replace(newCfg.Game.Vocabulary)
	s.logger.Info("配置重新加载完成", zap.Strings("categories", s.vocabulary.Categories()))
}

// printVersion 打印版本信息
func printVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "找出骗子游戏服务器\n")
	fmt.Fprintf(out, "版本: %s\n", Version)
	fmt.Fprintf(out, "构建时间: %s\n", BuildTime)
	fmt.Fprintf(out, "Git提交: %s\n", GitCommit)
	fmt.Fprintf(out, "Go版本: %s\n", runtime.Version())
	fmt.Fprintf(out, "操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
