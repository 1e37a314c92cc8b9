package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Game      GameConfig      `mapstructure:"game"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	PublicURL       string        `mapstructure:"public_url"` // 房间二维码中使用的加入地址前缀
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// WebSocketConfig WebSocket配置
type WebSocketConfig struct {
	Path            string        `mapstructure:"path"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// GameConfig 游戏配置
type GameConfig struct {
	MinPlayers     int                 `mapstructure:"min_players"`
	MaxPlayers     int                 `mapstructure:"max_players"`
	MaxRound       int                 `mapstructure:"max_round"`
	MaxTurn        int                 `mapstructure:"max_turn"`
	TurnTimeout    time.Duration       `mapstructure:"turn_timeout"`
	VoteTimeout    time.Duration       `mapstructure:"vote_timeout"`
	AnswerTimeout  time.Duration       `mapstructure:"answer_timeout"`
	TimerWorkers   int                 `mapstructure:"timer_workers"`
	TimerQueueSize int                 `mapstructure:"timer_queue_size"`
	IdleSessionTTL time.Duration       `mapstructure:"idle_session_ttl"`
	CleanupPeriod  time.Duration       `mapstructure:"cleanup_period"`
	Vocabulary     map[string][]string `mapstructure:"vocabulary"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		// 设置配置文件路径
		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		// 设置环境变量前缀
		v.SetEnvPrefix("LIAR_GAME")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		setDefaults(v)

		if err = v.ReadInConfig(); err != nil {
			// 如果配置文件不存在，使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		loaded := &Config{}
		if err = v.Unmarshal(loaded); err != nil {
			return
		}
		err = loaded.Validate()

		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})

	return err
}

// Load 从指定的viper实例解析配置，不影响全局单例（测试和工具使用）
func Load(src *viper.Viper) (*Config, error) {
	setDefaults(src)
	loaded := &Config{}
	if err := src.Unmarshal(loaded); err != nil {
		return nil, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.public_url", "http://localhost:8080")

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/liar-game.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// WebSocket默认配置
	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 8192)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.write_timeout", "10s")

	// 游戏默认配置
	v.SetDefault("game.min_players", 3)
	v.SetDefault("game.max_players", 10)
	v.SetDefault("game.max_round", 5)
	v.SetDefault("game.max_turn", 3)
	v.SetDefault("game.turn_timeout", "30s")
	v.SetDefault("game.vote_timeout", "60s")
	v.SetDefault("game.answer_timeout", "30s")
	v.SetDefault("game.timer_workers", 4)
	v.SetDefault("game.timer_queue_size", 256)
	v.SetDefault("game.idle_session_ttl", "2h")
	v.SetDefault("game.cleanup_period", "10m")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "liar-game.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)

	// 安全默认配置
	v.SetDefault("security.jwt.secret", "change-me")
	v.SetDefault("security.jwt.expire_hours", 24)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Game.MaxRound < 1 || c.Game.MaxTurn < 1 {
		return fmt.Errorf("游戏轮数上限和回合上限必须大于0: max_round=%d, max_turn=%d",
			c.Game.MaxRound, c.Game.MaxTurn)
	}
	if c.Game.TurnTimeout <= 0 || c.Game.VoteTimeout <= 0 || c.Game.AnswerTimeout <= 0 {
		return fmt.Errorf("超时时间必须大于0")
	}
	if c.Game.MaxPlayers > 0 && c.Game.MaxPlayers < c.Game.MinPlayers {
		return fmt.Errorf("max_players不能小于min_players: %d < %d", c.Game.MaxPlayers, c.Game.MinPlayers)
	}
	if c.Game.TimerWorkers < 1 {
		return fmt.Errorf("timer_workers必须大于0: %d", c.Game.TimerWorkers)
	}
	if c.Security.JWT.Secret == "" {
		return fmt.Errorf("缺少security.jwt.secret")
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	if v == nil {
		return
	}
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := newCfg.Validate(); err != nil {
			fmt.Printf("配置重载校验失败: %v\n", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}

		fmt.Printf("配置已重新加载: %s\n", e.Name)
	})
}

// ConfigFile 返回正在使用的配置文件路径
func ConfigFile() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
