package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// 环境变量前缀为 DG_
const (
	EnvHost          = "DG_HOST"
	EnvPort          = "DG_PORT"
	EnvRedisAddr     = "DG_REDIS_ADDR"
	EnvRedisPassword = "DG_REDIS_PASSWORD"
	EnvLogLevel      = "DG_LOG_LEVEL"
)

const defaultIntermission = 3

// DefaultWords 内置词库，配置文件未提供词表时使用
var DefaultWords = []string{
	"apple", "mountain", "river", "spaceship", "library",
	"puzzle", "dragon", "forest", "guitar", "umbrella",
}

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTP / WebSocket 服务器配置
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	MaxConnections  int    `yaml:"max_connections"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // 优雅关闭等待（秒）
}

// RedisConfig Redis 配置，未启用时房间目录只在内存中
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 新房间的默认设置与词库
type GameConfig struct {
	MaxRounds          int      `yaml:"max_rounds"`
	RoundTime          int      `yaml:"round_time"`       // 每回合作画时间（秒）
	WordOptionsPerTurn int      `yaml:"word_options"`     // 每回合候选词数量
	WordChoiceTime     int      `yaml:"word_choice_time"` // 选词时间（秒）
	Intermission       *int     `yaml:"intermission"`     // 回合间隔（秒），允许为 0
	RoomTimeout        int      `yaml:"room_timeout"`     // 空房间保留时间（秒）
	Words              []string `yaml:"words"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins"`
	MessageLimit   RateLimitConfig `yaml:"message_limit"` // 单连接消息速率
	ConnLimit      RateLimitConfig `yaml:"conn_limit"`    // 单 IP 建连速率
	AllowedIPs     []string        `yaml:"allowed_ips"`   // 非空时只允许这些 IP 建立 WebSocket
	BlockedIPs     []string        `yaml:"blocked_ips"`
}

// RateLimitConfig 令牌桶参数
type RateLimitConfig struct {
	MaxPerSecond float64 `yaml:"max_per_second"`
	Burst        int     `yaml:"burst"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ShutdownTimeoutDuration 返回优雅关闭等待时长
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// IntermissionSeconds 返回回合间隔秒数
func (c *GameConfig) IntermissionSeconds() int {
	if c.Intermission == nil {
		return defaultIntermission
	}
	return *c.Intermission
}

// RoomTimeoutDuration 返回空房间保留时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Second
}

// DefaultSettings 新房间未指定字段时使用的设置
func (c *GameConfig) DefaultSettings() protocol.RoomSettings {
	return protocol.RoomSettings{
		MaxRounds:             c.MaxRounds,
		RoundTimeSeconds:      c.RoundTime,
		WordOptionsPerTurn:    c.WordOptionsPerTurn,
		WordChoiceTimeSeconds: c.WordChoiceTime,
		IntermissionSeconds:   c.IntermissionSeconds(),
	}
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 1790
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = 1000
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.MaxRounds == 0 {
		c.Game.MaxRounds = 3
	}
	if c.Game.RoundTime == 0 {
		c.Game.RoundTime = 75
	}
	if c.Game.WordOptionsPerTurn == 0 {
		c.Game.WordOptionsPerTurn = 3
	}
	if c.Game.WordChoiceTime == 0 {
		c.Game.WordChoiceTime = 15
	}
	if c.Game.Intermission == nil {
		intermission := defaultIntermission
		c.Game.Intermission = &intermission
	}
	if c.Game.RoomTimeout == 0 {
		c.Game.RoomTimeout = 600
	}
	if len(c.Game.Words) == 0 {
		c.Game.Words = append([]string(nil), DefaultWords...)
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = 20
	}
	if c.Security.MessageLimit.Burst == 0 {
		c.Security.MessageLimit.Burst = 40
	}
	if c.Security.ConnLimit.MaxPerSecond == 0 {
		c.Security.ConnLimit.MaxPerSecond = 5
	}
	if c.Security.ConnLimit.Burst == 0 {
		c.Security.ConnLimit.Burst = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ApplyEnv 读取 .env 文件与 DG_* 环境变量覆盖配置，已有的环境变量优先
func (c *Config) ApplyEnv(envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if v := os.Getenv(EnvHost); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Server.Port = port
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}
