package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

type Config struct {
	Broker   BrokerConfig
	Strategy StrategyConfig
	Session  SessionConfig
	Server   ServerConfig
	Runtime  RuntimeConfig
}

type BrokerConfig struct {
	BaseUrl         string
	WSUrl           string
	ClientID        string
	AccessTokenFile string
}

type StrategyConfig struct {
	Symbol       string
	TimeframeMin int
	MAType       string
	FastPeriod   int
	SlowPeriod   int
	TradeMode    string
	TradeSide    string
	TargetType   string
	TargetValue  float64
	StopType     string
	StopValue    float64
	Qty          int
	ProductType  string
}

type SessionConfig struct {
	MarketOpen        string
	MarketClose       string
	SquareOff         string
	ReconnectDelaySec int
	MaxCandles        int
}

type ServerConfig struct {
	Listen string
}

type RuntimeConfig struct {
	Log LogConfig
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

func Load() (*Config, error) {

	cfg := &Config{}
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	viper.ReadInConfig()

	viper.SetDefault("strategy.timeframe_min", 1)
	viper.SetDefault("strategy.ma_type", "SMA")
	viper.SetDefault("strategy.fast_period", 9)
	viper.SetDefault("strategy.slow_period", 21)
	viper.SetDefault("strategy.trade_mode", "Intraday")
	viper.SetDefault("strategy.trade_side", "both")
	viper.SetDefault("strategy.target_type", "points")
	viper.SetDefault("strategy.target_value", 100)
	viper.SetDefault("strategy.stop_type", "points")
	viper.SetDefault("strategy.stop_value", 50)
	viper.SetDefault("strategy.qty", 1)
	viper.SetDefault("strategy.product_type", "INTRADAY")
	viper.SetDefault("session.market_open", "09:15")
	viper.SetDefault("session.market_close", "15:30")
	viper.SetDefault("session.square_off", "15:15")
	viper.SetDefault("session.reconnect_delay_sec", 5)
	viper.SetDefault("session.max_candles", 500)
	viper.SetDefault("server.listen", ":8080")

	cfg.Broker = BrokerConfig{
		BaseUrl:         viper.GetString("broker.base_url"),
		WSUrl:           viper.GetString("broker.ws_url"),
		ClientID:        envSub("broker.client_id"),
		AccessTokenFile: envSub("broker.access_token_file"),
	}

	cfg.Strategy = StrategyConfig{
		Symbol:       viper.GetString("strategy.symbol"),
		TimeframeMin: viper.GetInt("strategy.timeframe_min"),
		MAType:       viper.GetString("strategy.ma_type"),
		FastPeriod:   viper.GetInt("strategy.fast_period"),
		SlowPeriod:   viper.GetInt("strategy.slow_period"),
		TradeMode:    viper.GetString("strategy.trade_mode"),
		TradeSide:    viper.GetString("strategy.trade_side"),
		TargetType:   viper.GetString("strategy.target_type"),
		TargetValue:  viper.GetFloat64("strategy.target_value"),
		StopType:     viper.GetString("strategy.stop_type"),
		StopValue:    viper.GetFloat64("strategy.stop_value"),
		Qty:          viper.GetInt("strategy.qty"),
		ProductType:  viper.GetString("strategy.product_type"),
	}

	cfg.Session = SessionConfig{
		MarketOpen:        viper.GetString("session.market_open"),
		MarketClose:       viper.GetString("session.market_close"),
		SquareOff:         viper.GetString("session.square_off"),
		ReconnectDelaySec: viper.GetInt("session.reconnect_delay_sec"),
		MaxCandles:        viper.GetInt("session.max_candles"),
	}

	cfg.Server = ServerConfig{
		Listen: viper.GetString("server.listen"),
	}

	cfg.Runtime = RuntimeConfig{
		Log: LogConfig{
			Level:      viper.GetString("runtime.log.level"),
			Format:     viper.GetString("runtime.log.format"),
			File:       viper.GetString("runtime.log.file"),
			MaxSize:    viper.GetInt("runtime.log.max_size"),
			MaxBackups: viper.GetInt("runtime.log.max_backups"),
			MaxAge:     viper.GetInt("runtime.log.max_age"),
			Compress:   viper.GetBool("runtime.log.compress"),
		},
	}

	return cfg, nil
}

// EngineConfig converts the file-level strategy section into the snapshot the
// engine captures at start.
func (s StrategyConfig) EngineConfig() models.EngineConfig {
	return models.EngineConfig{
		Symbol:       s.Symbol,
		TimeframeMin: s.TimeframeMin,
		MAKind:       ParseMAKind(s.MAType),
		FastPeriod:   s.FastPeriod,
		SlowPeriod:   s.SlowPeriod,
		TradeMode:    ParseTradeMode(s.TradeMode),
		TradeSide:    ParseTradeSide(s.TradeSide),
		Target:       models.LevelSpec{Kind: ParseLevelKind(s.TargetType), Value: s.TargetValue},
		Stop:         models.LevelSpec{Kind: ParseLevelKind(s.StopType), Value: s.StopValue},
		Qty:          s.Qty,
		ProductType:  s.ProductType,
	}
}

func ParseMAKind(v string) models.MAKind {
	if strings.EqualFold(v, "EMA") {
		return models.MAKindEMA
	}
	return models.MAKindSMA
}

func ParseTradeMode(v string) models.TradeMode {
	if strings.EqualFold(v, string(models.TradeModePositional)) {
		return models.TradeModePositional
	}
	return models.TradeModeIntraday
}

func ParseTradeSide(v string) models.TradeSide {
	switch strings.ToLower(v) {
	case "long_only", "long only":
		return models.TradeSideLongOnly
	case "short_only", "short only":
		return models.TradeSideShortOnly
	default:
		return models.TradeSideBoth
	}
}

func ParseLevelKind(v string) models.LevelKind {
	if strings.EqualFold(v, string(models.LevelKindPercent)) {
		return models.LevelKindPercent
	}
	return models.LevelKindPoints
}

func envSub(key string) string {
	val := viper.GetString(key)
	if val == "" {
		return ""
	}

	re := regexp.MustCompile(`\$\{(\w+)\}`)
	return re.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	})
}
