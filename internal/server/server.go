package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nikhil1914/EMA-BOT/internal/config"
	"github.com/Nikhil1914/EMA-BOT/internal/engine"
	"github.com/Nikhil1914/EMA-BOT/internal/logger"
	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

// Server is the operator control surface. The dashboard talks to it to start
// and stop the engine and to poll status and the event-log tail.
type Server struct {
	eng      *engine.Engine
	defaults config.StrategyConfig
	log      *logger.Logger
}

func New(eng *engine.Engine, defaults config.StrategyConfig, log *logger.Logger) *Server {
	return &Server{
		eng:      eng,
		defaults: defaults,
		log:      log,
	}
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api/engine")
	api.POST("/start", s.handleStart)
	api.POST("/stop", s.handleStop)
	api.GET("/status", s.handleStatus)
	api.GET("/logs", s.handleLogs)

	return r
}

// startRequest carries the symbol plus optional strategy overrides; anything
// omitted falls back to the file config. The resulting snapshot is frozen for
// the lifetime of the run.
type startRequest struct {
	Symbol       string   `json:"symbol"`
	TimeframeMin *int     `json:"timeframe_min"`
	MAType       *string  `json:"ma_type"`
	FastPeriod   *int     `json:"fast_period"`
	SlowPeriod   *int     `json:"slow_period"`
	TradeMode    *string  `json:"trade_mode"`
	TradeSide    *string  `json:"trade_side"`
	TargetType   *string  `json:"target_type"`
	TargetValue  *float64 `json:"target_value"`
	StopType     *string  `json:"stop_type"`
	StopValue    *float64 `json:"stop_value"`
	Qty          *int     `json:"qty"`
	ProductType  *string  `json:"product_type"`
}

func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc := s.defaults.EngineConfig()
	if req.Symbol != "" {
		sc.Symbol = req.Symbol
	}
	applyOverrides(&sc, req)

	if err := s.eng.Start(sc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := s.eng.Status()
	c.JSON(http.StatusOK, gin.H{"running": st.Running, "instrument": st.Instrument})
}

func (s *Server) handleStop(c *gin.Context) {
	s.eng.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Status())
}

func (s *Server) handleLogs(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("n", "40"))
	c.JSON(http.StatusOK, gin.H{"log": s.eng.LogTail(n)})
}

func applyOverrides(sc *models.EngineConfig, req startRequest) {
	if req.TimeframeMin != nil {
		sc.TimeframeMin = *req.TimeframeMin
	}
	if req.MAType != nil {
		sc.MAKind = config.ParseMAKind(*req.MAType)
	}
	if req.FastPeriod != nil {
		sc.FastPeriod = *req.FastPeriod
	}
	if req.SlowPeriod != nil {
		sc.SlowPeriod = *req.SlowPeriod
	}
	if req.TradeMode != nil {
		sc.TradeMode = config.ParseTradeMode(*req.TradeMode)
	}
	if req.TradeSide != nil {
		sc.TradeSide = config.ParseTradeSide(*req.TradeSide)
	}
	if req.TargetType != nil {
		sc.Target.Kind = config.ParseLevelKind(*req.TargetType)
	}
	if req.TargetValue != nil {
		sc.Target.Value = *req.TargetValue
	}
	if req.StopType != nil {
		sc.Stop.Kind = config.ParseLevelKind(*req.StopType)
	}
	if req.StopValue != nil {
		sc.Stop.Value = *req.StopValue
	}
	if req.Qty != nil {
		sc.Qty = *req.Qty
	}
	if req.ProductType != nil {
		sc.ProductType = *req.ProductType
	}
}
