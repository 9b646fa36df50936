// Package httpapi is the thin HTTP surface spec §6 calls normative
// only at the schema level — request/response framing itself is an
// external collaborator. Grounded on gin-gonic/gin +
// gin-contrib/cors usage patterns from the rest of the example pack.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pricerecommender/models"
	"pricerecommender/orchestrator"
	"pricerecommender/reqcache"
)

// Recommender is the orchestrator's contract, satisfied by
// *orchestrator.Orchestrator.
type Recommender interface {
	Recommend(ctx context.Context, raw string, override orchestrator.Override) (models.Recommendation, error)
}

// Server wraps a gin engine configured with every route spec §6 names.
type Server struct {
	engine *gin.Engine
	orch   Recommender
	cache  *reqcache.Cache
}

// New builds a ready-to-serve Server.
func New(orch Recommender, cache *reqcache.Cache) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{engine: engine, orch: orch, cache: cache}
	s.routes()
	return s
}

// Run starts the HTTP server, blocking until it exits.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) routes() {
	s.engine.POST("/price-recommendation", s.handleRecommend)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/cache/stats", s.handleCacheStats)
	s.engine.DELETE("/cache/clear", s.handleCacheClear)
}

// priceRequest is the wire shape of POST /price-recommendation's body
// per spec §6.
type priceRequest struct {
	UPC          string               `json:"upc" binding:"required"`
	InternalData *internalDataPayload `json:"internal_data"`
}

type internalDataPayload struct {
	InternalPrice   float64 `json:"internal_price"`
	SellThroughRate float64 `json:"sell_through_rate"`
	DaysOnShelf     float64 `json:"days_on_shelf"`
	Category        string  `json:"category"`
}

type priceResponse struct {
	UPC                       string                `json:"upc"`
	RecommendedPrice          float64               `json:"recommended_price"`
	InternalVsMarketWeighting float64               `json:"internal_vs_market_weighting"`
	ConfidenceScore           int                   `json:"confidence_score"`
	Rationale                 string                `json:"rationale"`
	PredictionMethod          string                `json:"prediction_method"`
	MarketData                *models.MarketData    `json:"market_data"`
	InternalData              *models.InternalData  `json:"internal_data"`
	Warnings                  []string              `json:"warnings"`
}

func (s *Server) handleRecommend(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	override := orchestrator.Override{}
	if req.InternalData != nil {
		override = orchestrator.Override{
			Present: true,
			Data: models.InternalData{
				InternalPrice:   req.InternalData.InternalPrice,
				SellThroughRate: req.InternalData.SellThroughRate,
				DaysOnShelf:     req.InternalData.DaysOnShelf,
				Category:        req.InternalData.Category,
			},
		}
	}

	rec, err := s.orch.Recommend(c.Request.Context(), req.UPC, override)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, priceResponse{
		UPC:                       req.UPC,
		RecommendedPrice:          rec.RecommendedPrice,
		InternalVsMarketWeighting: rec.InternalVsMarketWeighting,
		ConfidenceScore:           rec.ConfidenceScore,
		Rationale:                 rec.Rationale,
		PredictionMethod:          string(rec.PredictionMethod),
		MarketData:                rec.Market,
		InternalData:              rec.Internal,
		Warnings:                  rec.Warnings,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCacheStats(c *gin.Context) {
	stats := s.cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"size":   stats.Size,
		"hits":   stats.Hits,
		"misses": stats.Misses,
	})
}

func (s *Server) handleCacheClear(c *gin.Context) {
	n := s.cache.Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}
