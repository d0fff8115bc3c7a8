package runner

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// serve 모드에서 실행을 조작하는 최소 API.
type runnerAPI interface {
	Start() (string, error)
	Latest() *Report
}

type Handler struct{ svc runnerAPI }

func RegisterRoutes(r gin.IRoutes, svc runnerAPI) {
	h := &Handler{svc: svc}

	// GET /runs/latest (마지막 실행 보고)
	r.GET("/runs/latest", h.LatestRun)
	// POST /runs (동기화 트리거, 실행 중이면 409)
	r.POST("/runs", h.TriggerRun)
}

func (h *Handler) LatestRun(c *gin.Context) {
	report := h.svc.Latest()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "아직 실행 이력이 없습니다"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) TriggerRun(c *gin.Context) {
	runID, err := h.svc.Start()
	if err != nil {
		if errors.Is(err, ErrRunActive) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"runId": runID})
}

// RequireToken: Authorization: Bearer <token> 을 설정의 고정 토큰과
// 비교한다. 운영자 한 명이 쓰는 배치 트리거라 계정 체계는 두지 않는다.
func RequireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "server.token이 설정되지 않았습니다"})
			return
		}
		h := c.GetHeader("Authorization")
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}
		supplied := strings.TrimSpace(parts[1])
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}
