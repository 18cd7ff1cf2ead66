package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newProbeRouter(agg *Aggregator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHTTPRoutes(r, agg)
	return r
}

func probe(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// TestProbeRoutes 测试探针与报告路由的状态码语义
func TestProbeRoutes(t *testing.T) {
	t.Run("全部健康", func(t *testing.T) {
		r := newProbeRouter(NewAggregator(
			stubChecker{name: "udp", status: StatusHealthy},
		))

		assert.Equal(t, http.StatusOK, probe(r, "/healthz").Code)
		assert.Equal(t, http.StatusOK, probe(r, "/readyz").Code)
		assert.Equal(t, http.StatusOK, probe(r, "/health").Code)
	})

	t.Run("组件降级仍就绪", func(t *testing.T) {
		r := newProbeRouter(NewAggregator(
			stubChecker{name: "redis", status: StatusDegraded},
		))

		assert.Equal(t, http.StatusOK, probe(r, "/readyz").Code)
		w := probe(r, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"degraded"`)
	})

	t.Run("组件不健康时就绪探针拒绝", func(t *testing.T) {
		r := newProbeRouter(NewAggregator(
			stubChecker{name: "database", status: StatusUnhealthy},
		))

		// 存活探针只反映进程在运行
		assert.Equal(t, http.StatusOK, probe(r, "/healthz").Code)
		assert.Equal(t, http.StatusServiceUnavailable, probe(r, "/readyz").Code)
		assert.Equal(t, http.StatusServiceUnavailable, probe(r, "/health").Code)
	})
}
