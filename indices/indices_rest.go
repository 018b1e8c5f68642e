package indices

import (
	"claimflow/domain/actor"
	"claimflow/security"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	PathIndexRequests = "/v1/index-requests"

	indexRequestLimiter = rate.NewLimiter(rate.Every(time.Minute), 1)
)

type SyncScheduler interface {
	ScheduleNewSyncRun(acting actor.Acting) (bool, error)
}

func RegisterIndicesRestAPI(r *gin.Engine, scheduler SyncScheduler, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", func(c *gin.Context) {
		acting := security.MustFindActing(c)
		if !indexRequestLimiter.Allow() {
			c.JSON(http.StatusOK, gin.H{"result": "request rate limited"})
			return
		}
		started, err := scheduler.ScheduleNewSyncRun(acting)
		if err != nil {
			panic(err)
		}
		if !started {
			c.JSON(http.StatusOK, gin.H{"result": "already running"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"result": "started"})
	})
}
