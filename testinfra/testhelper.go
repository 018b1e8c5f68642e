package testinfra

import (
	"claimflow/domain/actor"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExecuteRequest serves req with router and returns status, body and headers of the response.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header
}

// FakeClock starts at a fixed instant and moves forward by step on every reading.
type FakeClock struct {
	mutex   sync.Mutex
	current time.Time
	step    time.Duration
}

func NewFakeClock(start time.Time, step time.Duration) *FakeClock {
	return &FakeClock{current: start, step: step}
}

func (c *FakeClock) Now() types.Timestamp {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.current = c.current.Add(c.step)
	return types.Timestamp(c.current)
}

func BuildLecturer(id types.ID, firstName, lastName string, rate string) actor.Lecturer {
	return actor.Lecturer{
		ID:         id,
		Profile:    actor.Profile{FirstName: firstName, LastName: lastName, Email: firstName + "@example.edu", Active: true},
		HourlyRate: decimal.RequireFromString(rate),
	}
}

func BuildCoordinator(id types.ID, firstName, lastName string) actor.ProgrammeCoordinator {
	return actor.ProgrammeCoordinator{
		ID:         id,
		Profile:    actor.Profile{FirstName: firstName, LastName: lastName, Email: firstName + "@example.edu", Active: true},
		Department: "Computing",
	}
}

func BuildManager(id types.ID, firstName, lastName string) actor.AcademicManager {
	return actor.AcademicManager{
		ID:      id,
		Profile: actor.Profile{FirstName: firstName, LastName: lastName, Email: firstName + "@example.edu", Active: true},
	}
}
