package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"lightsensord/internal/models"
	"lightsensord/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockSensor struct {
	enableErr     error
	disableErr    error
	calState      models.SensorState
	calErr        error
	enableCalls   int
	disableCalls  int
	calibrateCall int

	// operators seen on each call, in order
	operators []int
}

func (m *mockSensor) sawOperator(ctx context.Context) {
	id, _ := service.OperatorFromContext(ctx)
	m.operators = append(m.operators, id)
}

func (m *mockSensor) Enable(ctx context.Context) error {
	m.enableCalls++
	m.sawOperator(ctx)
	return m.enableErr
}
func (m *mockSensor) Disable(ctx context.Context) error {
	m.disableCalls++
	m.sawOperator(ctx)
	return m.disableErr
}
func (m *mockSensor) Calibrate(ctx context.Context) (models.SensorState, error) {
	m.calibrateCall++
	m.sawOperator(ctx)
	return m.calState, m.calErr
}

type mockMonitoring struct {
	state models.SensorState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.SensorState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp         []models.SensorEvent
	err          error
	lastFrom     time.Time
	lastTo       time.Time
	lastType     string
	lastOperator int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.SensorEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastOperator = f.OperatorID
	return m.resp, m.err
}

type mockReadingLog struct {
	resp       []models.Reading
	err        error
	lastFilter service.ReadingFilter
	calls      int
}

func (m *mockReadingLog) List(ctx context.Context, f service.ReadingFilter) ([]models.Reading, error) {
	m.calls++
	m.lastFilter = f
	return m.resp, m.err
}

type mockPoller struct {
	mu     sync.Mutex
	latest models.Reading
	ok     bool
}

func (m *mockPoller) Run(ctx context.Context) { <-ctx.Done() }

func (m *mockPoller) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()
	return done
}

func (m *mockPoller) Latest() (models.Reading, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.ok
}

func (m *mockPoller) set(r models.Reading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest, m.ok = r, true
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
