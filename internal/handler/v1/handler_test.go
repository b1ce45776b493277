package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/charge"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/identity"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/vitals"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memQueueRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*queue.QueueEntry
}

func (f *memQueueRepo) Enqueue(ctx context.Context, e *queue.QueueEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	maxToken, maxPosition := 0, 0
	for _, x := range f.entries {
		if x.DoctorID != e.DoctorID || !x.QueueDate.Equal(e.QueueDate) {
			continue
		}
		if x.PatientID == e.PatientID && !x.Status.IsTerminal() {
			return queue.ErrDuplicateActiveEntry
		}
		if x.TokenNumber > maxToken {
			maxToken = x.TokenNumber
		}
		if !x.Status.IsTerminal() && x.Position > maxPosition {
			maxPosition = x.Position
		}
	}
	e.ID = uuid.New()
	e.TokenNumber = maxToken + 1
	if e.Priority {
		for _, x := range f.entries {
			if x.DoctorID == e.DoctorID && x.QueueDate.Equal(e.QueueDate) && !x.Status.IsTerminal() {
				x.Position++
			}
		}
		e.Position = 1
	} else {
		e.Position = maxPosition + 1
	}
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *memQueueRepo) GetByID(ctx context.Context, id uuid.UUID) (*queue.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, queue.ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *memQueueRepo) UpdateStatus(ctx context.Context, e *queue.QueueEntry, from queue.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.entries[e.ID]
	if !ok {
		return queue.ErrEntryNotFound
	}
	if stored.Status != from {
		if stored.Status.IsTerminal() {
			return queue.ErrEntryTerminal
		}
		return queue.ErrInvalidTransition
	}
	stored.Status = e.Status
	stored.CompletedAt = e.CompletedAt
	stored.CancelledAt = e.CancelledAt
	return nil
}

func (f *memQueueRepo) Reorder(ctx context.Context, scope queue.Scope, orderedIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := make(map[uuid.UUID]bool)
	for id, x := range f.entries {
		if x.DoctorID == scope.DoctorID && x.QueueDate.Equal(scope.Date) && !x.Status.IsTerminal() {
			current[id] = true
		}
	}
	if len(orderedIDs) != len(current) {
		return queue.ErrScopeMismatch
	}
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !current[id] || seen[id] {
			return queue.ErrScopeMismatch
		}
		seen[id] = true
	}
	for i, id := range orderedIDs {
		f.entries[id].Position = i + 1
	}
	return nil
}

func (f *memQueueRepo) List(ctx context.Context, q *queue.ListQuery) ([]*queue.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*queue.QueueEntry
	for _, x := range f.entries {
		if !x.QueueDate.Equal(q.Date) {
			continue
		}
		if q.DoctorID != nil && x.DoctorID != *q.DoctorID {
			continue
		}
		if q.Status != nil && x.Status != *q.Status {
			continue
		}
		cp := *x
		out = append(out, &cp)
	}
	return out, nil
}

func (f *memQueueRepo) CountActive(ctx context.Context, scope queue.Scope) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, x := range f.entries {
		if x.DoctorID == scope.DoctorID && x.QueueDate.Equal(scope.Date) && !x.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

type memChargeRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*charge.ChargeEntry
}

func (f *memChargeRepo) Create(ctx context.Context, c *charge.ChargeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	cp := *c
	f.entries[c.ID] = &cp
	return nil
}

func (f *memChargeRepo) GetByID(ctx context.Context, id uuid.UUID) (*charge.ChargeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.entries[id]
	if !ok {
		return nil, charge.ErrChargeNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *memChargeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.entries[id]
	if !ok {
		return charge.ErrChargeNotFound
	}
	if c.BillingStatus != charge.StatusPending {
		return charge.ErrChargeBilled
	}
	delete(f.entries, id)
	return nil
}

func (f *memChargeRepo) ListByAdmission(ctx context.Context, patientID, admissionID uuid.UUID) ([]*charge.ChargeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*charge.ChargeEntry
	for _, c := range f.entries {
		if c.PatientID == patientID && c.AdmissionID == admissionID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *memChargeRepo) MarkBilled(ctx context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, id := range ids {
		if c, ok := f.entries[id]; ok && c.BillingStatus == charge.StatusPending {
			c.BillingStatus = charge.StatusBilled
			c.BilledAt = &now
		}
	}
	return nil
}

func (f *memChargeRepo) Totals(ctx context.Context, patientID, admissionID uuid.UUID) (*charge.Totals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &charge.Totals{}
	for _, c := range f.entries {
		if c.PatientID != patientID || c.AdmissionID != admissionID {
			continue
		}
		t.EntryCount++
		t.RunningTotal = t.RunningTotal.Add(c.Amount)
		if c.BillingStatus == charge.StatusPending {
			t.UnbilledBalance = t.UnbilledBalance.Add(c.Amount)
		}
	}
	return t, nil
}

type memVitalsRepo struct {
	mu      sync.Mutex
	records []*vitals.VitalsRecord
}

func (f *memVitalsRepo) Create(ctx context.Context, v *vitals.VitalsRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = uuid.New()
	cp := *v
	f.records = append(f.records, &cp)
	return nil
}

func (f *memVitalsRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*vitals.VitalsRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*vitals.VitalsRecord
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		if f.records[i].PatientID == patientID {
			cp := *f.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *memVitalsRepo) GetLatestForEntry(ctx context.Context, entryID uuid.UUID) (*vitals.VitalsRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].QueueEntryID != nil && *f.records[i].QueueEntryID == entryID {
			cp := *f.records[i]
			return &cp, nil
		}
	}
	return nil, vitals.ErrRecordNotFound
}

type memUserRepo struct {
	users map[string]*domain.User
}

func (f *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (f *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (f *memUserRepo) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	return nil
}

type memAuditRepo struct{}

func (memAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error { return nil }

type memDirectory struct{}

func (memDirectory) PatientSummary(ctx context.Context, id uuid.UUID) (*identity.PersonSummary, error) {
	return nil, identity.ErrNotFound
}

func (memDirectory) DoctorSummary(ctx context.Context, id uuid.UUID) (*identity.PersonSummary, error) {
	return nil, identity.ErrNotFound
}

type testEnv struct {
	router     *gin.Engine
	jwtManager *auth.JWTManager
	queueRepo  *memQueueRepo
	chargeRepo *memChargeRepo
	password   string
	loginEmail string
}

var (
	collectorOnce sync.Once
	collector     *metrics.Collector
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	collectorOnce.Do(func() {
		collector = metrics.NewCollector("opdflow_test")
	})

	cfg := &config.Config{
		App: config.AppConfig{Name: "opdflow-test", Environment: "test", Version: "test"},
		JWT: config.JWTConfig{
			Secret:          "test-secret-test-secret-test-secret!",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			Issuer:          "opdflow-test",
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 10_000, BurstSize: 10_000},
		Queue:     config.QueueConfig{PollInterval: 3 * time.Second, MaxBatchSize: 200},
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)
	log := zap.NewNop()
	auditSvc := service.NewAuditService(memAuditRepo{}, nil, log)
	t.Cleanup(auditSvc.Shutdown)

	queueRepo := &memQueueRepo{entries: make(map[uuid.UUID]*queue.QueueEntry)}
	chargeRepo := &memChargeRepo{entries: make(map[uuid.UUID]*charge.ChargeEntry)}
	vitalsRepo := &memVitalsRepo{}

	password := "correct horse battery staple"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	userRepo := &memUserRepo{users: map[string]*domain.User{
		"reception@test.local": {
			ID:           uuid.New(),
			Email:        "reception@test.local",
			PasswordHash: string(hash),
			Role:         domain.RoleReceptionist,
			IsActive:     true,
		},
	}}

	h := Handlers{
		Auth: NewAuthHandler(service.NewAuthService(userRepo, jwtManager, log)),
		Queue: NewQueueHandler(
			service.NewQueueService(queueRepo, memDirectory{}, auditSvc, nil, nil, cfg.Queue, log),
			cfg.Queue.PollInterval,
		),
		Charge: NewChargeHandler(service.NewChargeService(chargeRepo, auditSvc, nil, log)),
		Vitals: NewVitalsHandler(service.NewVitalsService(vitalsRepo, queueRepo, auditSvc, nil, log)),
	}

	return &testEnv{
		router:     NewRouter(cfg, jwtManager, collector, h),
		jwtManager: jwtManager,
		queueRepo:  queueRepo,
		chargeRepo: chargeRepo,
		password:   password,
		loginEmail: "reception@test.local",
	}
}

func (env *testEnv) token(t *testing.T, role domain.Role) string {
	t.Helper()
	pair, err := env.jwtManager.GenerateTokenPair(&domain.Claims{
		UserID: uuid.New(),
		Email:  "staff@test.local",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return pair.AccessToken
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestQueueRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/queue", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/queue", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with garbage token = %d, want 401", w.Code)
	}
}

func TestEnqueueRoleEnforcement(t *testing.T) {
	env := newTestEnv(t)
	body := gin.H{"patient_id": uuid.New(), "doctor_id": uuid.New()}

	w := env.do(t, http.MethodPost, "/api/v1/queue", env.token(t, domain.RoleBilling), body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("billing enqueue status = %d, want 403", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/queue", env.token(t, domain.RoleReceptionist), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("receptionist enqueue status = %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestEnqueueDuplicateReturnsConflict(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, domain.RoleReceptionist)
	body := gin.H{"patient_id": uuid.New(), "doctor_id": uuid.New()}

	if w := env.do(t, http.MethodPost, "/api/v1/queue", token, body); w.Code != http.StatusCreated {
		t.Fatalf("first enqueue status = %d, want 201", w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/v1/queue", token, body)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate enqueue status = %d, want 409", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if resp.Code != "DUPLICATE_ACTIVE_ENTRY" {
		t.Errorf("error code = %s, want DUPLICATE_ACTIVE_ENTRY", resp.Code)
	}
}

func TestTransitionInvalidJump(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, domain.RoleReceptionist)

	w := env.do(t, http.MethodPost, "/api/v1/queue", token,
		gin.H{"patient_id": uuid.New(), "doctor_id": uuid.New()})
	var created struct {
		Data queue.QueueEntry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created entry: %v", err)
	}

	w = env.do(t, http.MethodPatch, "/api/v1/queue/"+created.Data.ID.String()+"/status",
		env.token(t, domain.RoleDoctor), gin.H{"status": "completed"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("waiting->completed status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestReorderStaleBatchReturnsScopeMismatch(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, domain.RoleReceptionist)
	doctorID := uuid.New()

	for i := 0; i < 2; i++ {
		if w := env.do(t, http.MethodPost, "/api/v1/queue", token,
			gin.H{"patient_id": uuid.New(), "doctor_id": doctorID}); w.Code != http.StatusCreated {
			t.Fatalf("enqueue %d status = %d", i, w.Code)
		}
	}

	w := env.do(t, http.MethodPost, "/api/v1/queue/reorder", env.token(t, domain.RoleNurse),
		gin.H{"doctor_id": doctorID, "ordered_ids": []uuid.UUID{uuid.New(), uuid.New()}})
	if w.Code != http.StatusConflict {
		t.Fatalf("stale reorder status = %d, want 409: %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if resp.Code != "SCOPE_MISMATCH" {
		t.Errorf("error code = %s, want SCOPE_MISMATCH", resp.Code)
	}
}

func TestQueueListAdvertisesPollInterval(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/queue", env.token(t, domain.RoleReceptionist), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Poll-Interval"); got != "3s" {
		t.Errorf("X-Poll-Interval = %q, want 3s", got)
	}
}

func TestLatestVitalsForQueueEntry(t *testing.T) {
	env := newTestEnv(t)
	nurse := env.token(t, domain.RoleNurse)

	w := env.do(t, http.MethodPost, "/api/v1/queue", env.token(t, domain.RoleReceptionist),
		gin.H{"patient_id": uuid.New(), "doctor_id": uuid.New()})
	if w.Code != http.StatusCreated {
		t.Fatalf("enqueue status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var created struct {
		Data queue.QueueEntry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created entry: %v", err)
	}

	w = env.do(t, http.MethodGet, "/api/v1/queue/"+created.Data.ID.String()+"/vitals", nurse, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("vitals before recording status = %d, want 404: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/api/v1/vitals", nurse, gin.H{
		"patient_id":     created.Data.PatientID,
		"queue_entry_id": created.Data.ID,
		"measurements":   gin.H{"blood_pressure": "122/78", "pulse_bpm": 70},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record vitals status = %d, want 201: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/queue/"+created.Data.ID.String()+"/vitals", nurse, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("latest vitals status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var latest struct {
		Data vitals.VitalsRecord `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &latest); err != nil {
		t.Fatalf("decoding vitals record: %v", err)
	}
	if latest.Data.QueueEntryID == nil || *latest.Data.QueueEntryID != created.Data.ID {
		t.Errorf("record not linked to queue entry %s", created.Data.ID)
	}
	if latest.Data.Measurements.BloodPressure != "122/78" {
		t.Errorf("blood pressure = %q, want 122/78", latest.Data.Measurements.BloodPressure)
	}
}

func TestChargeLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	billing := env.token(t, domain.RoleBilling)
	patientID, admissionID := uuid.New(), uuid.New()

	w := env.do(t, http.MethodPost, "/api/v1/admissions/"+admissionID.String()+"/charges", billing,
		gin.H{"patient_id": patientID, "description": "MRI Scan", "unit_amount": "1200.00", "quantity": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("add charge status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var created struct {
		Data charge.ChargeEntry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created charge: %v", err)
	}

	w = env.do(t, http.MethodPost, "/api/v1/charges/mark-billed", billing,
		gin.H{"ids": []uuid.UUID{created.Data.ID}})
	if w.Code != http.StatusOK {
		t.Fatalf("mark billed status = %d, want 200: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodDelete, "/api/v1/charges/"+created.Data.ID.String(), billing, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("delete billed status = %d, want 409: %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if resp.Code != "NOT_EDITABLE" {
		t.Errorf("error code = %s, want NOT_EDITABLE", resp.Code)
	}

	w = env.do(t, http.MethodGet,
		"/api/v1/admissions/"+admissionID.String()+"/charges?patient_id="+patientID.String(), billing, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list charges status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var list struct {
		Data service.ChargeList `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding charge list: %v", err)
	}
	if list.Data.Totals.EntryCount != 1 {
		t.Errorf("entry count = %d, want 1", list.Data.Totals.EntryCount)
	}
	if got := list.Data.Totals.UnbilledBalance.String(); got != "0" {
		t.Errorf("unbilled balance = %s, want 0", got)
	}
}

func TestMarkBilledRequiresBillingRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/charges/mark-billed", env.token(t, domain.RoleNurse),
		gin.H{"ids": []uuid.UUID{uuid.New()}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("nurse mark-billed status = %d, want 403", w.Code)
	}
}

func TestRecordVitalsEmptyMeasurements(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/vitals", env.token(t, domain.RoleNurse),
		gin.H{"patient_id": uuid.New(), "measurements": gin.H{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty vitals status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		gin.H{"email": env.loginEmail, "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		gin.H{"email": env.loginEmail, "password": env.password})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data domain.TokenPair `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding token pair: %v", err)
	}
	if resp.Data.AccessToken == "" || resp.Data.TokenType != "Bearer" {
		t.Fatalf("unexpected token pair: %+v", resp.Data)
	}

	// The issued access token works against a protected route.
	if w := env.do(t, http.MethodGet, "/api/v1/queue", resp.Data.AccessToken, nil); w.Code != http.StatusOK {
		t.Fatalf("authenticated list status = %d, want 200", w.Code)
	}

	// Refresh tokens do not pass as access tokens.
	if w := env.do(t, http.MethodGet, "/api/v1/queue", resp.Data.RefreshToken, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh-as-access status = %d, want 401", w.Code)
	}
}
