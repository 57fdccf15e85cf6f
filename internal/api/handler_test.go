package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"etuitions-server/internal/models"
	"etuitions-server/internal/payments"
	"etuitions-server/internal/service"
	"etuitions-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

//
// ---------- STUBS & FAKES ----------
//

type memUserStore struct {
	nextID  int64
	byEmail map[string]*models.User
}

func (s *memUserStore) InsertUser(ctx context.Context, user *models.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrDuplicateEmail
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	cp := *user
	s.byEmail[user.Email] = &cp
	return nil
}

func (s *memUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

type memTuitionStore struct {
	nextID   int64
	tuitions []models.Tuition
}

func (s *memTuitionStore) InsertTuition(ctx context.Context, tuition *models.Tuition) error {
	s.nextID++
	tuition.ID = s.nextID
	tuition.CreatedAt = time.Now()
	s.tuitions = append([]models.Tuition{*tuition}, s.tuitions...)
	return nil
}

func (s *memTuitionStore) LatestTuitions(ctx context.Context, limit int) ([]models.Tuition, error) {
	if limit > len(s.tuitions) {
		limit = len(s.tuitions)
	}
	return s.tuitions[:limit], nil
}

func (s *memTuitionStore) ListTuitions(ctx context.Context) ([]models.Tuition, error) {
	return s.tuitions, nil
}

func (s *memTuitionStore) GetTuitionByID(ctx context.Context, id int64) (*models.Tuition, error) {
	for i := range s.tuitions {
		if s.tuitions[i].ID == id {
			return &s.tuitions[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memTuitionStore) UpdateTuition(ctx context.Context, id int64, tuition *models.Tuition) error {
	for i := range s.tuitions {
		if s.tuitions[i].ID == id {
			updated := *tuition
			updated.ID = id
			updated.CreatedAt = s.tuitions[i].CreatedAt
			s.tuitions[i] = updated
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memTuitionStore) DeleteTuition(ctx context.Context, id int64) error {
	for i := range s.tuitions {
		if s.tuitions[i].ID == id {
			s.tuitions = append(s.tuitions[:i], s.tuitions[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type memTutorStore struct {
	nextID int64
	tutors []models.Tutor
}

func (s *memTutorStore) InsertTutor(ctx context.Context, tutor *models.Tutor) error {
	s.nextID++
	tutor.ID = s.nextID
	tutor.CreatedAt = time.Now()
	s.tutors = append([]models.Tutor{*tutor}, s.tutors...)
	return nil
}

func (s *memTutorStore) LatestTutors(ctx context.Context, limit int) ([]models.Tutor, error) {
	if limit > len(s.tutors) {
		limit = len(s.tutors)
	}
	return s.tutors[:limit], nil
}

func (s *memTutorStore) ListTutors(ctx context.Context) ([]models.Tutor, error) {
	return s.tutors, nil
}

func (s *memTutorStore) GetTutorByID(ctx context.Context, id int64) (*models.Tutor, error) {
	for i := range s.tutors {
		if s.tutors[i].ID == id {
			return &s.tutors[i], nil
		}
	}
	return nil, store.ErrNotFound
}

type memOrderStore struct {
	mu     sync.Mutex
	nextID int64
	byTx   map[string]*models.Order
}

func (s *memOrderStore) InsertOrder(ctx context.Context, order *models.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byTx[order.TransactionID]; exists {
		return false, nil
	}
	s.nextID++
	order.ID = s.nextID
	order.CreatedAt = time.Now()
	cp := *order
	s.byTx[order.TransactionID] = &cp
	return true, nil
}

func (s *memOrderStore) GetOrderByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.byTx[transactionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return order, nil
}

func (s *memOrderStore) ListOrdersByStudent(ctx context.Context, email string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, o := range s.byTx {
		if o.StudentEmail == email {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

type stubProvider struct {
	sessions map[string]*payments.Session
}

func (p *stubProvider) CreateSession(ctx context.Context, params payments.CreateSessionParams) (*payments.Session, error) {
	return &payments.Session{
		ID:       "cs_new",
		URL:      "https://checkout.example.com/cs_new",
		Status:   payments.SessionStatusOpen,
		Metadata: params.Metadata,
	}, nil
}

func (p *stubProvider) GetSession(ctx context.Context, id string) (*payments.Session, error) {
	sess, ok := p.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such session: %s", id)
	}
	return sess, nil
}

// stubVerifier accepts exactly one token
type stubVerifier struct {
	token string
	email string
}

func (v *stubVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken != v.token {
		return "", fmt.Errorf("invalid token")
	}
	return v.email, nil
}

type testEnv struct {
	router *gin.Engine
	tutors *memTutorStore
	orders *memOrderStore
	stripe *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &memUserStore{byEmail: make(map[string]*models.User)}
	tuitions := &memTuitionStore{}
	tutors := &memTutorStore{}
	orders := &memOrderStore{byTx: make(map[string]*models.Order)}
	stripe := &stubProvider{sessions: make(map[string]*payments.Session)}

	userService := service.NewUserService(users, nil)
	catalogService := service.NewCatalogService(tuitions, tutors, nil, time.Minute)
	paymentService := service.NewPaymentService(stripe, tutors, orders, nil,
		"https://etuitions.example.com", 5*time.Second, 5*time.Second)

	handler := NewHandler(userService, catalogService, paymentService,
		&stubVerifier{token: "good-token", email: "student@example.com"})

	router := gin.New()
	handler.SetupRoutes(router, "https://etuitions.example.com")

	return &testEnv{router: router, tutors: tutors, orders: orders, stripe: stripe}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestRegisterUserDedup(t *testing.T) {
	env := newTestEnv(t)
	signup := map[string]string{"name": "Bob", "email": "bob@example.com"}

	w := doJSON(t, env.router, http.MethodPost, "/users", signup, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, env.router, http.MethodPost, "/users", signup, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user already exists", resp["message"])
}

func TestLatestTuitionsNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"T1", "T2", "T3", "T4", "T5"} {
		w := doJSON(t, env.router, http.MethodPost, "/tuitions",
			map[string]interface{}{"name": name}, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, env.router, http.MethodGet, "/tuitions", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tuitions []models.Tuition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tuitions))
	require.Len(t, tuitions, 4)

	names := make([]string, len(tuitions))
	for i, tuition := range tuitions {
		names[i] = tuition.Name
	}
	assert.Equal(t, []string{"T5", "T4", "T3", "T2"}, names)
}

func TestTuitionCRUD(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env.router, http.MethodPost, "/tuitions", map[string]interface{}{
		"name":         "Math tutoring",
		"studentClass": "10",
		"location":     "Dhaka",
		"subjects":     []string{"math"},
		"salary":       5000,
		"daysPerWeek":  3,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Tuition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, env.router, http.MethodGet, fmt.Sprintf("/tuitions/%d", created.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.router, http.MethodPut, fmt.Sprintf("/tuitions/%d", created.ID),
		map[string]interface{}{"name": "Math and physics tutoring"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.router, http.MethodDelete, fmt.Sprintf("/tuitions/%d", created.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.router, http.MethodGet, fmt.Sprintf("/tuitions/%d", created.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTuitionNotFound(t *testing.T) {
	env := newTestEnv(t)
	w := doJSON(t, env.router, http.MethodGet, "/tuitions/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCheckoutSession(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env.router, http.MethodPost, "/create-checkout-session", map[string]interface{}{
		"name":         "Physics tutoring",
		"price":        19.99,
		"quantity":     1,
		"studentEmail": "student@example.com",
		"tutorId":      1,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.example.com/cs_new", resp["url"])
}

func TestCreateCheckoutSessionRejectsBadPrice(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env.router, http.MethodPost, "/create-checkout-session", map[string]interface{}{
		"name":         "Physics tutoring",
		"price":        0,
		"quantity":     1,
		"studentEmail": "student@example.com",
		"tutorId":      1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentSuccessIdempotent(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.tutors.InsertTutor(context.Background(),
		&models.Tutor{Name: "Alice", Photo: "https://img.example.com/a.png"}))

	env.stripe.sessions["cs_done"] = &payments.Session{
		ID:              "cs_done",
		Status:          payments.SessionStatusComplete,
		PaymentIntentID: "pi_777",
		AmountTotal:     1999,
		Metadata: map[string]string{
			payments.MetadataTutorID:      "1",
			payments.MetadataStudentEmail: "student@example.com",
		},
	}

	body := map[string]string{"sessionId": "cs_done"}

	w := doJSON(t, env.router, http.MethodPost, "/payment-success", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var result service.ConfirmResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, service.OutcomeCreated, result.Outcome)
	require.NotNil(t, result.Order)
	assert.Equal(t, "pi_777", result.Order.TransactionID)

	// Confirming again must not create a second order.
	w = doJSON(t, env.router, http.MethodPost, "/payment-success", body, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, service.OutcomeAlreadyProcessed, result.Outcome)

	assert.Len(t, env.orders.byTx, 1)
}

func TestPaymentSuccessOpenSession(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.tutors.InsertTutor(context.Background(), &models.Tutor{Name: "Alice"}))
	env.stripe.sessions["cs_open"] = &payments.Session{
		ID:     "cs_open",
		Status: payments.SessionStatusOpen,
		Metadata: map[string]string{
			payments.MetadataTutorID:      "1",
			payments.MetadataStudentEmail: "student@example.com",
		},
	}

	w := doJSON(t, env.router, http.MethodPost, "/payment-success",
		map[string]string{"sessionId": "cs_open"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, env.orders.byTx)
}

func TestPaymentSuccessUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env.router, http.MethodPost, "/payment-success",
		map[string]string{"sessionId": "cs_missing"}, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListOrdersRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env.router, http.MethodGet, "/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.router, http.MethodGet, "/orders", nil,
		map[string]string{"Authorization": "Bearer bad-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.router, http.MethodGet, "/orders", nil,
		map[string]string{"Authorization": "Bearer good-token"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env.router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.router, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
