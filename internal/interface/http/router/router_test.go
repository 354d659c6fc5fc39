package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appbasket "github.com/xiebiao/bookstore-basket/internal/application/basket"
	appbook "github.com/xiebiao/bookstore-basket/internal/application/book"
	"github.com/xiebiao/bookstore-basket/internal/application/checkout"
	"github.com/xiebiao/bookstore-basket/internal/application/history"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-basket/internal/infrastructure/persistence/mysql/testdb"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-basket/internal/interface/http/router"
	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
	"github.com/xiebiao/bookstore-basket/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	engine *gin.Engine
	db     *gorm.DB
	jwt    *jwt.Manager
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := testdb.New(t)
	basketRepo := mysql.NewBasketRepository(db)
	userRepo := mysql.NewUserRepository(db)
	books := mysql.NewBookRepository(db)
	txRepo := mysql.NewTransactionRepository(db)
	txManager := mysql.NewTxManager(db)
	jwtManager := jwt.NewManager("test-secret", time.Hour)

	engine := router.New(router.Handlers{
		Book: handler.NewBookHandler(appbook.NewListBooksUseCase(books), appbook.NewGetBookUseCase(books)),
		Basket: handler.NewBasketHandler(
			appbasket.NewStore(basketRepo, userRepo, books, txManager),
		),
		Checkout: handler.NewCheckoutHandler(
			checkout.NewUseCase(basketRepo, userRepo, books, txRepo, txManager, nil),
		),
		Transaction: handler.NewTransactionHandler(
			history.NewListGroupsUseCase(txRepo, books),
			history.NewGetGroupUseCase(txRepo, books),
		),
		Auth: middleware.NewAuthMiddleware(jwtManager),
	}, 5*time.Second)

	return &server{engine: engine, db: db, jwt: jwtManager}
}

func (s *server) login(t *testing.T, name string) (uint, string) {
	t.Helper()
	userID := testdb.CreateUser(t, s.db, name)
	token, err := s.jwt.GenerateToken(userID, name)
	require.NoError(t, err)
	return userID, token
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestRouter_Ping(t *testing.T) {
	s := newServer(t)

	status, resp := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, resp.Code)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRouter_RequiresAuth(t *testing.T) {
	s := newServer(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/basket"},
		{http.MethodPost, "/api/v1/basket/items"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/transactions"},
	}
	for _, p := range paths {
		status, resp := s.do(t, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, p.path)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code, p.path)
	}

	status, _ := s.do(t, http.MethodGet, "/api/v1/basket", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_Books(t *testing.T) {
	s := newServer(t)
	id := testdb.CreateBook(t, s.db, testdb.BookSpec{Name: "Dune", Price: "12.00"})
	testdb.CreateBook(t, s.db, testdb.BookSpec{Name: "Emma", Price: "30.00"})

	status, resp := s.do(t, http.MethodGet, "/api/v1/books?price=20&price_op=le", "", nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		List  []struct{ Name string } `json:"list"`
		Total int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.List, 1)
	assert.Equal(t, "Dune", page.List[0].Name)

	status, _ = s.do(t, http.MethodGet, "/api/v1/books?price=20&price_op=lt", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/books/"+itoa(id), "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodGet, "/api/v1/books/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)
}

func TestRouter_BasketToCheckout(t *testing.T) {
	s := newServer(t)
	_, token := s.login(t, "alice")
	a := testdb.CreateBook(t, s.db, testdb.BookSpec{Name: "A", Price: "60.00"})
	b := testdb.CreateBook(t, s.db, testdb.BookSpec{Name: "B", Price: "50.00"})

	status, resp := s.do(t, http.MethodPost, "/api/v1/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, status, "空购物车不能结算")
	assert.Equal(t, apperrors.ErrCodeEmptyBasket, resp.Code)

	status, resp = s.do(t, http.MethodPost, "/api/v1/basket/items", token, map[string]uint{"book_id": a})
	require.Equal(t, http.StatusOK, status)
	var item struct {
		ID       uint `json:"id"`
		Quantity int  `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &item))
	assert.Equal(t, 1, item.Quantity)

	status, resp = s.do(t, http.MethodPost, "/api/v1/basket/items/"+itoa(item.ID)+"/increase", token, nil)
	require.Equal(t, http.StatusOK, status, "amount省略时为1")
	require.NoError(t, json.Unmarshal(resp.Data, &item))
	assert.Equal(t, 2, item.Quantity)

	status, resp = s.do(t, http.MethodPost, "/api/v1/basket/items/"+itoa(item.ID)+"/decrease", token, map[string]int{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.ErrCodeInvalidAmount, resp.Code)

	status, resp = s.do(t, http.MethodPost, "/api/v1/basket/items/"+itoa(item.ID)+"/increase", token, map[string]int{"amount": math.MaxInt})
	assert.Equal(t, http.StatusBadRequest, status, "超过数量上限")
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)

	status, _ = s.do(t, http.MethodPost, "/api/v1/basket/items", token, map[string]uint{"book_id": b})
	require.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodGet, "/api/v1/basket", token, nil)
	require.Equal(t, http.StatusOK, status)
	var snapshot struct {
		ItemCount       int    `json:"item_count"`
		Total           string `json:"total"`
		Discount        int    `json:"discount"`
		DiscountedTotal string `json:"discounted_total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &snapshot))
	assert.Equal(t, 3, snapshot.ItemCount)
	assert.Equal(t, "170.00", decimal.RequireFromString(snapshot.Total).StringFixed(2))
	assert.Equal(t, 5, snapshot.Discount)
	assert.Equal(t, "161.50", decimal.RequireFromString(snapshot.DiscountedTotal).StringFixed(2))

	status, resp = s.do(t, http.MethodPost, "/api/v1/checkout", token, nil)
	require.Equal(t, http.StatusOK, status)
	var result struct {
		TransactionID string `json:"transaction_id"`
		Discount      int    `json:"discount"`
		Transactions  []struct {
			BookID     uint   `json:"book_id"`
			PriceTotal string `json:"price_total"`
		} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Len(t, result.TransactionID, 32)
	assert.Equal(t, 5, result.Discount)
	assert.Len(t, result.Transactions, 2)

	status, resp = s.do(t, http.MethodGet, "/api/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, status)
	var groups []struct {
		TransactionID string `json:"transaction_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, result.TransactionID, groups[0].TransactionID)

	status, _ = s.do(t, http.MethodGet, "/api/v1/transactions/"+result.TransactionID, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/transactions/xyz", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = s.do(t, http.MethodGet, "/api/v1/basket", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &snapshot))
	assert.Equal(t, 0, snapshot.ItemCount, "结算后购物车为空")
}

func TestRouter_OtherUsersItem(t *testing.T) {
	s := newServer(t)
	_, alice := s.login(t, "alice")
	_, bob := s.login(t, "bob")
	bookID := testdb.CreateBook(t, s.db, testdb.BookSpec{})

	_, resp := s.do(t, http.MethodPost, "/api/v1/basket/items", alice, map[string]uint{"book_id": bookID})
	var item struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &item))

	status, resp := s.do(t, http.MethodDelete, "/api/v1/basket/items/"+itoa(item.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.ErrCodeBasketItemNotFound, resp.Code)

	status, resp = s.do(t, http.MethodDelete, "/api/v1/basket", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var cleared struct {
		Removed int64 `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &cleared))
	assert.Equal(t, int64(1), cleared.Removed)
}

func TestRouter_BindErrors(t *testing.T) {
	s := newServer(t)
	_, token := s.login(t, "alice")

	status, resp := s.do(t, http.MethodPost, "/api/v1/basket/items", token, map[string]string{"book_id": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/basket/items/0", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
