package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
)

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不会重复注册(否则promauto会panic)

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, BasketOperationsTotal)
	assert.NotNil(t, CheckoutsTotal)
	assert.NotNil(t, CheckoutDuration)
	assert.NotNil(t, MessagesPublishedTotal)
}

func TestResult(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"成功", nil, "success"},
		{"参数错误", apperrors.ErrInvalidParams, "invalid"},
		{"不存在", apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在"), "not_found"},
		{"并发冲突", apperrors.ErrConcurrencyConflict, "conflict"},
		{"其他错误", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Result(tt.err))
		})
	}
}

func TestObserveBasketOp(t *testing.T) {
	InitMetrics()
	before := testutil.ToFloat64(BasketOperationsTotal.WithLabelValues("add", "success"))

	ObserveBasketOp("add", nil)
	ObserveBasketOp("add", nil)
	ObserveBasketOp("add", apperrors.ErrInvalidParams)

	assert.Equal(t, before+2, testutil.ToFloat64(BasketOperationsTotal.WithLabelValues("add", "success")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(BasketOperationsTotal.WithLabelValues("add", "invalid")), 1.0)
}

func TestObserveCheckout(t *testing.T) {
	InitMetrics()
	before := testutil.ToFloat64(CheckoutDiscountTotal.WithLabelValues("15"))
	samples := histogramCount(t, CheckoutDuration)

	ObserveCheckout(time.Now().Add(-20*time.Millisecond), 15, nil)
	ObserveCheckout(time.Now(), 15, errors.New("db down"))

	assert.Equal(t, before+1, testutil.ToFloat64(CheckoutDiscountTotal.WithLabelValues("15")), "失败的结算不计入折扣档位")
	assert.Equal(t, samples+2, histogramCount(t, CheckoutDuration))
}

func TestObservePublish(t *testing.T) {
	InitMetrics()
	before := testutil.ToFloat64(MessagesPublishedTotal.WithLabelValues("ex", "checkout.completed", "error"))

	ObservePublish("ex", "checkout.completed", errors.New("closed"))

	assert.Equal(t, before+1, testutil.ToFloat64(MessagesPublishedTotal.WithLabelValues("ex", "checkout.completed", "error")))
}

// 辅助函数:获取Histogram观测次数
func histogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	var metric dto.Metric
	if err := histogram.Write(&metric); err != nil {
		t.Fatalf("读取Histogram值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount()
}
