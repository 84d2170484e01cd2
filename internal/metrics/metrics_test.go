package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveModelCall(t *testing.T) {
	okBefore := testutil.ToFloat64(ModelCalls.WithLabelValues("embed", "ok"))
	errBefore := testutil.ToFloat64(ModelCalls.WithLabelValues("embed", "error"))

	ObserveModelCall("embed", time.Now(), nil)
	ObserveModelCall("embed", time.Now(), errors.New("boom"))
	ObserveModelCall("embed", time.Now(), nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ModelCalls.WithLabelValues("embed", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(ModelCalls.WithLabelValues("embed", "error")))
}
