package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersUseNormalizedLabels(t *testing.T) {
	before := testutil.ToFloat64(pollsTotal.WithLabelValues("ok"))
	IncPoll(" OK ")
	if got := testutil.ToFloat64(pollsTotal.WithLabelValues("ok")); got != before+1 {
		t.Fatalf("relay_polls_total{result=ok} = %v, want %v", got, before+1)
	}

	ObserveAvitoCall("Chats", 200, 15*time.Millisecond)
	if got := testutil.ToFloat64(avitoCallsTotal.WithLabelValues("chats", "200")); got < 1 {
		t.Fatalf("avito_api_calls_total{endpoint=chats,status=200} = %v", got)
	}
}

func TestGauges(t *testing.T) {
	SetWatermark(1700000000)
	SetSeenSetSize(12)
	if got := testutil.ToFloat64(watermarkSeconds); got != 1700000000 {
		t.Errorf("watermark = %v", got)
	}
	if got := testutil.ToFloat64(seenSetSize); got != 12 {
		t.Errorf("seen set size = %v", got)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}
