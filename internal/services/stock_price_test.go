package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokerCounters struct {
	tokenRequests int
	priceRequests int
	nameRequests  int
}

func newFakeBroker(t *testing.T, counters *brokerCounters) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		counters.tokenRequests++

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client_credentials", body["grant_type"])
		assert.Equal(t, "clave-prueba", body["appkey"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":               "token-prueba",
			"token_type":                 "Bearer",
			"expires_in":                 86400,
			"access_token_token_expired": time.Now().Add(24 * time.Hour).Format("2006-01-02 15:04:05"),
		})
	})

	mux.HandleFunc(pricePath, func(w http.ResponseWriter, r *http.Request) {
		counters.priceRequests++

		assert.Equal(t, "Bearer token-prueba", r.Header.Get("authorization"))
		assert.Equal(t, trIDPrice, r.Header.Get("tr_id"))
		assert.Equal(t, marketDivCode, r.URL.Query().Get("FID_COND_MRKT_DIV_CODE"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": map[string]string{
				"stck_prpr": "71200",
				"prdy_ctrt": "-1.25",
			},
		})
	})

	mux.HandleFunc(namePath, func(w http.ResponseWriter, r *http.Request) {
		counters.nameRequests++

		assert.Equal(t, trIDStockName, r.Header.Get("tr_id"))
		assert.Equal(t, "P", r.Header.Get("custtype"))
		assert.Equal(t, "300", r.URL.Query().Get("PRDT_TYPE_CD"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": map[string]string{
				"prdt_abrv_name": "KODEX 200TR",
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestBrokerClient(t *testing.T, counters *brokerCounters) *BrokerClient {
	t.Helper()

	server := newFakeBroker(t, counters)
	t.Setenv("BROKER_BASE_URL", server.URL)
	t.Setenv("BROKER_APP_KEY", "clave-prueba")
	t.Setenv("BROKER_APP_SECRET", "secreto-prueba")

	return NewBrokerClient()
}

func TestGetStockQuote(t *testing.T) {
	counters := &brokerCounters{}
	client := newTestBrokerClient(t, counters)

	quote, err := client.GetStockQuote("278530")
	require.NoError(t, err)

	assert.Equal(t, int64(71200), quote.Price)
	assert.Equal(t, -1.25, quote.DailyVariation)
	assert.Equal(t, 1, counters.tokenRequests)
	assert.Equal(t, 1, counters.priceRequests)
}

func TestGetStockQuoteUsaCache(t *testing.T) {
	counters := &brokerCounters{}
	client := newTestBrokerClient(t, counters)

	first, err := client.GetStockQuote("278530")
	require.NoError(t, err)
	second, err := client.GetStockQuote("278530")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, counters.priceRequests, "la segunda consulta sale del caché")
}

func TestGetStockQuoteReusaToken(t *testing.T) {
	counters := &brokerCounters{}
	client := newTestBrokerClient(t, counters)

	_, err := client.GetStockQuote("278530")
	require.NoError(t, err)
	_, err = client.GetStockQuote("003690")
	require.NoError(t, err)

	assert.Equal(t, 1, counters.tokenRequests, "el token vigente se reutiliza")
	assert.Equal(t, 2, counters.priceRequests)
	assert.False(t, client.TokenExpiration().IsZero())
}

func TestGetStockName(t *testing.T) {
	counters := &brokerCounters{}
	client := newTestBrokerClient(t, counters)

	name, err := client.GetStockName("278530")
	require.NoError(t, err)

	assert.Equal(t, "KODEX 200TR", name)
	assert.Equal(t, 1, counters.nameRequests)
}

func TestGetStockQuotePrecioNoNumericoDegradaACentinela(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token-prueba",
			"expires_in":   86400,
		})
	})
	mux.HandleFunc(pricePath, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": map[string]string{
				"stck_prpr": "no-numérico",
				"prdy_ctrt": "",
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("BROKER_BASE_URL", server.URL)
	t.Setenv("BROKER_APP_KEY", "clave-prueba")
	t.Setenv("BROKER_APP_SECRET", "secreto-prueba")

	client := NewBrokerClient()

	quote, err := client.GetStockQuote("278530")
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.Price, "precio 0 es el centinela de consulta fallida")
	assert.Equal(t, 0.0, quote.DailyVariation)
}

func TestGetStockQuoteErrorDelBroker(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token-prueba",
			"expires_in":   86400,
		})
	})
	mux.HandleFunc(pricePath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("BROKER_BASE_URL", server.URL)
	t.Setenv("BROKER_APP_KEY", "clave-prueba")
	t.Setenv("BROKER_APP_SECRET", "secreto-prueba")

	client := NewBrokerClient()

	quote, err := client.GetStockQuote("278530")
	require.Error(t, err)
	assert.Equal(t, int64(0), quote.Price)
}
