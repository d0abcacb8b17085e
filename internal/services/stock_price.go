package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

// Constantes del API del bróker (Korea Investment openapi)
const (
	trIDPrice     = "FHKST01010100"
	trIDStockName = "CTPF1604R"
	marketDivCode = "J"

	tokenPath = "/oauth2/tokenP"
	pricePath = "/uapi/domestic-stock/v1/quotations/inquire-price"
	namePath  = "/uapi/domestic-stock/v1/quotations/search-info"

	defaultBrokerBaseURL = "https://openapi.koreainvestment.com:9443"
)

// StockQuote contiene el precio actual y la variación diaria de un instrumento
type StockQuote struct {
	Price          int64   `json:"price"`
	DailyVariation float64 `json:"daily_variation"`
}

// Modelos de respuesta del API (los campos vienen como cadenas)
type inquirePriceOutput struct {
	StckPrpr string `json:"stck_prpr"` // Precio actual
	PrdyCtrt string `json:"prdy_ctrt"` // Variación porcentual respecto al día anterior
}

type inquirePriceResponse struct {
	Output inquirePriceOutput `json:"output"`
}

type searchInfoOutput struct {
	PrdtAbrvName string `json:"prdt_abrv_name"` // Nombre abreviado del producto
}

type searchInfoResponse struct {
	Output searchInfoOutput `json:"output"`
}

type accessTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	TokenExpired string `json:"access_token_token_expired"`
}

type cachedQuote struct {
	Quote     StockQuote
	Timestamp time.Time
}

// BrokerClient es el cliente del API de cotizaciones del bróker. Gestiona el
// token de acceso (emisión y renovación al expirar) y cachea los precios para
// reducir llamadas al API.
type BrokerClient struct {
	baseURL   string
	appKey    string
	appSecret string
	client    *http.Client

	mutex      sync.Mutex
	token      string
	tokenExp   time.Time
	quoteCache map[string]cachedQuote
}

// NewBrokerClient crea un cliente usando las variables de entorno
// BROKER_BASE_URL, BROKER_APP_KEY y BROKER_APP_SECRET
func NewBrokerClient() *BrokerClient {
	baseURL := os.Getenv("BROKER_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBrokerBaseURL
	}

	return &BrokerClient{
		baseURL:    baseURL,
		appKey:     os.Getenv("BROKER_APP_KEY"),
		appSecret:  os.Getenv("BROKER_APP_SECRET"),
		client:     &http.Client{Timeout: 10 * time.Second},
		quoteCache: make(map[string]cachedQuote),
	}
}

// getValidToken devuelve el token vigente o emite uno nuevo si expiró
func (b *BrokerClient) getValidToken() (string, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.token != "" && time.Now().Before(b.tokenExp) {
		return b.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     b.appKey,
		"appsecret":  b.appSecret,
	})
	if err != nil {
		return "", err
	}

	resp, err := b.client.Post(b.baseURL+tokenPath, "application/json; charset=UTF-8", bytes.NewReader(body))
	if err != nil {
		log.Printf("Error al solicitar token del bróker: %v", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("el bróker respondió %d al emitir token", resp.StatusCode)
	}

	var tokenResp accessTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}

	// El API informa la expiración como "2006-01-02 15:04:05"; si no se puede
	// parsear se usa expires_in (segundos) como respaldo
	if exp, err := time.ParseInLocation("2006-01-02 15:04:05", tokenResp.TokenExpired, time.Local); err == nil {
		b.tokenExp = exp
	} else {
		b.tokenExp = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}
	b.token = tokenResp.AccessToken

	return b.token, nil
}

// TokenExpiration devuelve la expiración del token vigente (cero si no hay token)
func (b *BrokerClient) TokenExpiration() time.Time {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.tokenExp
}

func (b *BrokerClient) newRequest(url, trID string) (*http.Request, error) {
	token, err := b.getValidToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", b.appKey)
	req.Header.Set("appsecret", b.appSecret)
	req.Header.Set("tr_id", trID)
	return req, nil
}

// GetStockQuote obtiene el precio actual y la variación diaria de un
// instrumento. Ante cualquier fallo devuelve precio 0, el valor centinela que
// el ciclo de actualización interpreta como "no aplicar este campo".
func (b *BrokerClient) GetStockQuote(code string) (StockQuote, error) {
	// Verificar si tenemos la cotización en caché y si es reciente (menos de 5 minutos)
	b.mutex.Lock()
	if cached, exists := b.quoteCache[code]; exists && time.Since(cached.Timestamp) < 5*time.Minute {
		b.mutex.Unlock()
		return cached.Quote, nil
	}
	b.mutex.Unlock()

	url := fmt.Sprintf("%s%s?FID_COND_MRKT_DIV_CODE=%s&FID_INPUT_ISCD=%s", b.baseURL, pricePath, marketDivCode, code)
	req, err := b.newRequest(url, trIDPrice)
	if err != nil {
		return StockQuote{}, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		log.Printf("Error al obtener precio de %s: %v", code, err)
		return StockQuote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StockQuote{}, fmt.Errorf("el bróker respondió %d para %s", resp.StatusCode, code)
	}

	var priceResp inquirePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		log.Printf("Error al parsear respuesta de precio para %s: %v", code, err)
		return StockQuote{}, err
	}

	// Los campos llegan como cadenas; un valor no numérico degrada al centinela 0
	price, _ := strconv.ParseInt(priceResp.Output.StckPrpr, 10, 64)
	variation, _ := strconv.ParseFloat(priceResp.Output.PrdyCtrt, 64)

	quote := StockQuote{Price: price, DailyVariation: variation}

	b.mutex.Lock()
	b.quoteCache[code] = cachedQuote{Quote: quote, Timestamp: time.Now()}
	b.mutex.Unlock()

	return quote, nil
}

// GetStockName obtiene el nombre del instrumento. Devuelve cadena vacía ante
// cualquier fallo; el llamador no debe sobreescribir el nombre con vacío.
func (b *BrokerClient) GetStockName(code string) (string, error) {
	// PRDT_TYPE_CD "300" corresponde a acciones
	url := fmt.Sprintf("%s%s?PDNO=%s&PRDT_TYPE_CD=300", b.baseURL, namePath, code)
	req, err := b.newRequest(url, trIDStockName)
	if err != nil {
		return "", err
	}
	// Tipo de cliente: "P" persona física
	req.Header.Set("custtype", "P")

	resp, err := b.client.Do(req)
	if err != nil {
		log.Printf("Error al obtener nombre de %s: %v", code, err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("el bróker respondió %d para %s", resp.StatusCode, code)
	}

	var nameResp searchInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&nameResp); err != nil {
		log.Printf("Error al parsear respuesta de nombre para %s: %v", code, err)
		return "", err
	}

	return nameResp.Output.PrdtAbrvName, nil
}
