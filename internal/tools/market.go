package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeagent/internal/domain"
)

// MarketClient fetches live market data from public APIs.
type MarketClient struct {
	httpClient   *http.Client
	alphaKey     string
	alphaBaseURL string
	geckoBaseURL string
	ratesBaseURL string
}

func NewMarketClient(alphaVantageKey string) *MarketClient {
	return &MarketClient{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		alphaKey:     alphaVantageKey,
		alphaBaseURL: "https://www.alphavantage.co",
		geckoBaseURL: "https://api.coingecko.com",
		ratesBaseURL: "https://open.er-api.com",
	}
}

func (c *MarketClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call market API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market API returned error: status=%d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StockQuote fetches the latest quote for a ticker from Alpha Vantage.
func (c *MarketClient) StockQuote(ctx context.Context, symbol string) (string, error) {
	if c.alphaKey == "" {
		return "", fmt.Errorf("stock quotes are not configured (missing API key)")
	}

	u := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		c.alphaBaseURL, url.QueryEscape(symbol), c.alphaKey)

	var payload struct {
		Quote map[string]string `json:"Global Quote"`
	}
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return "", err
	}

	price := payload.Quote["05. price"]
	change := payload.Quote["10. change percent"]
	if price == "" {
		return "", fmt.Errorf("no quote available for %s", symbol)
	}

	if f, err := strconv.ParseFloat(price, 64); err == nil {
		return fmt.Sprintf("%s: %.2f USD (%s today)", strings.ToUpper(symbol), f, change), nil
	}
	return fmt.Sprintf("%s: %s USD (%s today)", strings.ToUpper(symbol), price, change), nil
}

// CryptoPrice fetches a coin's USD price from CoinGecko.
func (c *MarketClient) CryptoPrice(ctx context.Context, coin string) (string, error) {
	coin = strings.ToLower(strings.TrimSpace(coin))

	u := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		c.geckoBaseURL, url.QueryEscape(coin))

	var payload map[string]struct {
		USD       float64 `json:"usd"`
		Change24h float64 `json:"usd_24h_change"`
	}
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return "", err
	}

	data, ok := payload[coin]
	if !ok {
		return "", fmt.Errorf("unknown coin %q, use CoinGecko ids like bitcoin or ethereum", coin)
	}
	return fmt.Sprintf("%s: %.2f USD (%+.1f%% 24h)", coin, data.USD, data.Change24h), nil
}

// ExchangeRate converts between two currencies using open exchange
// rates.
func (c *MarketClient) ExchangeRate(ctx context.Context, from, to string, amount float64) (string, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	u := fmt.Sprintf("%s/v6/latest/%s", c.ratesBaseURL, url.PathEscape(from))

	var payload struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return "", err
	}
	if payload.Result != "success" {
		return "", fmt.Errorf("exchange rate lookup failed for %s", from)
	}

	rate, ok := payload.Rates[to]
	if !ok {
		return "", fmt.Errorf("unknown currency %q", to)
	}

	if amount > 0 {
		return fmt.Sprintf("%.2f %s = %.2f %s (rate %.4f)", amount, from, amount*rate, to, rate), nil
	}
	return fmt.Sprintf("1 %s = %.4f %s", from, rate, to), nil
}

// RegisterMarketTools wires the live market data tools.
func RegisterMarketTools(r *Registry, client *MarketClient) {
	r.Register(Definition{
		Name:        "get_stock_quote",
		Description: "Get the latest stock price for a ticker symbol.",
		Parameters: objectSchema(map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Ticker, e.g. AAPL"},
		}, []string{"symbol"}),
		Required: []string{"symbol"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			symbol := strings.TrimSpace(stringArg(args, "symbol"))
			if symbol == "" {
				return "", fmt.Errorf("%w: symbol is required", domain.ErrValidation)
			}
			return client.StockQuote(ctx, symbol)
		},
	})

	r.Register(Definition{
		Name:        "get_crypto_price",
		Description: "Get the current USD price of a cryptocurrency by CoinGecko id (bitcoin, ethereum, ...).",
		Parameters: objectSchema(map[string]any{
			"coin": map[string]any{"type": "string"},
		}, []string{"coin"}),
		Required: []string{"coin"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			coin := stringArg(args, "coin")
			if coin == "" {
				return "", fmt.Errorf("%w: coin is required", domain.ErrValidation)
			}
			return client.CryptoPrice(ctx, coin)
		},
	})

	r.Register(Definition{
		Name:        "get_exchange_rate",
		Description: "Convert between currencies, e.g. EUR to CVE.",
		Parameters: objectSchema(map[string]any{
			"from":   map[string]any{"type": "string", "description": "Source currency code"},
			"to":     map[string]any{"type": "string", "description": "Target currency code"},
			"amount": map[string]any{"type": "number", "description": "Optional amount to convert"},
		}, []string{"from", "to"}),
		Required: []string{"from", "to"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			amount, _ := floatArg(args, "amount")
			return client.ExchangeRate(ctx, stringArg(args, "from"), stringArg(args, "to"), amount)
		},
	})
}
