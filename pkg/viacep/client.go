package viacep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/cinecart/pkg/checkout"
	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/metrics"
	"github.com/angelmondragon/cinecart/pkg/types"
)

const (
	defaultBaseURL             = "https://viacep.com.br/ws"
	upstreamName               = "viacep"
	cepLength                  = 8
	requestBodyReadLimit int64 = 1024
)

const (
	msgInvalidCEP  = "postal code must contain 8 digits"
	msgNotFound    = "postal code not found"
	msgUnavailable = "could not look up postal code, check your connection"
)

// Client resolves Brazilian postal codes through ViaCEP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.UpstreamMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the ViaCEP base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithMetrics records every upstream call.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

type lookupResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	IBGE         string `json:"ibge"`
	GIA          string `json:"gia"`
	DDD          string `json:"ddd"`
	SIAFI        string `json:"siafi"`
	Erro         any    `json:"erro"`
}

// notFound reports the ViaCEP miss marker, sent as true or "true".
func (r lookupResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// Lookup resolves cep, formatted or not, into an address.
func (c *Client) Lookup(ctx context.Context, cep string) (*types.Address, error) {
	digits := checkout.Unmask(cep)
	if len(digits) != cepLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidCEP)
	}

	resp, err := c.fetch(ctx, digits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgUnavailable)
	}
	if resp.notFound() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
	}

	return &types.Address{
		PostalCode:   resp.CEP,
		Street:       resp.Street,
		Complement:   resp.Complement,
		Neighborhood: resp.Neighborhood,
		City:         resp.City,
		State:        resp.State,
		IBGE:         resp.IBGE,
		GIA:          resp.GIA,
		DDD:          resp.DDD,
		SIAFI:        resp.SIAFI,
	}, nil
}

func (c *Client) fetch(ctx context.Context, digits string) (resp *lookupResponse, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe(upstreamName, "lookup", started, err) }()

	url := fmt.Sprintf("%s/%s/json/", strings.TrimRight(c.baseURL, "/"), digits)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute lookup request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, requestBodyReadLimit))
		return nil, fmt.Errorf("status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out lookupResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	return &out, nil
}
