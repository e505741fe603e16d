package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/puskesmas-merdeka/simpus-api/internal/faker"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/pkg/circuitbreaker"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/logger"
)

// Client talks to the standalone mock server over HTTP. It is used in api
// data mode. Each service sits behind its own circuit breaker; rejected
// input does not count against it.
type Client struct {
	baseURL   string
	http      *http.Client
	bpjs      *circuitbreaker.CircuitBreaker
	satusehat *circuitbreaker.CircuitBreaker
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	settings := func(name string) circuitbreaker.Settings {
		return circuitbreaker.Settings{
			Name:        name,
			MaxFailures: 5,
			Timeout:     30 * time.Second,
			IsSuccessful: func(err error) bool {
				return err == nil || apperrors.Is(err, apperrors.ErrBadRequest)
			},
		}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		bpjs:      circuitbreaker.NewCircuitBreaker(settings(ServiceBPJS)),
		satusehat: circuitbreaker.NewCircuitBreaker(settings(ServiceSatuSehat)),
	}
}

func (c *Client) ValidateBPJS(ctx context.Context, cardNumber string) (*model.BPJSParticipant, string, error) {
	q := url.Values{"action": {"validate"}, "no_bpjs": {cardNumber}}
	return call[*model.BPJSParticipant](ctx, c, c.bpjs, http.MethodGet, faker.BPJSPath, q, nil)
}

func (c *Client) CreateSEP(ctx context.Context, req *model.SEPRequest) (*model.SEP, string, error) {
	q := url.Values{"action": {"create-sep"}}
	return call[*model.SEP](ctx, c, c.bpjs, http.MethodPost, faker.BPJSPath, q, faker.Request[model.SEPRequest]{Data: req})
}

func (c *Client) SyncPatient(ctx context.Context, in *model.FHIRPatientInput) (*model.FHIRPatient, string, error) {
	q := url.Values{"resource": {"Patient"}}
	return call[*model.FHIRPatient](ctx, c, c.satusehat, http.MethodPost, faker.SatuSehatPath, q, faker.Request[model.FHIRPatientInput]{Data: in})
}

func (c *Client) SyncEncounter(ctx context.Context, in *model.FHIREncounterInput) (*model.FHIREncounter, string, error) {
	q := url.Values{"resource": {"Encounter"}}
	return call[*model.FHIREncounter](ctx, c, c.satusehat, http.MethodPost, faker.SatuSehatPath, q, faker.Request[model.FHIREncounterInput]{Data: in})
}

func (c *Client) SearchPatient(ctx context.Context, nik string) (*model.FHIRBundle, error) {
	q := url.Values{"resource": {"Patient"}, "identifier": {nik}}
	b, _, err := call[*model.FHIRBundle](ctx, c, c.satusehat, http.MethodGet, faker.SatuSehatPath, q, nil)
	return b, err
}

func call[T any](ctx context.Context, c *Client, cb *circuitbreaker.CircuitBreaker, method, path string, query url.Values, body interface{}) (T, string, error) {
	var out faker.Response[T]
	err := cb.Execute(func() error {
		return c.do(ctx, cb.Name(), method, path, query, body, &out)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		err = apperrors.NewUnavailable(cb.Name(), err)
	}
	if err != nil {
		var zero T
		return zero, "", err
	}
	return out.Data, out.Message, nil
}

func (c *Client) do(ctx context.Context, service, method, path string, query url.Values, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternal(fmt.Errorf("failed to encode %s request: %w", service, err))
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), reqBody)
	if err != nil {
		return apperrors.NewInternal(fmt.Errorf("failed to build %s request: %w", service, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUnavailable(service, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUnavailable(service, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var failure faker.Response[json.RawMessage]
		_ = json.Unmarshal(raw, &failure)
		logger.FromContext(ctx).Warn().
			Str("service", service).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error", failure.Error).
			Msg("Integration call failed")

		if resp.StatusCode == http.StatusBadRequest && failure.Error != "" {
			return apperrors.NewBadRequest(failure.Error, nil)
		}
		return apperrors.NewUnavailable(service, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewUnavailable(service, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
