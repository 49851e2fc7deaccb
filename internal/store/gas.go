// Package store talks to the spreadsheet-backed remote API. The primary
// client targets a Google Apps Script web app that dispatches on an
// ?action= query parameter and wraps every response in a
// {success, data, error} envelope.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"fleetdesk/internal/config"
	"fleetdesk/internal/models"

	"github.com/rs/zerolog"
)

const (
	actionGetVehicles         = "getVehicles"
	actionGetReservations     = "getReservations"
	actionCreateReservation   = "createReservation"
	actionDeleteReservation   = "deleteReservation"
	actionCreateDrivingRecord = "createDrivingRecord"
)

// ErrRemoteRejected wraps an error reported inside a success=false envelope.
var ErrRemoteRejected = errors.New("remote store rejected request")

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type GASClient struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewGASClient(cfg config.StoreConfig, logger *zerolog.Logger) (*GASClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("store base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse store base url: %w", err)
	}

	return &GASClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger.With().Str("component", "gas-client").Logger(),
	}, nil
}

func (c *GASClient) GetVehicles(ctx context.Context) ([]models.Vehicle, error) {
	data, err := c.get(ctx, actionGetVehicles, nil)
	if err != nil {
		return nil, err
	}

	var vehicles []models.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}
	return vehicles, nil
}

// GetReservations fetches reservations, optionally asking the store to filter
// by date. The result is a candidate set: the store may ignore the filter, so
// callers re-filter before relying on it.
func (c *GASClient) GetReservations(ctx context.Context, date *models.Date) ([]models.Reservation, error) {
	params := url.Values{}
	if date != nil {
		params.Set("date", date.String())
	}

	data, err := c.get(ctx, actionGetReservations, params)
	if err != nil {
		return nil, err
	}

	var reservations []models.Reservation
	if err := json.Unmarshal(data, &reservations); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}
	return reservations, nil
}

func (c *GASClient) CreateReservation(ctx context.Context, req models.ReservationRequest) (int64, error) {
	data, err := c.post(ctx, actionCreateReservation, req)
	if err != nil {
		return 0, err
	}

	// Older deployments return no body on create; the id is optional.
	if len(data) == 0 {
		return 0, nil
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return 0, nil
	}
	return created.ID, nil
}

func (c *GASClient) DeleteReservation(ctx context.Context, id int64) error {
	_, err := c.post(ctx, actionDeleteReservation, map[string]int64{"id": id})
	return err
}

func (c *GASClient) CreateDrivingRecord(ctx context.Context, record models.DrivingRecord) error {
	_, err := c.post(ctx, actionCreateDrivingRecord, record)
	return err
}

func (c *GASClient) get(ctx context.Context, action string, params url.Values) (json.RawMessage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	query := u.Query()
	query.Set("action", action)
	for key, vals := range params {
		for _, v := range vals {
			query.Set(key, v)
		}
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return c.do(req, action)
}

func (c *GASClient) post(ctx context.Context, action string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	u := fmt.Sprintf("%s?action=%s", c.baseURL, url.QueryEscape(action))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, action)
}

func (c *GASClient) do(req *http.Request, action string) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Str("action", action).Msg("remote store returned non-200")
		return nil, fmt.Errorf("%s: unexpected status %d", action, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s: decode envelope: %w", action, err)
	}

	if !env.Success {
		if env.Error != "" {
			return nil, fmt.Errorf("%s: %w: %s", action, ErrRemoteRejected, env.Error)
		}
		return nil, fmt.Errorf("%s: %w", action, ErrRemoteRejected)
	}

	return env.Data, nil
}
