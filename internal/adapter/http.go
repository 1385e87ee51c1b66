package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/utils"
	"github.com/MKhiriev/go-biz-sync/models"
)

const (
	collectionPath = "/api/v1/collections/{collection}"
	documentPath   = "/api/v1/collections/{collection}/{id}"
)

type httpRemoteStore struct {
	client *utils.HTTPClient
	hasher *utils.Hasher
	token  string

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of [RemoteStore].
// It normalises and validates the base URL from cfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and
// request timeout. Request bodies are signed when cfg.HashKey is set.
//
// Returns an error if cfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteStore(cfg config.ClientAdapter, logger *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpRemoteStore{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		hasher: utils.NewHasher(cfg.HashKey),
		token:  strings.TrimSpace(cfg.Token),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// List implements [RemoteStore]. It GETs
// GET /api/v1/collections/{collection}?business_id=B and decodes the
// [models.ListResponse]. A response whose length does not match its
// records is rejected.
func (h *httpRemoteStore) List(ctx context.Context, collection models.Collection, businessID string) ([]models.Record, error) {
	resp, err := h.request(ctx).
		SetPathParam("collection", collection.String()).
		SetQueryParam("business_id", businessID).
		Get(collectionPath)
	if err != nil {
		return nil, fmt.Errorf("list %s request: %w", collection, err)
	}
	if err = h.checkResponse(resp); err != nil {
		return nil, err
	}

	var list models.ListResponse
	if err = json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("decode list %s response: %w", collection, err)
	}
	if list.Length != len(list.Records) {
		return nil, fmt.Errorf("list %s response: length %d does not match %d records", collection, list.Length, len(list.Records))
	}
	if list.Records == nil {
		list.Records = []models.Record{}
	}

	return list.Records, nil
}

// Insert implements [RemoteStore]. It POSTs the record to
// POST /api/v1/collections/{collection}. Returns [ErrConflict] (wrapped) on
// HTTP 409.
func (h *httpRemoteStore) Insert(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error) {
	req, err := h.jsonRequest(ctx, record)
	if err != nil {
		return models.Record{}, err
	}

	resp, err := req.
		SetPathParam("collection", collection.String()).
		Post(collectionPath)
	if err != nil {
		return models.Record{}, fmt.Errorf("insert %s/%s request: %w", collection, record.ID, err)
	}

	return h.decodeRecord(resp)
}

// Merge implements [RemoteStore]. It PATCHes
// PATCH /api/v1/collections/{collection}/{id} with the record.
func (h *httpRemoteStore) Merge(ctx context.Context, collection models.Collection, record models.Record) (models.Record, error) {
	req, err := h.jsonRequest(ctx, record)
	if err != nil {
		return models.Record{}, err
	}

	resp, err := req.
		SetPathParams(map[string]string{"collection": collection.String(), "id": record.ID}).
		Patch(documentPath)
	if err != nil {
		return models.Record{}, fmt.Errorf("merge %s/%s request: %w", collection, record.ID, err)
	}

	return h.decodeRecord(resp)
}

// Delete implements [RemoteStore]. It sends
// DELETE /api/v1/collections/{collection}/{id}. Returns [ErrNotFound]
// (wrapped) on HTTP 404. The business is taken from the bearer token.
func (h *httpRemoteStore) Delete(ctx context.Context, collection models.Collection, id string) error {
	resp, err := h.request(ctx).
		SetPathParams(map[string]string{"collection": collection.String(), "id": id}).
		Delete(documentPath)
	if err != nil {
		return fmt.Errorf("delete %s/%s request: %w", collection, id, err)
	}

	return h.checkResponse(resp)
}

func (h *httpRemoteStore) request(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.token != "" {
		req.SetHeader("Authorization", "Bearer "+h.token)
	}
	return req
}

// jsonRequest marshals body once so that the signature covers the exact
// bytes sent.
func (h *httpRemoteStore) jsonRequest(ctx context.Context, body any) (*resty.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if h.hasher.Enabled() {
		req.SetHeader(utils.HashHeader, h.hasher.HashHex(payload))
	}
	return req, nil
}

func (h *httpRemoteStore) checkResponse(resp *resty.Response) error {
	if err := mapHTTPError(resp); err != nil {
		return err
	}

	if sum := resp.Header().Get(utils.HashHeader); sum != "" && h.hasher.Enabled() {
		if !h.hasher.Verify(resp.Body(), sum) {
			h.logger.Warn().
				Str("func", "*httpRemoteStore.checkResponse").
				Str("url", resp.Request.URL).
				Msg("response hash mismatch")
			return ErrIntegrity
		}
	}
	return nil
}

func (h *httpRemoteStore) decodeRecord(resp *resty.Response) (models.Record, error) {
	if err := h.checkResponse(resp); err != nil {
		return models.Record{}, err
	}

	var record models.Record
	if err := json.Unmarshal(resp.Body(), &record); err != nil {
		return models.Record{}, fmt.Errorf("decode record response: %w", err)
	}
	return record, nil
}
