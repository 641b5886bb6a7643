package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type VideoAsset struct {
	AssetID    string
	PlaybackID string
}

// VideoEncoder is the external service that transcodes chapter videos.
type VideoEncoder interface {
	CreateAsset(ctx context.Context, inputURL string) (VideoAsset, error)
	DeleteAsset(ctx context.Context, assetID string) error
}

// MuxClient calls the Mux Video REST API.
type MuxClient struct {
	http *resty.Client
}

func NewMuxClient(baseURL, tokenID, tokenSecret string, timeout time.Duration) *MuxClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(tokenID, tokenSecret).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &MuxClient{http: client}
}

type muxAssetRequest struct {
	Input          []muxInput `json:"input"`
	PlaybackPolicy []string   `json:"playback_policy"`
	Test           bool       `json:"test"`
}

type muxInput struct {
	URL string `json:"url"`
}

type muxAssetResponse struct {
	Data struct {
		ID          string `json:"id"`
		PlaybackIDs []struct {
			ID     string `json:"id"`
			Policy string `json:"policy"`
		} `json:"playback_ids"`
	} `json:"data"`
}

type muxErrorResponse struct {
	Error struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
	} `json:"error"`
}

func (m *MuxClient) CreateAsset(ctx context.Context, inputURL string) (VideoAsset, error) {
	var out muxAssetResponse
	var muxErr muxErrorResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(muxAssetRequest{
			Input:          []muxInput{{URL: inputURL}},
			PlaybackPolicy: []string{"public"},
		}).
		SetResult(&out).
		SetError(&muxErr).
		Post("/video/v1/assets")
	if err != nil {
		return VideoAsset{}, fmt.Errorf("mux create asset: %w", err)
	}
	if resp.IsError() {
		return VideoAsset{}, fmt.Errorf("mux create asset: status=%d type=%s messages=%v",
			resp.StatusCode(), muxErr.Error.Type, muxErr.Error.Messages)
	}

	asset := VideoAsset{AssetID: out.Data.ID}
	if len(out.Data.PlaybackIDs) > 0 {
		asset.PlaybackID = out.Data.PlaybackIDs[0].ID
	}
	return asset, nil
}

// DeleteAsset treats an asset that no longer exists as deleted.
func (m *MuxClient) DeleteAsset(ctx context.Context, assetID string) error {
	resp, err := m.http.R().
		SetContext(ctx).
		SetPathParam("assetID", assetID).
		Delete("/video/v1/assets/{assetID}")
	if err != nil {
		return fmt.Errorf("mux delete asset %s: %w", assetID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("mux delete asset %s: status=%d body=%s", assetID, resp.StatusCode(), resp.String())
	}
	return nil
}
