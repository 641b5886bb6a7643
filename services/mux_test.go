package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/e-course-backend/services"
)

func TestMuxClientCreateAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/video/v1/assets", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "token-id", user)
		assert.Equal(t, "token-secret", pass)

		var body struct {
			Input []struct {
				URL string `json:"url"`
			} `json:"input"`
			PlaybackPolicy []string `json:"playback_policy"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Input, 1)
		assert.Equal(t, "https://files.test/videos/a.mp4", body.Input[0].URL)
		assert.Equal(t, []string{"public"}, body.PlaybackPolicy)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"abc","status":"preparing","playback_ids":[{"id":"play1","policy":"public"}]}}`))
	}))
	defer srv.Close()

	client := services.NewMuxClient(srv.URL, "token-id", "token-secret", 5*time.Second)
	asset, err := client.CreateAsset(context.Background(), "https://files.test/videos/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, services.VideoAsset{AssetID: "abc", PlaybackID: "play1"}, asset)
}

func TestMuxClientCreateAssetError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_parameters","messages":["input is invalid"]}}`))
	}))
	defer srv.Close()

	client := services.NewMuxClient(srv.URL, "id", "secret", 5*time.Second)
	_, err := client.CreateAsset(context.Background(), "ftp://nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_parameters")
}

func TestMuxClientDeleteAsset(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "already gone", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/video/v1/assets/asset-1", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := services.NewMuxClient(srv.URL, "id", "secret", 5*time.Second)
			err := client.DeleteAsset(context.Background(), "asset-1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
