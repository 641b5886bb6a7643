package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vnkhanh/e-course-backend/services"
)

// FakeVideos records calls instead of talking to the video service.
type FakeVideos struct {
	mu        sync.Mutex
	next      int
	Created   []string // input URLs
	Deleted   []string // asset ids
	CreateErr error
	DeleteErr error
	// OnDelete, when set, runs before each delete is recorded.
	OnDelete func(assetID string)
}

func (f *FakeVideos) CreateAsset(_ context.Context, inputURL string) (services.VideoAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return services.VideoAsset{}, f.CreateErr
	}
	f.next++
	f.Created = append(f.Created, inputURL)
	return services.VideoAsset{
		AssetID:    fmt.Sprintf("asset-%d", f.next),
		PlaybackID: fmt.Sprintf("playback-%d", f.next),
	}, nil
}

func (f *FakeVideos) DeleteAsset(_ context.Context, assetID string) error {
	if f.OnDelete != nil {
		f.OnDelete(assetID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, assetID)
	return nil
}

func (f *FakeVideos) FailDeletes(err error) {
	f.mu.Lock()
	f.DeleteErr = err
	f.mu.Unlock()
}

func (f *FakeVideos) CreatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

func (f *FakeVideos) DeletedAssets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Deleted...)
}

// FakeFiles keeps uploads in memory.
type FakeFiles struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Deleted   []string
	DeleteErr error
}

const FakeFilesBaseURL = "https://files.test"

func (f *FakeFiles) Upload(_ context.Context, folder, filename, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Objects == nil {
		f.Objects = make(map[string][]byte)
	}
	url := FakeFilesBaseURL + "/" + folder + "/" + filename
	f.Objects[url] = data
	return url, nil
}

func (f *FakeFiles) Delete(_ context.Context, publicURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.Objects, publicURL)
	f.Deleted = append(f.Deleted, publicURL)
	return nil
}

func (f *FakeFiles) FailDeletes(err error) {
	f.mu.Lock()
	f.DeleteErr = err
	f.mu.Unlock()
}

func (f *FakeFiles) DeletedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Deleted...)
}
