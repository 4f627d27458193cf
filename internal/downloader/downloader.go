package downloader

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/logger"
)

// DownloadResult holds a started media download
type DownloadResult struct {
	reader      io.ReadCloser
	contentType string
	size        int64
	fs          adapter.FileSystem
}

// Reader returns the io.ReadCloser for streaming the download
func (d *DownloadResult) Reader() io.ReadCloser {
	return d.reader
}

// ContentType returns the content type of the downloaded file
func (d *DownloadResult) ContentType() string {
	return d.contentType
}

// Size returns the size of the downloaded file (may be -1 if unknown)
func (d *DownloadResult) Size() int64 {
	return d.size
}

// Bytes reads the whole download into memory and closes the reader
func (d *DownloadResult) Bytes() ([]byte, error) {
	defer d.close()

	data, err := io.ReadAll(d.reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read download: %w", err)
	}
	return data, nil
}

// AsFile saves the download result to a file and closes the reader
func (d *DownloadResult) AsFile(path string) error {
	defer d.close()

	file, err := d.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warn("failed to close file", zap.Error(err), zap.String("path", path))
		}
	}()

	written, err := io.Copy(file, d.reader)
	if err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	logger.Debug("Saved download to file",
		zap.String("path", path),
		zap.Int64("bytes", written),
	)

	return nil
}

func (d *DownloadResult) close() {
	if d.reader == nil {
		return
	}
	if err := d.reader.Close(); err != nil {
		logger.Warn("failed to close download reader", zap.Error(err))
	}
}

// Downloader defines the interface for downloading media files
//
//go:generate mockgen -source=downloader.go -destination=../mocks/downloader.go -package=mocks -mock_names=Downloader=MockDownloader
type Downloader interface {
	// Download downloads a media file from a URL and returns a streaming reader
	Download(ctx context.Context, url string) (*DownloadResult, error)
}

type downloader struct {
	httpClient adapter.HTTPClient
	fs         adapter.FileSystem
}

// NewDownloader creates a downloader using the injected HTTP client
func NewDownloader(httpClient adapter.HTTPClient, fs adapter.FileSystem) Downloader {
	return &downloader{
		httpClient: httpClient,
		fs:         fs,
	}
}

// Download downloads a media file from a URL and returns a streaming reader
func (d *downloader) Download(ctx context.Context, url string) (*DownloadResult, error) {
	resp, err := d.httpClient.GetResponse(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close response body", zap.Error(err), zap.String("url", url))
		}
		return nil, &adapter.StatusError{StatusCode: resp.StatusCode}
	}

	logger.Debug("Download started",
		zap.String("url", url),
		zap.String("contentType", resp.Header.Get("Content-Type")),
		zap.Int64("contentLength", resp.ContentLength),
	)

	return &DownloadResult{
		reader:      resp.Body,
		contentType: resp.Header.Get("Content-Type"),
		size:        resp.ContentLength,
		fs:          d.fs,
	}, nil
}
