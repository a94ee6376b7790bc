package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/camden-git/photomscompanion/models"
)

// ListQuery carries the query-string parameters of a photo list request.
// Optional string fields are omitted from the request when empty.
type ListQuery struct {
	Page      int
	Limit     int
	FreeText  string
	Tag       string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// listResponse matches the server's list envelope.
type listResponse struct {
	Data []models.Photo `json:"data"`
	Meta struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	} `json:"meta"`
}

// UploadResult is the server's response to a photo upload.
type UploadResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ListPhotos fetches one page of the caller's photo collection.
func (c *Client) ListPhotos(ctx context.Context, q ListQuery) (*models.CollectionPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.FreeText != "" {
		params.Set("q", q.FreeText)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	if q.StartDate != "" {
		params.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("endDate", q.EndDate)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var lr listResponse
	if err := c.doJSON(req, &lr); err != nil {
		return nil, err
	}

	items := lr.Data
	if items == nil {
		items = []models.Photo{}
	}
	return &models.CollectionPage{
		Items: items,
		Total: lr.Meta.Total,
		Page:  lr.Meta.Page,
		Limit: lr.Meta.Limit,
	}, nil
}

// GetPhoto fetches a single photo by id. Returns ErrNotFound when the server
// does not know the id.
func (c *Client) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/photos/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var photo models.Photo
	if err := c.doJSON(req, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// UploadPhoto submits the file contents as a multipart upload. The server
// extracts EXIF, generates the thumbnail and may append AI tags asynchronously.
func (c *Client) UploadPhoto(ctx context.Context, filename string, data io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("api: creating multipart form: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("api: buffering upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api: finalizing multipart form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/photos", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdatePhoto applies a partial metadata update and returns the updated photo.
// A non-nil Tags slice replaces the photo's whole tag list.
func (c *Client) UpdatePhoto(ctx context.Context, id string, update models.UpdatePhotoRequest) (*models.Photo, error) {
	payload, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("api: encoding update payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/photos/"+url.PathEscape(id), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var photo models.Photo
	if err := c.doJSON(req, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// DeletePhoto removes a photo permanently.
func (c *Client) DeletePhoto(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/photos/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

// GenerateAITags asks the server to derive and append AI tags, returning the
// updated photo.
func (c *Client) GenerateAITags(ctx context.Context, id string) (*models.Photo, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/photos/"+url.PathEscape(id)+"/ai-tags", nil)
	if err != nil {
		return nil, err
	}

	var photo models.Photo
	if err := c.doJSON(req, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// EditPhoto submits a non-destructive edit. The server renders a new derived
// photo and returns its id; the original photo is left untouched.
func (c *Client) EditPhoto(ctx context.Context, id string, sub models.EditSubmission) (*models.EditResult, error) {
	var result models.EditResult
	if err := c.postJSON(ctx, "/photos/"+url.PathEscape(id)+"/edit", sub, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadOriginal streams the full-resolution image asset. The caller must
// close the returned reader.
func (c *Client) DownloadOriginal(ctx context.Context, photo *models.Photo) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+photo.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("api: building download request: %w", err)
	}
	if c.tokenProvider != nil {
		token, tokenErr := c.tokenProvider(ctx)
		if tokenErr != nil {
			return nil, fmt.Errorf("api: resolving token: %w", tokenErr)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: downloading %s: %w", photo.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}
	return resp.Body, nil
}
