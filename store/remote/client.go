// Package remote implements the HTTP client for the fitsync document store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fitsync/store"
)

const (
	// DefaultTimeout is the per-request timeout for the underlying HTTP client
	DefaultTimeout = 30 * time.Second
)

// Client handles HTTP communication with the fitsync document store API.
// It implements store.RemoteStore.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new document store client
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// exerciseDoc is the wire form of a catalog exercise document
type exerciseDoc struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MuscleGroup  string    `json:"muscle_group,omitempty"`
	Equipment    string    `json:"equipment,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// workoutDoc is the wire form of a workout document
type workoutDoc struct {
	ID           string    `json:"id,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	DurationMin  int       `json:"duration_min,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
	Sets         []setDoc  `json:"sets,omitempty"`
}

type setDoc struct {
	SetIndex     int     `json:"set_index"`
	ExerciseName string  `json:"exercise_name"`
	Reps         int     `json:"reps,omitempty"`
	WeightKG     float64 `json:"weight_kg,omitempty"`
}

// snapshotDoc is the wire form of a progress snapshot document
type snapshotDoc struct {
	ID           string    `json:"id,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	OwnerID      string    `json:"owner_id"`
	MeasuredAt   time.Time `json:"measured_at"`
	BodyWeightKG float64   `json:"body_weight_kg,omitempty"`
	BodyFatPct   float64   `json:"body_fat_pct,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
}

// deviceDoc is the wire form of the per-(user, installation) sync metadata record
type deviceDoc struct {
	InstallationID string    `json:"installation_id"`
	DeviceName     string    `json:"device_name,omitempty"`
	LastSyncAt     time.Time `json:"last_sync_at,omitempty"`
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// statusError drains the response body into a StoreError
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return store.NewStoreError(op, resp.StatusCode, string(body))
}

// sinceQuery builds the updated_since query string; a zero time means full sync
func sinceQuery(since time.Time) string {
	if since.IsZero() {
		return ""
	}
	return "?updated_since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
}

// ListExercises retrieves catalog exercises changed since the checkpoint
func (c *Client) ListExercises(ctx context.Context, updatedSince time.Time) ([]store.ExerciseDoc, error) {
	resp, err := c.doRequest(ctx, "GET", "/v1/exercises"+sinceQuery(updatedSince), nil)
	if err != nil {
		return nil, store.NewStoreError("ListExercises", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("ListExercises", resp)
	}

	var docs []exerciseDoc
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]store.ExerciseDoc, 0, len(docs))
	for _, d := range docs {
		out = append(out, store.ExerciseDoc{
			RemoteID:     d.ID,
			Name:         d.Name,
			MuscleGroup:  d.MuscleGroup,
			Equipment:    d.Equipment,
			LastModified: d.LastModified,
		})
	}
	return out, nil
}

// ListWorkouts retrieves a user's workout documents changed since the checkpoint
func (c *Client) ListWorkouts(ctx context.Context, userID string, updatedSince time.Time) ([]store.WorkoutDoc, error) {
	endpoint := "/v1/users/" + url.PathEscape(userID) + "/workouts" + sinceQuery(updatedSince)
	resp, err := c.doRequest(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, store.NewStoreError("ListWorkouts", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("ListWorkouts", resp)
	}

	var docs []workoutDoc
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]store.WorkoutDoc, 0, len(docs))
	for _, d := range docs {
		out = append(out, workoutFromWire(d))
	}
	return out, nil
}

// UpsertWorkout writes a workout document and returns the server-assigned id
func (c *Client) UpsertWorkout(ctx context.Context, userID string, doc store.WorkoutDoc) (string, error) {
	endpoint := "/v1/users/" + url.PathEscape(userID) + "/workouts/" + url.PathEscape(doc.ClientID)
	resp, err := c.doRequest(ctx, "PUT", endpoint, workoutToWire(doc))
	if err != nil {
		return "", store.NewStoreError("UpsertWorkout", 0, err.Error()).WithError(err).WithRecordID(doc.ClientID)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError("UpsertWorkout", resp)
	}

	var saved workoutDoc
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return saved.ID, nil
}

// ListSnapshots retrieves a user's progress snapshots changed since the checkpoint
func (c *Client) ListSnapshots(ctx context.Context, userID string, updatedSince time.Time) ([]store.SnapshotDoc, error) {
	endpoint := "/v1/users/" + url.PathEscape(userID) + "/snapshots" + sinceQuery(updatedSince)
	resp, err := c.doRequest(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, store.NewStoreError("ListSnapshots", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("ListSnapshots", resp)
	}

	var docs []snapshotDoc
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]store.SnapshotDoc, 0, len(docs))
	for _, d := range docs {
		out = append(out, store.SnapshotDoc{
			RemoteID:     d.ID,
			ClientID:     d.ClientID,
			OwnerID:      d.OwnerID,
			MeasuredAt:   d.MeasuredAt,
			BodyWeightKG: d.BodyWeightKG,
			BodyFatPct:   d.BodyFatPct,
			LastModified: d.LastModified,
		})
	}
	return out, nil
}

// UpsertSnapshot writes a snapshot document and returns the server-assigned id
func (c *Client) UpsertSnapshot(ctx context.Context, userID string, doc store.SnapshotDoc) (string, error) {
	endpoint := "/v1/users/" + url.PathEscape(userID) + "/snapshots/" + url.PathEscape(doc.ClientID)
	body := snapshotDoc{
		ID:           doc.RemoteID,
		ClientID:     doc.ClientID,
		OwnerID:      doc.OwnerID,
		MeasuredAt:   doc.MeasuredAt,
		BodyWeightKG: doc.BodyWeightKG,
		BodyFatPct:   doc.BodyFatPct,
	}
	resp, err := c.doRequest(ctx, "PUT", endpoint, body)
	if err != nil {
		return "", store.NewStoreError("UpsertSnapshot", 0, err.Error()).WithError(err).WithRecordID(doc.ClientID)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError("UpsertSnapshot", resp)
	}

	var saved snapshotDoc
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return saved.ID, nil
}

// PutSyncMetadata records which installation synchronized for a user.
// The server sets last_sync_at itself.
func (c *Client) PutSyncMetadata(ctx context.Context, userID string, meta store.SyncMetadata) error {
	endpoint := "/v1/users/" + url.PathEscape(userID) + "/devices/" + url.PathEscape(meta.InstallationID)
	body := deviceDoc{
		InstallationID: meta.InstallationID,
		DeviceName:     meta.DeviceName,
	}
	resp, err := c.doRequest(ctx, "PUT", endpoint, body)
	if err != nil {
		return store.NewStoreError("PutSyncMetadata", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("PutSyncMetadata", resp)
	}
	return nil
}

// Ping probes the API health endpoint; used as the connectivity gate for
// background jobs
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "GET", "/v1/health", nil)
	if err != nil {
		return store.NewStoreError("Ping", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError("Ping", resp)
	}
	return nil
}

func workoutFromWire(d workoutDoc) store.WorkoutDoc {
	out := store.WorkoutDoc{
		RemoteID:     d.ID,
		ClientID:     d.ClientID,
		OwnerID:      d.OwnerID,
		Title:        d.Title,
		StartedAt:    d.StartedAt,
		DurationMin:  d.DurationMin,
		Notes:        d.Notes,
		LastModified: d.LastModified,
	}
	for _, s := range d.Sets {
		out.Sets = append(out.Sets, store.SetDoc{
			SetIndex:     s.SetIndex,
			ExerciseName: s.ExerciseName,
			Reps:         s.Reps,
			WeightKG:     s.WeightKG,
		})
	}
	return out
}

func workoutToWire(doc store.WorkoutDoc) workoutDoc {
	out := workoutDoc{
		ID:          doc.RemoteID,
		ClientID:    doc.ClientID,
		OwnerID:     doc.OwnerID,
		Title:       doc.Title,
		StartedAt:   doc.StartedAt,
		DurationMin: doc.DurationMin,
		Notes:       doc.Notes,
	}
	for _, s := range doc.Sets {
		out.Sets = append(out.Sets, setDoc{
			SetIndex:     s.SetIndex,
			ExerciseName: s.ExerciseName,
			Reps:         s.Reps,
			WeightKG:     s.WeightKG,
		})
	}
	return out
}
