//go:build staging

package staging

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cycleResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type taskResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestCropCycleLifecycle(t *testing.T) {
	clientID := newClientID()

	resp, body := makeRequest(t, http.MethodPost, "/crop-cycles", map[string]interface{}{
		"client_id":       clientID,
		"crop_id":         "wheat",
		"start_date":      time.Now().UTC().Format(time.RFC3339),
		"season":          "rabi",
		"irrigation_type": "canal",
		"area_acres":      2.5,
		"location":        map[string]float64{"lat": 28.6, "lon": 77.2},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	cycle := decodeJSON[cycleResponse](t, body)
	assert.Equal(t, "planned", cycle.Status)

	base := fmt.Sprintf("/crop-cycles/%s", cycle.ID)
	query := "?client_id=" + clientID

	resp, body = makeRequest(t, http.MethodPost, base+"/activate"+query, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "active", decodeJSON[cycleResponse](t, body).Status)

	resp, body = makeRequest(t, http.MethodPost, base+"/tasks"+query, map[string]interface{}{
		"title":     "First irrigation",
		"task_type": "irrigation",
		"priority":  "high",
		"due_date":  time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	task := decodeJSON[taskResponse](t, body)

	resp, body = makeRequest(t, http.MethodPut, base+"/tasks/"+task.ID+"/status"+query, map[string]string{"status": "in_progress"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = makeRequest(t, http.MethodGet, base+"/tasks"+query, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks := decodeJSON[[]taskResponse](t, body)
	require.Len(t, tasks, 1)
	assert.Equal(t, "in_progress", tasks[0].Status)

	resp, body = makeRequest(t, http.MethodGet, base+"/stages"+query, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decodeJSON[[]map[string]interface{}](t, body))

	resp, body = makeRequest(t, http.MethodPost, "/recommendations?client_id="+clientID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Generated-At"))

	resp, _ = makeRequest(t, http.MethodGet, "/recommendations/"+clientID+"?max=3", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = makeRequest(t, http.MethodDelete, base+query, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = makeRequest(t, http.MethodGet, base+query, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCropCycle_OtherClientCannotRead(t *testing.T) {
	owner := newClientID()
	resp, body := makeRequest(t, http.MethodPost, "/crop-cycles", map[string]interface{}{
		"client_id":       owner,
		"crop_id":         "rice",
		"start_date":      time.Now().UTC().Format(time.RFC3339),
		"season":          "kharif",
		"irrigation_type": "flood",
		"area_acres":      1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	cycle := decodeJSON[cycleResponse](t, body)

	resp, _ = makeRequest(t, http.MethodGet, "/crop-cycles/"+cycle.ID+"?client_id=someone-else", nil)
	assert.Contains(t, []int{http.StatusNotFound, http.StatusForbidden}, resp.StatusCode)
}
