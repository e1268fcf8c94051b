package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/api")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestIngredients(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ingredients", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"_id": "bun-1", "name": "Craterbun", "type": "bun", "price": 1255, "image_mobile": "m.png"},
				{"_id": "main-1", "name": "Meteorite", "type": "main", "price": 3000},
			},
		})
	})

	items, err := c.Ingredients(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.CategoryBun, items[0].Type)
	assert.Equal(t, int64(1255), items[0].Price)
	assert.Equal(t, "m.png", items[0].ImageMobile)
	assert.Equal(t, 1, items[1].Position)
}

func TestUnsuccessfulEnvelope(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "maintenance"})
	})

	_, err := c.Ingredients(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "maintenance", apiErr.Message)
}

func TestSubmit(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))

		var body struct {
			Ingredients []string `json:"ingredients"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"bun-1", "main-1", "bun-1"}, body.Ingredients)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"name":    "Space burger",
			"order": map[string]interface{}{
				"number": 4242,
				"ingredients": []map[string]interface{}{
					{"_id": "bun-1", "name": "Craterbun"},
					{"_id": "main-1"},
					{"_id": "bun-1"},
				},
			},
		})
	})

	order, err := c.Submit(context.Background(), "abc", []string{"bun-1", "main-1", "bun-1"})
	require.NoError(t, err)
	assert.Equal(t, 4242, order.Number)
	assert.Equal(t, "Space burger", order.Name)
	assert.Equal(t, models.OrderCreated, order.Status)
	assert.Equal(t, []string{"bun-1", "main-1", "bun-1"}, order.Ingredients)
}

func TestSubmitUnauthorized(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"success": false, "message": "jwt expired"})
	})

	_, err := c.Submit(context.Background(), "Bearer old", []string{"bun-1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestOrderByNumber(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     interface{}
		notFound bool
		wantErr  bool
	}{
		{
			name:   "found",
			status: http.StatusOK,
			body: map[string]interface{}{"success": true, "orders": []map[string]interface{}{
				{"_id": "o1", "number": 77, "status": "done", "ingredients": []string{"a", "b"}},
			}},
		},
		{
			name:     "empty list",
			status:   http.StatusOK,
			body:     map[string]interface{}{"success": true, "orders": []interface{}{}},
			notFound: true,
		},
		{
			name:     "404",
			status:   http.StatusNotFound,
			body:     map[string]interface{}{"success": false, "message": "not found"},
			notFound: true,
		},
		{
			name:    "server error is not a miss",
			status:  http.StatusInternalServerError,
			body:    map[string]interface{}{"success": false},
			wantErr: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/orders/77", r.URL.Path)
				writeJSON(w, tt.status, tt.body)
			})

			order, err := c.OrderByNumber(context.Background(), 77)
			switch {
			case tt.notFound:
				assert.True(t, orders.IsNotFound(err))
			case tt.wantErr:
				require.Error(t, err)
				assert.False(t, orders.IsNotFound(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, 77, order.Number)
				assert.Equal(t, models.OrderDone, order.Status)
				assert.Equal(t, []string{"a", "b"}, order.Ingredients)
			}
		})
	}
}

func TestOwnOrders(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"orders": []map[string]interface{}{
				{"number": 1, "status": "done"},
				{"number": 2, "status": "pending"},
			},
		})
	})

	list, err := c.OwnOrders(context.Background(), "Bearer tok")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.OrderPending, list[1].Status)
	assert.NotNil(t, list[0].Ingredients)
}

func TestTokenSchemes(t *testing.T) {
	assert.Equal(t, "Bearer x", BearerToken("x"))
	assert.Equal(t, "Bearer x", BearerToken("Bearer x"))
	assert.Equal(t, "x", RawToken("Bearer x"))
	assert.Equal(t, "x", RawToken("x"))
}

func TestIngredientRefsRejectsGarbage(t *testing.T) {
	var refs ingredientRefs
	assert.Error(t, json.Unmarshal([]byte(`[42]`), &refs))
	assert.Error(t, json.Unmarshal([]byte(`[{"name":"no id"}]`), &refs))
	require.NoError(t, json.Unmarshal([]byte(`["a",{"_id":"b"}]`), &refs))
	assert.Equal(t, ingredientRefs{"a", "b"}, refs)
}
