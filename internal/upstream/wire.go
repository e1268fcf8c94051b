package upstream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
)

// ingredientRefs accepts an ingredient list given either as ids or as
// ingredient objects, and keeps only the ids.
type ingredientRefs []string

func (r *ingredientRefs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var obj struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.ID == "" {
			return fmt.Errorf("unrecognised ingredient reference %s", string(item))
		}
		ids = append(ids, obj.ID)
	}
	*r = ids
	return nil
}

type wireOrder struct {
	ID          string             `json:"_id"`
	Number      int                `json:"number"`
	Name        string             `json:"name"`
	Status      models.OrderStatus `json:"status"`
	Ingredients ingredientRefs     `json:"ingredients"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (w wireOrder) model() models.Order {
	ids := []string(w.Ingredients)
	if ids == nil {
		ids = []string{}
	}
	return models.Order{
		ID:          w.ID,
		Number:      w.Number,
		Name:        w.Name,
		Status:      w.Status,
		Ingredients: ids,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

type feedMessage struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Orders     []wireOrder `json:"orders"`
	Total      int         `json:"total"`
	TotalToday int         `json:"totalToday"`
}
