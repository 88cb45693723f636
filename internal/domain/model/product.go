package model

import "encoding/json"

// Product is a single catalog recommendation inside a category.
type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    string `json:"price,omitempty"`
	Link     string `json:"link,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ProductCategory groups recommended products with the reason they fit the room.
type ProductCategory struct {
	Category string    `json:"category"`
	Reason   string    `json:"reason,omitempty"`
	Products []Product `json:"products"`
}

// SelectedProduct is one chosen product, tagged with the category it came from.
type SelectedProduct struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
	Category string `json:"category"`
}

// Coordinate places a selected product inside the generated image.
type Coordinate struct {
	ID    string `json:"id"`
	Box2D struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"box_2d"`
}

// searchResponse mirrors the compute backend's product_search response_data.
type searchResponse struct {
	Recommendations []ProductCategory `json:"recommendations"`
}

// imageResponse mirrors the compute backend's image_generation response_data.
type imageResponse struct {
	GeneratedImageURL string       `json:"generated_image_url"`
	Coordinates       []Coordinate `json:"coordinates"`
}

// autoSelectRef is a single picked product id in an auto_select response_data.
type autoSelectRef struct {
	ID string `json:"id"`
}

// ParseSearchResult extracts the recommended categories from a completed
// product_search result.
func ParseSearchResult(r *JobResult) ([]ProductCategory, error) {
	var resp searchResponse
	if err := json.Unmarshal(r.ResponseData, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// ParseImageResult extracts the generated image URL and product coordinates
// from a completed image_generation result.
func ParseImageResult(r *JobResult) (string, []Coordinate, error) {
	var resp imageResponse
	if err := json.Unmarshal(r.ResponseData, &resp); err != nil {
		return "", nil, err
	}
	return resp.GeneratedImageURL, resp.Coordinates, nil
}

// ParseAutoSelectIDs extracts the picked product ids from a completed
// auto_select result.
func ParseAutoSelectIDs(r *JobResult) ([]string, error) {
	var refs []autoSelectRef
	if err := json.Unmarshal(r.ResponseData, &refs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

// MapSelection resolves auto-selected product ids back to full products by
// scanning the recommendation categories. Ids that match nothing are dropped;
// at most one product per id is taken, from the first category that has it.
func MapSelection(categories []ProductCategory, ids []string) []SelectedProduct {
	selected := make([]SelectedProduct, 0, len(ids))
	for _, id := range ids {
		for _, cat := range categories {
			found := false
			for _, prod := range cat.Products {
				if prod.ID == id {
					selected = append(selected, SelectedProduct{
						ID:       prod.ID,
						Title:    prod.Title,
						ImageURL: prod.ImageURL,
						Category: cat.Category,
					})
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return selected
}
