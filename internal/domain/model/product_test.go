package model

import (
	"encoding/json"
	"testing"
)

func catalog() []ProductCategory {
	return []ProductCategory{
		{
			Category: "sofa",
			Products: []Product{
				{ID: "p1", Title: "Velvet Sofa", ImageURL: "http://img/p1.jpg"},
				{ID: "p2", Title: "Linen Sofa", ImageURL: "http://img/p2.jpg"},
			},
		},
		{
			Category: "lamp",
			Products: []Product{
				{ID: "p2", Title: "Sofa Lamp", ImageURL: "http://img/lamp-p2.jpg"},
				{ID: "p3", Title: "Arc Lamp", ImageURL: "http://img/p3.jpg"},
			},
		},
	}
}

func TestMapSelection(t *testing.T) {
	t.Parallel()

	selected := MapSelection(catalog(), []string{"p3", "p1"})
	if len(selected) != 2 {
		t.Fatalf("expected 2 selections, got %d", len(selected))
	}
	if selected[0].ID != "p3" || selected[0].Category != "lamp" {
		t.Fatalf("unexpected first selection: %+v", selected[0])
	}
	if selected[1].ID != "p1" || selected[1].Title != "Velvet Sofa" {
		t.Fatalf("unexpected second selection: %+v", selected[1])
	}
}

func TestMapSelection_FirstCategoryWins(t *testing.T) {
	t.Parallel()

	// p2 exists in both categories; only the sofa one may be taken.
	selected := MapSelection(catalog(), []string{"p2"})
	if len(selected) != 1 {
		t.Fatalf("expected a single selection, got %d", len(selected))
	}
	if selected[0].Category != "sofa" || selected[0].Title != "Linen Sofa" {
		t.Fatalf("expected the sofa entry, got %+v", selected[0])
	}
}

func TestMapSelection_UnknownIDsDropped(t *testing.T) {
	t.Parallel()

	selected := MapSelection(catalog(), []string{"ghost", "p1"})
	if len(selected) != 1 || selected[0].ID != "p1" {
		t.Fatalf("unknown ids must be dropped, got %+v", selected)
	}
}

func TestParseSearchResult(t *testing.T) {
	t.Parallel()

	raw, _ := json.Marshal(map[string]interface{}{"recommendations": catalog()})
	cats, err := ParseSearchResult(&JobResult{Status: "success", ResponseData: raw})
	if err != nil {
		t.Fatalf("ParseSearchResult: %v", err)
	}
	if len(cats) != 2 || cats[1].Category != "lamp" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}

func TestParseImageResult(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"generated_image_url":"http://img/out.png","coordinates":[{"id":"p1","box_2d":{"x":0.1,"y":0.2,"width":0.3,"height":0.4}}]}`)
	url, coords, err := ParseImageResult(&JobResult{Status: "success", ResponseData: raw})
	if err != nil {
		t.Fatalf("ParseImageResult: %v", err)
	}
	if url != "http://img/out.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if len(coords) != 1 || coords[0].Box2D.Width != 0.3 {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}
}

func TestParseAutoSelectIDs(t *testing.T) {
	t.Parallel()

	raw := []byte(`[{"id":"p1"},{"id":"p3"}]`)
	ids, err := ParseAutoSelectIDs(&JobResult{Status: "success", ResponseData: raw})
	if err != nil {
		t.Fatalf("ParseAutoSelectIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p3" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
